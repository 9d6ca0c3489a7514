package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest("/api/v1/jobs", "GET", 200, 2*time.Millisecond)
		}()
	}
	wg.Wait()
	m.RecordError("/api/v1/jobs/:id", "DELETE", "NOT_FOUND")

	snap := m.Snapshot()
	if snap.TotalRequests != 10 || snap.Requests["/api/v1/jobs|GET|200"] != 10 {
		t.Fatalf("unexpected requests %+v", snap)
	}
	if snap.Errors["/api/v1/jobs/:id|DELETE|NOT_FOUND"] != 1 {
		t.Fatalf("unexpected errors %+v", snap.Errors)
	}
	if snap.AverageLatencyMs != 2 {
		t.Fatalf("unexpected average latency %v", snap.AverageLatencyMs)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
	if snap := m.Snapshot(); snap.TotalRequests != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestRequestLoggerUsesErrorStatus(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m, func(error) int { return http.StatusTeapot }))
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("nope") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := m.Snapshot().Requests["/fail|GET|418"]; got != 1 {
		t.Fatalf("expected request recorded with resolved status, got %v", m.Snapshot().Requests)
	}
}
