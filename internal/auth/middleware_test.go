package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/job-tracker/internal/config"
	"github.com/spec-kit/job-tracker/internal/domain"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/me", handlers...)
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.GenerateToken("user-1")
	if err != nil {
		t.Fatal(err)
	}
	mw := NewAuthMiddleware(tm, "token")
	app := newTestApp(mw.Handle, WithIdentity(func(c *fiber.Ctx, identity domain.Identity) error {
		return c.SendString(identity.UserID)
	}))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"bearer", "Bearer " + token, "", http.StatusOK},
		{"cookie", "", token, http.StatusOK},
		{"header wins over cookie", "Bearer garbage", token, http.StatusUnauthorized},
		{"malformed header", "Token " + token, "", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", "", http.StatusUnauthorized},
		{"missing", "", "", http.StatusUnauthorized},
		{"bad signature", "Bearer " + token + "x", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status: got %d want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != "user-1" {
					t.Fatalf("unexpected identity %q", body)
				}
			}
		})
	}
}

func TestWithIdentityFailsClosed(t *testing.T) {
	called := false
	app := newTestApp(WithIdentity(func(c *fiber.Ctx, _ domain.Identity) error {
		called = true
		return nil
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized || called {
		t.Fatalf("expected 401 without calling handler, got %d (called=%v)", resp.StatusCode, called)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.RateLimitConfig{Max: 1, WindowMinutes: 15}
	for name, limiter := range map[string]*RateLimiter{
		"nil client":  NewRateLimiter(nil, cfg, zap.NewNop()),
		"unreachable": NewRateLimiter(client, cfg, zap.NewNop()),
	} {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(limiter.Handle, func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusNoContent)
			})
			for i := 0; i < 3; i++ {
				resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
				if err != nil {
					t.Fatal(err)
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusNoContent {
					t.Fatalf("request %d: got %d", i, resp.StatusCode)
				}
			}
		})
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRateLimiter(client, config.RateLimitConfig{Max: 2, WindowMinutes: 15}, zap.NewNop())
	app := newTestApp(limiter.Handle, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	send := func() *http.Response {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	for i := 0; i < 2; i++ {
		resp := send()
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("request %d: got %d", i, resp.StatusCode)
		}
	}

	resp := send()
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests || string(body) != apperrors.CodeTooManyRequests {
		t.Fatalf("expected 429 %s, got %d %q", apperrors.CodeTooManyRequests, resp.StatusCode, body)
	}
	if got := resp.Header.Get("RateLimit-Limit"); got != "2" {
		t.Errorf("RateLimit-Limit = %q", got)
	}
	if got := resp.Header.Get("RateLimit-Remaining"); got != "0" {
		t.Errorf("RateLimit-Remaining = %q", got)
	}
	if got := resp.Header.Get("Retry-After"); got != "900" {
		t.Errorf("Retry-After = %q", got)
	}

	server.FastForward(15 * time.Minute)
	resp = send()
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("window did not reset: got %d", resp.StatusCode)
	}
}
