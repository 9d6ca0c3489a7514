package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/job-tracker/internal/observability"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

const productionErrorMessage = "Something went wrong!"

// errorHandler is the terminal funnel for every error returned by the pipeline.
func errorHandler(logger *zap.Logger, metrics *observability.Metrics, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		domainErr := toDomainError(err)
		metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

		message := domainErr.Message
		if domainErr.Internal() {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			switch {
			case production:
				message = productionErrorMessage
			case domainErr.Err != nil:
				message = domainErr.Err.Error()
			}
		}

		response := fiber.Map{
			"status":  "error",
			"code":    domainErr.Code,
			"message": message,
		}
		if len(domainErr.Details) > 0 && !domainErr.Internal() {
			response["details"] = domainErr.Details
		}
		return c.Status(domainErr.HTTPStatus).JSON(response)
	}
}

// toDomainError also understands the errors fiber raises itself (body parsing, body limit).
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.FromStatus(fiberErr.Code, fiberErr.Message)
	}
	return apperrors.ToDomainError(err)
}

func statusOf(err error) int {
	return toDomainError(err).HTTPStatus
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// sanitizeMiddleware strips operator-looking keys ($-prefixed or dotted) from JSON bodies
// and query strings before any handler sees them.
func sanitizeMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		args := c.Request().URI().QueryArgs()
		var dropped []string
		args.VisitAll(func(key, _ []byte) {
			if unsafeKey(string(key)) {
				dropped = append(dropped, string(key))
			}
		})
		for _, key := range dropped {
			args.Del(key)
		}

		body := c.Body()
		if len(body) > 0 && strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
			if cleaned, changed := sanitizeJSON(body); changed {
				c.Request().SetBody(cleaned)
				dropped = append(dropped, "body")
			}
		}

		if len(dropped) > 0 {
			logger.Warn("sanitized request", zap.String("path", c.Path()), zap.Strings("fields", dropped))
		}
		return c.Next()
	}
}

// sanitizeJSON returns the body with unsafe keys removed. Invalid JSON is returned unchanged.
func sanitizeJSON(body []byte) ([]byte, bool) {
	var payload any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return body, false
	}
	if !sanitizeValue(payload) {
		return body, false
	}
	cleaned, err := json.Marshal(payload)
	if err != nil {
		return body, false
	}
	return cleaned, true
}

func sanitizeValue(v any) bool {
	changed := false
	switch val := v.(type) {
	case map[string]any:
		for key, child := range val {
			if unsafeKey(key) {
				delete(val, key)
				changed = true
				continue
			}
			if sanitizeValue(child) {
				changed = true
			}
		}
	case []any:
		for _, child := range val {
			if sanitizeValue(child) {
				changed = true
			}
		}
	}
	return changed
}

func unsafeKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}
