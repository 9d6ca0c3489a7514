package auth

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/job-tracker/internal/config"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

const rateLimitPrefix = "ratelimit:auth:"

// RateLimiter is a fixed-window per-IP limiter backed by Redis. A nil client, or any
// Redis failure, lets the request through.
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	logger *zap.Logger
}

// NewRateLimiter builds the limiter.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, max: cfg.Max, window: cfg.Window(), logger: logger}
}

// Handle counts the request against the caller's window.
func (l *RateLimiter) Handle(c *fiber.Ctx) error {
	if l == nil || l.client == nil || l.max <= 0 || l.window <= 0 {
		return c.Next()
	}

	ctx := c.UserContext()
	key := rateLimitPrefix + c.IP()

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", zap.Error(err))
		}
	}

	remaining := int64(l.max) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Set("RateLimit-Limit", strconv.Itoa(l.max))
	c.Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if count > int64(l.max) {
		if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Seconds())))
		}
		return apperrors.NewTooManyRequests("too many requests from this IP, please try again later")
	}
	return c.Next()
}
