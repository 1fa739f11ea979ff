package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// RateLimiter is a fixed-window request counter kept in Redis.
type RateLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// MinRateLimitWindow is the smallest window the limiter accepts. Retry-After
// is reported in whole seconds.
const MinRateLimitWindow = time.Second

// NewRateLimiter allows limit requests per caller per window. A nil client
// or non-positive limit disables limiting. A non-positive window defaults to
// one minute and shorter windows are raised to MinRateLimitWindow.
func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	switch {
	case window <= 0:
		window = time.Minute
	case window < MinRateLimitWindow:
		window = MinRateLimitWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{client: client, limit: limit, window: window, logger: logger, now: time.Now}
}

// Handle counts the request against the caller's current window. Redis
// failures let the request through.
func (r *RateLimiter) Handle(c *fiber.Ctx) error {
	if r == nil || r.client == nil || r.limit <= 0 {
		return c.Next()
	}

	key := r.key(c)
	ctx := c.UserContext()
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Warn("rate limiter unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			r.logger.Warn("rate limiter expire failed", zap.String("key", key), zap.Error(err))
		}
	}
	if count > int64(r.limit) {
		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(r.window.Seconds())))
		return apperrors.NewTooManyRequests("too many requests")
	}
	return c.Next()
}

func (r *RateLimiter) key(c *fiber.Ctx) string {
	subject := "ip:" + c.IP()
	if caller, ok := auth.CallerFromContext(c); ok {
		subject = "user:" + caller.ID
	}
	bucket := r.now().UnixNano() / int64(r.window)
	return fmt.Sprintf("ratelimit:%s:%d", subject, bucket)
}
