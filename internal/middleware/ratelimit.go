package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shinyyama/village-market/internal/reqctx"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
}

// NewRateLimiter counts requests per client and route in fixed windows stored
// in redis. A nil client disables limiting. Redis errors let the request through.
func NewRateLimiter(cfg RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if rdb == nil || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "vm:rl"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			key := rateKey(cfg, c, now)
			ctx := c.Request().Context()

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.Printf("[ratelimit] rid=%s key=%s redis err=%v", reqctx.RID(ctx), key, err)
				return next(c)
			}
			if count == 1 {
				// the key is per window, so the TTL only bounds garbage
				if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
					log.Printf("[ratelimit] rid=%s key=%s expire err=%v", reqctx.RID(ctx), key, err)
				}
			}

			remaining := int64(cfg.Requests) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if count > int64(cfg.Requests) {
				h.Set("Retry-After", strconv.Itoa(retryAfter(cfg.Window, now)))
				return deny(c, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func rateKey(cfg RateLimitConfig, c echo.Context, now time.Time) string {
	client := c.RealIP()
	if p := reqctx.Principal(c.Request().Context()); p != nil {
		client = fmt.Sprintf("u%d", p.UserID)
	}
	if client == "" {
		client = "unknown"
	}
	window := now.UnixNano() / int64(cfg.Window)
	return fmt.Sprintf("%s:%s:%s %s:%d", cfg.Prefix, client, c.Request().Method, c.Path(), window)
}

// retryAfter is the number of whole seconds until the current window ends.
func retryAfter(window time.Duration, now time.Time) int {
	elapsed := time.Duration(now.UnixNano() % int64(window))
	secs := int((window - elapsed + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
