// Package ratelimit implements fixed-window per-IP rate limiting over the
// shared redis store. Incrementing the counter and arming the window expiry
// run as one atomic script so concurrent requests from the same key can never
// split the window.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/socialmesh/platform/pkg/logging"
)

// Policy is a named fixed-window limit applied per client IP.
type Policy struct {
	Name   string
	Limit  int64
	Window time.Duration
}

// GlobalPolicy is the ingress limit applied to every request, at the gateway
// and again at the identity service.
func GlobalPolicy() Policy {
	return Policy{Name: "global", Limit: 10, Window: time.Second}
}

// SensitivePolicy covers abuse-prone routes such as registration and the
// auth proxy, with a longer window and a higher ceiling.
func SensitivePolicy(name string, limit int64, window time.Duration) Policy {
	return Policy{Name: name, Limit: limit, Window: window}
}

var incrScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type Limiter struct {
	rdb    *redis.Client
	policy Policy
}

func New(rdb *redis.Client, policy Policy) *Limiter {
	return &Limiter{rdb: rdb, policy: policy}
}

// Allow atomically increments the window counter for key and reports whether
// the request is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.policy.Name, key)
	n, err := incrScript.Run(ctx, l.rdb, []string{redisKey}, l.policy.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit %s: %w", l.policy.Name, err)
	}
	return n <= l.policy.Limit, nil
}

// Middleware rejects over-limit requests with 429 before the handler runs.
// Store failures reject as well: failing open would silently disable the
// protection this layer exists to provide.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ok, err := l.Allow(ctx, c.RealIP())
			if err != nil {
				logging.FromContext(ctx).Error("rate limit store unavailable", "policy", l.policy.Name, "error", err)
				return tooManyRequests(c)
			}
			if !ok {
				logging.FromContext(ctx).Warn("rate limit exceeded", "policy", l.policy.Name, "ip", c.RealIP())
				return tooManyRequests(c)
			}
			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"success": false,
		"message": "too many requests",
	})
}
