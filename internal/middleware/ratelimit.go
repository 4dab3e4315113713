// Package middleware holds HTTP middleware that needs state outside the
// request, such as the Redis-backed login throttle.
package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/alzy/commerce-api/internal/logging"
	"github.com/redis/go-redis/v9"
)

const loginKeyPrefix = "ratelimit:login:"

// Counter increments a fixed-window counter and reports the count within the
// current window and the time left until it resets.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter implements Counter with INCR. The window TTL is attached when
// the key has none, which works on servers without EXPIRE NX.
type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		if err := c.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	counter     Counter
	maxAttempts int
	window      time.Duration
	logger      logging.Logger
}

func NewLoginLimiter(counter Counter, maxAttempts int, window time.Duration, logger logging.Logger) *LoginLimiter {
	return &LoginLimiter{
		counter:     counter,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

// Handler rejects requests beyond maxAttempts per window with 429. Counter
// failures let the request through.
func (l *LoginLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.counter == nil || l.maxAttempts <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		count, reset, err := l.counter.Incr(r.Context(), loginKeyPrefix+ip, l.window)
		if err != nil {
			l.logger.Warn(r.Context(), "login rate limit unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := int64(l.maxAttempts) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.maxAttempts))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(l.maxAttempts) {
			seconds := int(reset.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			l.logger.Info(r.Context(), "login rate limited", "ip", ip, "attempts", count)
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many login attempts"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
