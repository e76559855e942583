package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

// DistributedRateLimiter implements fixed-window rate limiting in Redis so
// the window is shared across instances.
type DistributedRateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	prefix string
	// failOpen allows requests through on Redis errors instead of
	// returning 503.
	failOpen bool
}

// NewDistributedRateLimiter creates a Redis-backed fixed-window limiter.
func NewDistributedRateLimiter(redisClient *redis.Client, config RateLimitConfig, prefix string) (*DistributedRateLimiter, error) {
	if config.Requests <= 0 || config.Window <= 0 {
		return nil, fmt.Errorf("rate limit requests and window must be positive")
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &DistributedRateLimiter{
		redis:    redisClient,
		config:   config,
		prefix:   prefix,
		failOpen: true,
	}, nil
}

// SetFailOpen controls whether Redis errors allow (true) or block (false)
// requests.
func (l *DistributedRateLimiter) SetFailOpen(failOpen bool) {
	l.failOpen = failOpen
}

// CheckAndRecord increments the client's window counter and decides in one
// round trip. The TTL is set only when the counter starts a window; denied
// requests must not push the reset further out.
func (l *DistributedRateLimiter) CheckAndRecord(ctx context.Context, clientKey string) (Decision, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, clientKey)

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis error: %w", err)
	}

	count := incr.Val()
	reset := time.Now().Add(l.config.Window)
	if count == 1 || ttl.Val() < 0 {
		// First hit of a window, or a key left behind without a TTL.
		if err := l.redis.Expire(ctx, redisKey, l.config.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis error: %w", err)
		}
	} else if d := ttl.Val(); d > 0 {
		reset = time.Now().Add(d)
	}

	remaining := l.config.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(l.config.Requests),
		Limit:     l.config.Requests,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// Reset clears the window for a client.
func (l *DistributedRateLimiter) Reset(ctx context.Context, clientKey string) error {
	return l.redis.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, clientKey)).Err()
}

// HealthCheck verifies Redis connectivity.
func (l *DistributedRateLimiter) HealthCheck(ctx context.Context) error {
	return l.redis.Ping(ctx).Err()
}

// Handler wraps an HTTP handler with distributed per-client-IP rate
// limiting.
func (l *DistributedRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := l.CheckAndRecord(r.Context(), "ip:"+getClientIP(r))
		if err != nil {
			if l.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", decision.Reset.Unix()))

		if !decision.Allowed {
			writeRateLimitExceeded(w, decision)
			return
		}

		next.ServeHTTP(w, r)
	})
}
