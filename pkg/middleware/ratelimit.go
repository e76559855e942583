package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RateLimitConfig defines fixed-window rate limiting settings.
type RateLimitConfig struct {
	// Requests is the max requests allowed per window per client.
	Requests int
	// Window is the fixed window duration.
	Window time.Duration
	// MaxClients bounds the in-memory ledger; least recently seen clients
	// are evicted first.
	MaxClients int
}

// DefaultRateLimitConfig returns default rate limit settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:   100,
		Window:     time.Minute,
		MaxClients: 10000,
	}
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter returns the seconds until the window resets, at least 1.
func (d Decision) RetryAfter() int {
	seconds := int(time.Until(d.Reset).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

type window struct {
	start time.Time
	count int
}

// FixedWindowLimiter counts requests per client in fixed windows. The check
// and the count update are a single operation so two concurrent requests
// cannot both claim the last slot.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	config  RateLimitConfig
	clients *lru.Cache[string, *window]
	now     func() time.Time
}

// NewFixedWindowLimiter creates an in-memory fixed-window limiter.
func NewFixedWindowLimiter(config RateLimitConfig) (*FixedWindowLimiter, error) {
	if config.Requests <= 0 || config.Window <= 0 {
		return nil, fmt.Errorf("rate limit requests and window must be positive")
	}
	if config.MaxClients <= 0 {
		config.MaxClients = DefaultRateLimitConfig().MaxClients
	}

	clients, err := lru.New[string, *window](config.MaxClients)
	if err != nil {
		return nil, fmt.Errorf("failed to create client ledger: %w", err)
	}

	return &FixedWindowLimiter{
		config:  config,
		clients: clients,
		now:     time.Now,
	}, nil
}

// CheckAndRecord checks the client's current window and records the request
// in one step. Denied requests are not counted.
func (l *FixedWindowLimiter) CheckAndRecord(clientKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	config := l.config

	w, ok := l.clients.Get(clientKey)
	if !ok || now.Sub(w.start) >= config.Window {
		w = &window{start: now}
		l.clients.Add(clientKey, w)
	}

	reset := w.start.Add(config.Window)
	if w.count >= config.Requests {
		return Decision{
			Allowed:   false,
			Limit:     config.Requests,
			Remaining: 0,
			Reset:     reset,
		}
	}

	w.count++
	return Decision{
		Allowed:   true,
		Limit:     config.Requests,
		Remaining: config.Requests - w.count,
		Reset:     reset,
	}
}

// UpdateConfig swaps the limiter settings. Existing windows keep their
// counts; the new limit applies from the next check.
func (l *FixedWindowLimiter) UpdateConfig(config RateLimitConfig) error {
	if config.Requests <= 0 || config.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	config.MaxClients = l.config.MaxClients
	l.config = config
	return nil
}

// Handler wraps an HTTP handler with per-client-IP rate limiting.
func (l *FixedWindowLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := l.CheckAndRecord("ip:" + getClientIP(r))

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

func writeRateLimitExceeded(w http.ResponseWriter, decision Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", decision.RetryAfter()))
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"status":429,"message":"Rate limit exceeded. Please try again later.","retry_after":%d}`,
		decision.RetryAfter())
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
