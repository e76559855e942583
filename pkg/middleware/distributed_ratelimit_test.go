package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLimiter(t *testing.T, requests int) (*DistributedRateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter, err := NewDistributedRateLimiter(client, RateLimitConfig{
		Requests: requests,
		Window:   time.Minute,
	}, "test")
	require.NoError(t, err)

	return limiter, mr
}

func TestDistributedCheckAndRecord(t *testing.T) {
	limiter, _ := setupRedisLimiter(t, 2)
	ctx := context.Background()

	first, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Zero(t, second.Remaining)

	third, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, third.Allowed)

	// Reset clears the window.
	require.NoError(t, limiter.Reset(ctx, "ip:10.0.0.1"))
	again, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, again.Allowed)
}

func TestDistributedWindowExpiry(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 1)
	ctx := context.Background()

	first, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	require.True(t, first.Allowed)

	denied, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	mr.FastForward(2 * time.Minute)

	after, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, after.Allowed)
}

func TestDistributedHandlerFailOpen(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 1)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	mr.Close()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	// Redis down, request still served.
	assert.Equal(t, http.StatusOK, w.Code)

	// Fail closed returns 503 instead.
	limiter.SetFailOpen(false)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDistributedDeniedRequestsDoNotExtendWindow(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 1)
	ctx := context.Background()

	first, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.9")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	// A denied request halfway through the window must leave the TTL alone.
	mr.FastForward(30 * time.Second)
	denied, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.9")
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	// The original window runs out on schedule even though the client kept
	// hammering while blocked.
	mr.FastForward(30 * time.Second)
	again, err := limiter.CheckAndRecord(ctx, "ip:10.0.0.9")
	require.NoError(t, err)
	assert.True(t, again.Allowed)
}
