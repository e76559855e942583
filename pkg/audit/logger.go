package audit

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Logger is the search-log sink. Implementations must be safe for
// concurrent use.
type Logger interface {
	Log(ctx context.Context, event *Event) error
	Close() error
}

// NopLogger discards all events. Used when auditing is disabled.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Log(ctx context.Context, event *Event) error { return nil }
func (*NopLogger) Close() error                                { return nil }

// NewEvent builds an event from the request and search outcome. r may be nil
// for non-HTTP callers (seeding, tests).
func NewEvent(r *http.Request, orgID int64, filters map[string]interface{}, resultCount int, elapsed time.Duration) *Event {
	event := &Event{
		OrganizationID: orgID,
		Filters:        EncodeFilters(filters),
		ResultCount:    resultCount,
		ResponseTimeMS: float64(elapsed.Microseconds()) / 1000.0,
		CreatedAt:      time.Now().UTC(),
	}
	if r != nil {
		event.ClientIP = clientIP(r)
		event.UserAgent = r.UserAgent()
	}
	return event
}

// clientIP extracts the originating client address, preferring proxy headers
// over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
