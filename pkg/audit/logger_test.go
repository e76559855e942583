package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/employees/search?organization_id=7", nil)
	r.Header.Set("User-Agent", "curl/8.0")
	r.RemoteAddr = "192.0.2.10:51234"

	event := NewEvent(r, 7, map[string]interface{}{"department": "Engineering"}, 3, 15*time.Millisecond)

	assert.Equal(t, int64(7), event.OrganizationID)
	assert.JSONEq(t, `{"department":"Engineering"}`, event.Filters)
	assert.Equal(t, 3, event.ResultCount)
	assert.Equal(t, "192.0.2.10", event.ClientIP)
	assert.Equal(t, "curl/8.0", event.UserAgent)
	assert.Equal(t, 15.0, event.ResponseTimeMS)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(r))
}

type failingLogger struct{ err error }

func (f *failingLogger) Log(ctx context.Context, event *Event) error { return f.err }
func (f *failingLogger) Close() error                                { return nil }

type recordingLogger struct{ events []*Event }

func (r *recordingLogger) Log(ctx context.Context, event *Event) error {
	r.events = append(r.events, event)
	return nil
}
func (r *recordingLogger) Close() error { return nil }

func TestMultiLogger(t *testing.T) {
	sink := &recordingLogger{}
	failing := &failingLogger{err: errors.New("disk full")}

	multi := NewMultiLogger(sink, failing)
	err := multi.Log(context.Background(), &Event{OrganizationID: 7})

	// The healthy sink still received the event.
	require.Len(t, sink.events, 1)
	assert.ErrorContains(t, err, "disk full")
}
