package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rosterhq/rosterd/pkg/httputil"
	"github.com/rosterhq/rosterd/pkg/search"
	"github.com/rosterhq/rosterd/pkg/visibility"
)

// searchEmployees handles GET /api/employees/search. Query parameters:
// organization_id (required), name, department, position, location, status,
// offset (alias skip) and limit (alias page_size).
func (s *Server) searchEmployees(w http.ResponseWriter, r *http.Request) {
	orgID, err := httputil.ParseQueryInt64(r, "organization_id", 0)
	if err != nil {
		httputil.WriteValidationError(w, "organization_id must be an integer")
		return
	}

	offset, err := httputil.ParseQueryIntAlias(r, []string{"offset", "skip"}, 0)
	if err != nil {
		httputil.WriteValidationError(w, "offset must be an integer")
		return
	}

	limit, err := httputil.ParseQueryIntAlias(r, []string{"limit", "page_size"}, 0)
	if err != nil {
		httputil.WriteValidationError(w, "limit must be an integer")
		return
	}

	req := search.Request{
		OrganizationID: orgID,
		Name:           httputil.ParseQueryString(r, "name", ""),
		Department:     httputil.ParseQueryString(r, "department", ""),
		Position:       httputil.ParseQueryString(r, "position", ""),
		Location:       httputil.ParseQueryString(r, "location", ""),
		Status:         httputil.ParseQueryString(r, "status", ""),
		Offset:         offset,
		Limit:          limit,
		ClientIP:       clientIP(r),
		UserAgent:      r.UserAgent(),
	}

	result, err := s.deps.Search.Search(r.Context(), req)
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}

	httputil.WritePage(w, "Search completed successfully", result.Records, search.Pagination{
		Total:  result.Total,
		Offset: result.Offset,
		Limit:  result.Limit,
	})
}

// writeSearchError maps pipeline errors onto the envelope. Validation and
// missing tenant configuration are client errors; everything else is a
// server error with a short generic message.
func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, search.ErrValidation):
		httputil.WriteValidationError(w, validationMessage(err))
	case errors.Is(err, visibility.ErrTenantConfigMissing):
		httputil.WriteValidationError(w, err.Error())
	default:
		s.deps.Logger.WithError(err).
			WithField("request_id", httputil.RequestIDFromContext(r.Context())).
			Error("employee search failed")
		httputil.WriteError(w, http.StatusInternalServerError,
			"Internal server error during database operation")
	}
}

// validationMessage strips the sentinel prefix so the client sees only the
// violated constraint.
func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

// clientIP prefers the forwarding headers set by proxies over RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return host
}
