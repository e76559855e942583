// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// Every API response uses the same envelope: a status code, a human message,
// the payload and an optional pagination block. This package owns that
// envelope plus the request parsing helpers and shared middleware.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, "Employees fetched successfully", records)
//	httputil.WritePage(w, msg, records, pagination)
//	httputil.WriteValidationError(w, "organization_id is required")
//	httputil.WriteInternalError(w)
//
// # Request Parsing
//
//	var req UpdateColumnsRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
//	orgID, ok := httputil.ParsePathInt64OrError(w, r, "id")
//	limit, err := httputil.ParseQueryIntAlias(r, []string{"limit", "page_size"}, 10)
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RecoveryMiddleware,
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware,
//		httputil.MaxBytesMiddleware(1024*1024),
//	)
package httputil
