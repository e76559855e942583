// Package api is the HTTP surface of the directory service: the employee
// search endpoint, the organization provisioning endpoints, and the
// liveness envelope. Every response uses the
// {status, message, data, pagination} envelope from pkg/httputil.
//
// The server wires the ambient middleware itself: panic recovery, request
// IDs, CORS, Prometheus instrumentation, OpenTelemetry spans, and the rate
// limiter in front of everything else.
package api
