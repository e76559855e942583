// Package observability bundles the operational concerns of the directory
// service: structured JSON logging over log/slog, Prometheus metrics,
// OpenTelemetry tracing and metric export, and health probes for the
// database and Redis dependencies.
//
// The package is wiring, not policy. Handlers and services receive a
// *Logger and *Metrics and decide what to record; this package only owns
// instrument registration, exporter setup, and the /metrics and /health
// HTTP surfaces served on the dedicated health port.
package observability
