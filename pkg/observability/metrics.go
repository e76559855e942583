package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Search metrics
	SearchesTotal       *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchResultCount   *prometheus.HistogramVec
	SearchErrorsTotal   *prometheus.CounterVec

	// Audit metrics
	AuditWritesTotal    *prometheus.CounterVec
	AuditSweepsTotal    *prometheus.CounterVec
	AuditRowsSweptTotal prometheus.Counter

	// Rate limit metrics
	RateLimitDecisions *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	DBWaitCount         prometheus.Gauge
	DBWaitDuration      prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_searches_total",
				Help: "Total number of employee searches",
			},
			[]string{"status"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_search_duration_seconds",
				Help:    "End to end employee search duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"status"},
		),
		SearchResultCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_search_result_count",
				Help:    "Number of rows returned per search page",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{"status"},
		),
		SearchErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_search_errors_total",
				Help: "Total number of failed employee searches",
			},
			[]string{"reason"},
		),

		AuditWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_audit_writes_total",
				Help: "Total number of search audit log writes",
			},
			[]string{"status"},
		),
		AuditSweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_audit_sweeps_total",
				Help: "Total number of audit retention sweeps",
			},
			[]string{"status"},
		),
		AuditRowsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "roster_audit_rows_swept_total",
				Help: "Total number of audit rows removed by retention sweeps",
			},
		),

		RateLimitDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_ratelimit_decisions_total",
				Help: "Rate limiter decisions by outcome",
			},
			[]string{"outcome"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roster_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roster_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBWaitCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roster_db_connections_wait_count",
				Help: "Total number of connections waited for",
			},
		),
		DBWaitDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roster_db_connections_wait_duration_seconds",
				Help: "Total time spent waiting for connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.SearchesTotal,
		m.SearchDuration,
		m.SearchResultCount,
		m.SearchErrorsTotal,
		m.AuditWritesTotal,
		m.AuditSweepsTotal,
		m.AuditRowsSweptTotal,
		m.RateLimitDecisions,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.DBWaitCount,
		m.DBWaitDuration,
	)

	return m
}

// RecordSearch records the outcome of one search pipeline run.
func (m *Metrics) RecordSearch(status string, duration time.Duration, resultCount int) {
	m.SearchesTotal.WithLabelValues(status).Inc()
	m.SearchDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.SearchResultCount.WithLabelValues(status).Observe(float64(resultCount))
}

// UpdateDBStats copies sql.DBStats into the connection pool gauges. Call
// periodically from the health server loop.
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
	m.DBWaitCount.Set(float64(stats.WaitCount))
	m.DBWaitDuration.Set(stats.WaitDuration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
