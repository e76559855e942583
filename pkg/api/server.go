package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rosterhq/rosterd/pkg/httputil"
	"github.com/rosterhq/rosterd/pkg/observability"
	"github.com/rosterhq/rosterd/pkg/orgs"
	"github.com/rosterhq/rosterd/pkg/search"
)

// Deps carries the collaborators the server needs. RateLimit and Metrics
// are optional; nil disables them.
type Deps struct {
	Search         *search.Service
	Orgs           *orgs.Service
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	RateLimit      func(http.Handler) http.Handler
	AllowedOrigins []string
	TraceHTTP      bool
}

// Server represents the directory API server
type Server struct {
	router *mux.Router
	deps   Deps
}

// NewServer creates the API server and registers its routes.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Server{
		router: mux.NewRouter(),
		deps:   deps,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.health).Methods("GET")

	s.router.HandleFunc("/api/employees/search", s.searchEmployees).Methods("GET")

	s.router.HandleFunc("/api/orgs", s.createOrganization).Methods("POST")
	s.router.HandleFunc("/api/orgs", s.listOrganizations).Methods("GET")
	s.router.HandleFunc("/api/orgs/{id}", s.getOrganization).Methods("GET")
	s.router.HandleFunc("/api/orgs/{id}/columns", s.getColumnConfigs).Methods("GET")
	s.router.HandleFunc("/api/orgs/{id}/columns", s.replaceColumnConfigs).Methods("PUT")
	s.router.HandleFunc("/api/orgs/{id}/employees", s.createEmployee).Methods("POST")
}

// Handler returns the router wrapped in the ambient middleware stack. The
// rate limiter sits innermost so recovery, request IDs and metrics still
// apply to rejected requests.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.router

	if s.deps.TraceHTTP {
		handler = otelhttp.NewHandler(handler, "rosterd.api")
	}
	if s.deps.RateLimit != nil {
		handler = s.deps.RateLimit(handler)
	}

	middlewares := []func(http.Handler) http.Handler{
		httputil.RecoveryMiddleware,
		httputil.RequestIDMiddleware,
	}
	if len(s.deps.AllowedOrigins) > 0 {
		middlewares = append(middlewares, httputil.CORSMiddleware(s.deps.AllowedOrigins))
	}
	if s.deps.Metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(s.deps.Metrics))
	}

	return httputil.Chain(middlewares...)(handler)
}

// Router exposes the bare router for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// health keeps the envelope the original service shipped.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, "Server is up and Running!", nil)
}
