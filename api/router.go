// Package api exposes the product catalog over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HTTPDeps carries the ambient dependencies of the router.
type HTTPDeps struct {
	Log      *zap.Logger
	Registry *prometheus.Registry

	MetricsEnabled bool
}

// NewHandler builds the full router: middleware, metrics and catalog routes.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()
	setupMiddleware(r, s, deps)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	s.Routes(r)
	if deps.Registry != nil && deps.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

// setupMiddleware orders the stack so the access log and request metrics sit
// outside Recoverer and see the 500 written for a panic.
func setupMiddleware(r *chi.Mux, s *Server, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(Logging(deps.Log))
	if deps.Registry != nil {
		r.Use(NewMetrics(deps.Registry, s.Cache).Middleware)
	}
	r.Use(Recoverer(deps.Log))
	r.Use(CORS)
}
