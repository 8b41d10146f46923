package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-tech-catalog/catalog"
)

const (
	labelMethod = "method"
	labelPath   = "path"
	labelStatus = "status"

	unmatchedPath = "unmatched"
)

// Metrics holds HTTP collectors for the API.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewMetrics registers request metrics plus a gauge tracking the cache size.
func NewMetrics(reg prometheus.Registerer, cache *catalog.Cache) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP latency",
			},
			[]string{labelMethod, labelPath},
		),
	}
	cached := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_products_cached",
			Help: "Products in the current cache snapshot",
		},
		func() float64 { return float64(len(cache.Snapshot().Products)) },
	)

	reg.MustRegister(m.Requests, m.Latency, cached)
	return m
}

// Middleware records request counts and latency labelled by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := routePattern(r)
		m.Latency.WithLabelValues(r.Method, path).
			Observe(time.Since(start).Seconds())

		m.Requests.WithLabelValues(r.Method, path, strconv.Itoa(status)).
			Inc()
	})
}

// routePattern keeps label cardinality bounded: unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if rp := rctx.RoutePattern(); rp != "" {
			return rp
		}
	}
	return unmatchedPath
}
