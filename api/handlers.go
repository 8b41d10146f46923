package api

import (
	"context"
	_ "embed"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-tech-catalog/catalog"
	"github.com/aluiziolira/go-tech-catalog/models"
	"github.com/aluiziolira/go-tech-catalog/pipeline"
)

//go:embed index.html
var indexPage []byte

// Server serves the catalog over HTTP.
type Server struct {
	Cache *catalog.Cache
	Log   *zap.Logger
}

// Filters echoes the query parameters a listing was produced with.
type Filters struct {
	Search   string  `json:"search"`
	Category string  `json:"category"`
	MinPrice *string `json:"min_price"`
	MaxPrice *string `json:"max_price"`
}

// ProductsResponse is the body of GET /api/products.
type ProductsResponse struct {
	Success     bool             `json:"success"`
	Data        []models.Product `json:"data"`
	Total       int              `json:"total"`
	Filters     Filters          `json:"filters"`
	LastUpdated *time.Time       `json:"last_updated"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ProductResponse is the body of GET /api/products/{id}.
type ProductResponse struct {
	Success   bool           `json:"success"`
	Data      models.Product `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// RefreshResponse is the body of POST /api/refresh.
type RefreshResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	TotalProducts int       `json:"total_products"`
	Fallback      string    `json:"fallback"`
	LastUpdated   time.Time `json:"last_updated"`
	Timestamp     time.Time `json:"timestamp"`
}

// CategoriesResponse is the body of GET /api/categories.
type CategoriesResponse struct {
	Success   bool      `json:"success"`
	Data      []string  `json:"data"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Success   bool          `json:"success"`
	Data      catalog.Stats `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Success        bool       `json:"success"`
	Status         string     `json:"status"`
	ProductsLoaded int        `json:"products_loaded"`
	LastUpdated    *time.Time `json:"last_updated"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.index)
	r.Get("/api/products", s.listProducts)
	r.Get("/api/products/{id:[0-9]+}", s.getProduct)
	r.Post("/api/refresh", s.refresh)
	r.Get("/api/categories", s.categories)
	r.Get("/api/stats", s.stats)
	r.Get("/api/health", s.health)
	r.Get("/api/export", s.export)
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := catalog.Query{
		Search:   strings.TrimSpace(values.Get("search")),
		Category: strings.TrimSpace(values.Get("category")),
		MinPrice: optionalParam(values, "min_price"),
		MaxPrice: optionalParam(values, "max_price"),
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil {
		q.Limit = limit
	}

	snap := s.Cache.Snapshot()
	products := catalog.Filter(snap.Products, q)

	writeJSON(w, http.StatusOK, ProductsResponse{
		Success: true,
		Data:    products,
		Total:   len(products),
		Filters: Filters{
			Search:   q.Search,
			Category: q.Category,
			MinPrice: q.MinPrice,
			MaxPrice: q.MaxPrice,
		},
		LastUpdated: lastUpdated(snap),
		Timestamp:   time.Now(),
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, msgProductNotFound)
		return
	}

	p, ok := s.Cache.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{
		Success:   true,
		Data:      p,
		Timestamp: time.Now(),
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.Log.Info("refreshing product data", zap.String("request_id", chimw.GetReqID(r.Context())))

	// A client hanging up must not abort the refresh into the full fallback.
	snap, result := s.Cache.Load(context.WithoutCancel(r.Context()))

	writeJSON(w, http.StatusOK, RefreshResponse{
		Success:       true,
		Message:       "Product data refreshed successfully",
		TotalProducts: len(snap.Products),
		Fallback:      string(result.Fallback),
		LastUpdated:   snap.LastUpdated,
		Timestamp:     time.Now(),
	})
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	categories := catalog.Categories(s.Cache.Snapshot().Products)
	writeJSON(w, http.StatusOK, CategoriesResponse{
		Success:   true,
		Data:      categories,
		Total:     len(categories),
		Timestamp: time.Now(),
	})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Success:   true,
		Data:      catalog.ComputeStats(s.Cache.Snapshot()),
		Timestamp: time.Now(),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	snap := s.Cache.Snapshot()
	writeJSON(w, http.StatusOK, HealthResponse{
		Success:        true,
		Status:         "healthy",
		ProductsLoaded: len(snap.Products),
		LastUpdated:    lastUpdated(snap),
		Timestamp:      time.Now(),
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = pipeline.FormatJSON
	}

	writer, err := pipeline.NewWriter(format, w)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("Content-Disposition", "attachment; filename=products."+format)
	w.WriteHeader(http.StatusOK)

	if err := writer.Write(s.Cache.Snapshot().Products); err != nil {
		s.Log.Error("export failed", zap.String("format", format), zap.Error(err))
		return
	}
	if err := writer.Close(); err != nil {
		s.Log.Error("export flush failed", zap.String("format", format), zap.Error(err))
		return
	}
	s.Log.Debug("export written", zap.String("format", format), zap.Int("records", writer.Count()))
}

func optionalParam(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	value := v[0]
	return &value
}

func lastUpdated(snap *catalog.Snapshot) *time.Time {
	if !snap.Loaded() {
		return nil
	}
	t := snap.LastUpdated
	return &t
}
