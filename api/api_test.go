package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aluiziolira/go-tech-catalog/catalog"
	"github.com/aluiziolira/go-tech-catalog/config"
	"github.com/aluiziolira/go-tech-catalog/models"
	"github.com/aluiziolira/go-tech-catalog/scraper"
)

type stubLoader struct {
	mu       sync.Mutex
	calls    int
	products []models.Product
}

func (s *stubLoader) Run(context.Context) *models.ScrapeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &models.ScrapeResult{Products: s.products, Fallback: models.FallbackPadded}
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Pixel 8", Description: "Android phone", Price: "₹79,999", Category: "smartphone", Link: "https://example.test/1", Source: "Flipkart"},
		{ID: 2, Title: "ThinkPad X1", Description: "Business laptop", Price: "AED 1,89,000", Category: "laptop", Link: "https://example.test/2", Source: "Lenovo"},
		{ID: 3, Title: "Galaxy S24", Description: "Flagship", Price: "₹9,999", Category: "smartphone", Link: "https://example.test/3", Source: "Flipkart"},
	}
}

func newTestHandler(t *testing.T, loader catalog.Loader, load bool) (http.Handler, *catalog.Cache) {
	t.Helper()
	cache := catalog.NewCache(loader, zap.NewNop())
	if load {
		cache.Load(context.Background())
	}
	h := NewHandler(&Server{Cache: cache}, HTTPDeps{
		Log:            zap.NewNop(),
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
	})
	return h, cache
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestListProducts(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)

	tests := []struct {
		name   string
		target string
		want   []int
	}{
		{name: "all", target: "/api/products", want: []int{1, 2, 3}},
		{name: "search", target: "/api/products?search=LAPTOP", want: []int{2}},
		{name: "category", target: "/api/products?category=smartphone", want: []int{1, 3}},
		{name: "category all", target: "/api/products?category=all", want: []int{1, 2, 3}},
		{name: "limit", target: "/api/products?category=smartphone&limit=1", want: []int{1}},
		{name: "invalid limit ignored", target: "/api/products?limit=abc", want: []int{1, 2, 3}},
		{name: "price bounds ignored", target: "/api/products?min_price=100000&max_price=1", want: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status=%d", rec.Code)
			}
			body := decode[ProductsResponse](t, rec)
			if !body.Success || body.Total != len(tt.want) {
				t.Fatalf("success=%v total=%d, want %d", body.Success, body.Total, len(tt.want))
			}
			got := make([]int, 0, len(body.Data))
			for _, p := range body.Data {
				got = append(got, p.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ids=%v, want %v", got, tt.want)
			}
			if body.LastUpdated == nil || body.Timestamp.IsZero() {
				t.Fatalf("expected last_updated and timestamp")
			}
		})
	}
}

func TestListProductsEchoesFilters(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)

	rec := do(t, h, http.MethodGet, "/api/products?search=+pixel+&min_price=10")
	body := decode[map[string]any](t, rec)
	filters := body["filters"].(map[string]any)
	if filters["search"] != "pixel" || filters["min_price"] != "10" || filters["max_price"] != nil {
		t.Fatalf("filters=%v", filters)
	}
}

func TestGetProduct(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)

	rec := do(t, h, http.MethodGet, "/api/products/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if body := decode[ProductResponse](t, rec); body.Data.Title != "ThinkPad X1" {
		t.Fatalf("product=%+v", body.Data)
	}

	rec = do(t, h, http.MethodGet, "/api/products/42")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing id status=%d, want 404", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); body.Success || body.Error != "Product not found" {
		t.Fatalf("body=%+v", body)
	}

	rec = do(t, h, http.MethodGet, "/api/products/abc")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-numeric id status=%d, want 404", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); body.Error != "Endpoint not found" {
		t.Fatalf("body=%+v", body)
	}
}

func TestRefresh(t *testing.T) {
	loader := &stubLoader{products: testProducts()}
	h, cache := newTestHandler(t, loader, false)

	rec := do(t, h, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	body := decode[RefreshResponse](t, rec)
	if !body.Success || body.TotalProducts != 3 || body.Fallback != "padded" || body.LastUpdated.IsZero() {
		t.Fatalf("body=%+v", body)
	}
	if loader.calls != 1 || len(cache.Snapshot().Products) != 3 {
		t.Fatalf("refresh should load the cache once")
	}

	if rec := do(t, h, http.MethodGet, "/api/refresh"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /api/refresh status=%d, want 405", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)

	body := decode[CategoriesResponse](t, do(t, h, http.MethodGet, "/api/categories"))
	if !reflect.DeepEqual(body.Data, []string{"laptop", "smartphone"}) || body.Total != 2 {
		t.Fatalf("categories=%v total=%d", body.Data, body.Total)
	}
}

func TestStats(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)

	body := decode[StatsResponse](t, do(t, h, http.MethodGet, "/api/stats"))
	if body.Data.TotalProducts != 3 {
		t.Fatalf("total=%d", body.Data.TotalProducts)
	}
	sum := 0
	for _, n := range body.Data.Categories {
		sum += n
	}
	if sum != 3 {
		t.Fatalf("category histogram sums to %d", sum)
	}
	bucketed := 0
	for _, n := range body.Data.PriceRanges {
		bucketed += n
	}
	if bucketed != 2 || len(body.Data.PriceRanges) != 4 {
		t.Fatalf("price ranges=%v", body.Data.PriceRanges)
	}
}

func TestHealthBeforeLoad(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{}, false)

	rec := do(t, h, http.MethodGet, "/api/health")
	body := decode[map[string]any](t, rec)
	if body["status"] != "healthy" || body["products_loaded"] != float64(0) || body["last_updated"] != nil {
		t.Fatalf("body=%v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{}, false)

	rec := do(t, h, http.MethodGet, "/api/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); body.Success || body.Error != "Endpoint not found" || body.RequestID == "" {
		t.Fatalf("body=%+v", body)
	}
}

func TestIndexPage(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{}, false)

	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/products") {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type=%q", ct)
	}
}

func TestExport(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)

	rec := do(t, h, http.MethodGet, "/api/export?format=csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 || records[0][0] != "id" || records[3][1] != "Galaxy S24" {
		t.Fatalf("records=%v", records)
	}

	rec = do(t, h, http.MethodGet, "/api/export")
	if lines := strings.Count(rec.Body.String(), "\n"); lines != 3 {
		t.Fatalf("json lines=%d, want 3", lines)
	}

	rec = do(t, h, http.MethodGet, "/api/export?format=xml")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported format status=%d, want 400", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); !strings.Contains(body.Error, "unsupported format") {
		t.Fatalf("body=%+v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{}, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/refresh", nil)
	req.Header.Set("Origin", "http://frontend.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("status=%d headers=%v", rec.Code, rec.Header())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, &stubLoader{products: testProducts()}, true)
	do(t, h, http.MethodGet, "/api/health")

	rec := do(t, h, http.MethodGet, "/metrics")
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "catalog_products_cached 3") {
		t.Fatalf("missing cache gauge in %s", body)
	}
	if !strings.Contains(string(body), `path="/api/health"`) {
		t.Fatalf("missing request metrics in %s", body)
	}
}

func TestRecovererReturnsGenericError(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/api/products")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); body.Error != "Internal server error" {
		t.Fatalf("body=%+v", body)
	}
}

func requestCount(t *testing.T, reg *prometheus.Registry, path, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["path"] == path && labels["status"] == status {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

func newMiddlewareRouter(t *testing.T, log *zap.Logger, reg *prometheus.Registry) *chi.Mux {
	t.Helper()
	cache := catalog.NewCache(&stubLoader{}, zap.NewNop())
	r := chi.NewRouter()
	setupMiddleware(r, &Server{Cache: cache, Log: log}, HTTPDeps{Log: log, Registry: reg})
	return r
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()
	r := newMiddlewareRouter(t, zap.New(core), reg)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := do(t, r, http.MethodGet, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}

	access := logs.FilterMessage("request").All()
	if len(access) != 1 {
		t.Fatalf("access log lines=%d, want 1", len(access))
	}
	if got := access[0].ContextMap()["status"]; got != int64(http.StatusInternalServerError) {
		t.Fatalf("logged status=%v, want 500", got)
	}
	if got := requestCount(t, reg, "/boom", "500"); got != 1 {
		t.Fatalf("http_requests_total{status=500}=%v, want 1", got)
	}
}

func TestMiddlewareKeepsFlusher(t *testing.T) {
	r := newMiddlewareRouter(t, zap.NewNop(), prometheus.NewRegistry())
	r.Get("/stream", func(w http.ResponseWriter, _ *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			http.Error(w, "no flusher", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if rec := do(t, r, http.MethodGet, "/stream"); rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q, want the flusher to be exposed", rec.Code, rec.Body.String())
	}
}

func TestMetricsDefaultStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newMiddlewareRouter(t, zap.NewNop(), reg)
	r.Get("/quiet", func(http.ResponseWriter, *http.Request) {})

	do(t, r, http.MethodGet, "/quiet")
	if got := requestCount(t, reg, "/quiet", "200"); got != 1 {
		t.Fatalf("http_requests_total{status=200}=%v, want 1", got)
	}
}

func TestRefreshWithUnreachableSources(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	s, err := scraper.NewScraper(config.DefaultConfig(),
		scraper.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		scraper.WithSources(
			scraper.Source{Name: "Flipkart", URL: upstream.URL + "/search?q=smartphone", Site: scraper.SiteFlipkart, Category: "smartphone"},
			scraper.Source{Name: "Amazon", URL: upstream.URL + "/s?k=laptop", Site: scraper.SiteAmazon, Category: "laptop"},
		),
	)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	h, _ := newTestHandler(t, s, false)

	first := decode[RefreshResponse](t, do(t, h, http.MethodPost, "/api/refresh"))
	firstProducts := decode[ProductsResponse](t, do(t, h, http.MethodGet, "/api/products"))
	second := decode[RefreshResponse](t, do(t, h, http.MethodPost, "/api/refresh"))
	secondProducts := decode[ProductsResponse](t, do(t, h, http.MethodGet, "/api/products"))

	if first.TotalProducts == 0 || first.TotalProducts > 15 || first.Fallback != "padded" {
		t.Fatalf("first refresh=%+v", first)
	}
	if second.TotalProducts != first.TotalProducts {
		t.Fatalf("refresh sizes differ: %d vs %d", first.TotalProducts, second.TotalProducts)
	}
	if !reflect.DeepEqual(firstProducts.Data, secondProducts.Data) {
		t.Fatalf("fallback content should be identical across refreshes")
	}
}
