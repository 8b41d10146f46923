package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aluiziolira/go-tech-catalog/config"
	"github.com/aluiziolira/go-tech-catalog/models"
	"github.com/aluiziolira/go-tech-catalog/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrPipelineClosed is returned when Process is called after Finalize.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

// Assembly is the final, numbered product list of one refresh.
type Assembly struct {
	Products []models.Product
	Fallback models.FallbackMode
}

// Pipeline coordinates validation, de-duplication, fallback padding and numbering
// of scraped items for a single refresh.
type Pipeline struct {
	cfg  *config.Config
	seen *lru.Cache[string, struct{}]

	metrics metrics

	mu       sync.Mutex // guards products/closed
	products []models.Product
	closed   bool
}

// NewPipeline builds a pipeline sized from cfg.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	seen, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}
	return &Pipeline{
		cfg:     cfg,
		seen:    seen,
		metrics: newMetrics(),
	}, nil
}

// Process accepts extraction outcomes and returns them with their final skip
// reason, so callers can log what was dropped.
func (p *Pipeline) Process(outcomes ...models.ItemOutcome) ([]models.ItemOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPipelineClosed
	}

	out := make([]models.ItemOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		outcome = p.prepare(outcome)
		if outcome.Accepted() {
			p.products = append(p.products, *outcome.Product)
			p.metrics.incrementProcessed()
		} else {
			p.metrics.addSkip(outcome.Skip)
		}
		out = append(out, outcome)
	}
	return out, nil
}

// Accepted reports how many scraped products made it through validation.
func (p *Pipeline) Accepted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.products)
}

// Finalize pads with fallback data when the scrape was insufficient, caps the
// list and assigns ids. The pipeline cannot be reused afterwards.
func (p *Pipeline) Finalize(fallbackData []models.Product) Assembly {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	products := make([]models.Product, 0, p.cfg.MaxProducts)
	products = append(products, p.products...)

	mode := models.FallbackNone
	if len(products) < p.cfg.MinScraped {
		pad := min(p.cfg.FallbackPad, len(fallbackData))
		products = append(products, fallbackData[:pad]...)
		mode = models.FallbackPadded
	}

	return Assembly{
		Products: number(truncate(products, p.cfg.MaxProducts)),
		Fallback: mode,
	}
}

// Substitute returns the whole fallback dataset, capped and numbered. It is used
// when a refresh fails outright and partial results are discarded.
func Substitute(fallbackData []models.Product, maxProducts int) Assembly {
	products := make([]models.Product, len(fallbackData))
	copy(products, fallbackData)
	return Assembly{
		Products: number(truncate(products, maxProducts)),
		Fallback: models.FallbackFull,
	}
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

func (p *Pipeline) prepare(outcome models.ItemOutcome) models.ItemOutcome {
	if outcome.Skip != models.SkipNone {
		outcome.Product = nil
		return outcome
	}
	if err := parser.ValidateProduct(outcome.Product); err != nil {
		outcome.Product = nil
		outcome.Skip = models.SkipMissingTitle
		if errors.Is(err, parser.ErrMissingPrice) {
			outcome.Skip = models.SkipMissingPrice
		}
		return outcome
	}

	if link := outcome.Product.Link; link != "" {
		if p.seen.Contains(link) {
			outcome.Product = nil
			outcome.Skip = models.SkipDuplicateLink
			return outcome
		}
		p.seen.Add(link, struct{}{})
	}

	product := *outcome.Product
	product.Title = parser.TruncateTitle(product.Title, p.cfg.TitleMaxLen)
	product.Price = parser.NormalizeText(product.Price)
	outcome.Product = &product
	return outcome
}

func truncate(products []models.Product, max int) []models.Product {
	if max >= 0 && len(products) > max {
		return products[:max]
	}
	return products
}

func number(products []models.Product) []models.Product {
	for i := range products {
		products[i].ID = i + 1
	}
	return products
}

type metrics struct {
	mu        sync.Mutex
	processed int64
	skipped   map[models.SkipReason]int
}

func newMetrics() metrics {
	return metrics{
		skipped: make(map[models.SkipReason]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addSkip(reason models.SkipReason) {
	m.mu.Lock()
	m.skipped[reason]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copySkipped := make(map[models.SkipReason]int, len(m.skipped))
	for k, v := range m.skipped {
		copySkipped[k] = v
	}

	return map[string]interface{}{
		"processed_products": m.processed,
		"skipped_items":      copySkipped,
	}
}
