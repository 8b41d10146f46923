package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aluiziolira/go-tech-catalog/config"
	"github.com/aluiziolira/go-tech-catalog/fallback"
	"github.com/aluiziolira/go-tech-catalog/models"
)

func scraped(i int) models.ItemOutcome {
	now := time.Now()
	return models.ItemOutcome{
		Source: "Flipkart",
		Index:  i,
		Product: &models.Product{
			ID:          100 + i,
			Title:       fmt.Sprintf("Phone %d", i),
			Description: "Popular smartphone from Flipkart",
			Price:       "₹19,999",
			Category:    "smartphone",
			Link:        fmt.Sprintf("https://www.flipkart.com/phone-%d", i),
			Source:      "Flipkart",
			ScrapedAt:   &now,
		},
	}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(config.DefaultConfig())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

func TestPipelineProcessValidationAndDedup(t *testing.T) {
	p := newTestPipeline(t)

	valid := scraped(1)
	invalid := scraped(2)
	invalid.Product.Price = ""
	duplicate := scraped(1)
	untitled := scraped(3)
	untitled.Product.Title = "  "
	skipped := models.ItemOutcome{Source: "Flipkart", Index: 4, Skip: models.SkipMissingTitle}

	out, err := p.Process(valid, invalid, duplicate, untitled, skipped)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	want := []models.SkipReason{models.SkipNone, models.SkipMissingPrice, models.SkipDuplicateLink, models.SkipMissingTitle, models.SkipMissingTitle}
	for i, outcome := range out {
		if outcome.Skip != want[i] {
			t.Fatalf("outcome %d skip = %q, want %q", i, outcome.Skip, want[i])
		}
	}
	if got := p.Accepted(); got != 1 {
		t.Fatalf("accepted = %d, want 1", got)
	}

	skips, ok := p.GetMetrics()["skipped_items"].(map[models.SkipReason]int)
	if !ok {
		t.Fatalf("expected skipped items map")
	}
	if skips[models.SkipDuplicateLink] != 1 || skips[models.SkipMissingPrice] != 1 || skips[models.SkipMissingTitle] != 2 {
		t.Fatalf("unexpected skip counts: %v", skips)
	}
}

func TestPipelineTruncatesLongTitles(t *testing.T) {
	p := newTestPipeline(t)

	long := scraped(1)
	long.Product.Title = "Samsung Galaxy S24 Ultra 5G AI Smartphone (Titanium Gray, 12GB, 256GB Storage)"
	if _, err := p.Process(long); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := p.Finalize(nil).Products[0].Title
	if want := "Samsung Galaxy S24 Ultra 5G AI Smartphone (Titaniu..."; got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}
}

func TestFinalizePadsInsufficientScrape(t *testing.T) {
	p := newTestPipeline(t)
	for i := 0; i < 3; i++ {
		if _, err := p.Process(scraped(i)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	assembly := p.Finalize(fallback.Products())
	if assembly.Fallback != models.FallbackPadded {
		t.Fatalf("fallback mode = %q, want padded", assembly.Fallback)
	}
	if got := len(assembly.Products); got != 18 {
		t.Fatalf("products = %d, want 18", got)
	}
	if assembly.Products[3].Title != "iPhone 15 Pro Max" {
		t.Fatalf("fallback padding should follow scraped items, got %q", assembly.Products[3].Title)
	}
	for i, product := range assembly.Products {
		if product.ID != i+1 {
			t.Fatalf("product %d id = %d, want %d", i, product.ID, i+1)
		}
	}
}

func TestFinalizeCapsAtMaxProducts(t *testing.T) {
	p := newTestPipeline(t)
	for i := 0; i < 9; i++ {
		if _, err := p.Process(scraped(i)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	assembly := p.Finalize(fallback.Products())
	if got := len(assembly.Products); got != 20 {
		t.Fatalf("products = %d, want 20", got)
	}
	if last := assembly.Products[19]; last.ID != 20 || last.Title != "Google Pixel 8 Pro" {
		t.Fatalf("unexpected last product %+v", last)
	}
}

func TestFinalizeEnoughScrapedSkipsFallback(t *testing.T) {
	p := newTestPipeline(t)
	for i := 0; i < 10; i++ {
		if _, err := p.Process(scraped(i)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	assembly := p.Finalize(fallback.Products())
	if assembly.Fallback != models.FallbackNone || len(assembly.Products) != 10 {
		t.Fatalf("got mode=%q len=%d, want none/10", assembly.Fallback, len(assembly.Products))
	}
}

func TestProcessAfterFinalize(t *testing.T) {
	p := newTestPipeline(t)
	p.Finalize(nil)

	if _, err := p.Process(scraped(1)); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
}

func TestSubstitute(t *testing.T) {
	data := fallback.Products()
	data[0].ID = 99

	assembly := Substitute(data, 20)
	if assembly.Fallback != models.FallbackFull || len(assembly.Products) != 20 {
		t.Fatalf("got mode=%q len=%d, want full/20", assembly.Fallback, len(assembly.Products))
	}
	if assembly.Products[0].ID != 1 {
		t.Fatalf("ids should be reassigned, got %d", assembly.Products[0].ID)
	}
	if data[0].ID != 99 {
		t.Fatalf("Substitute must not mutate its input")
	}

	if got := len(Substitute(data, 5).Products); got != 5 {
		t.Fatalf("capped substitute = %d, want 5", got)
	}
}
