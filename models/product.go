// Package models defines data structures shared by the scraper, the cache and the API.
package models

import "time"

// Product represents a catalog entry, either scraped or taken from the fallback dataset.
type Product struct {
	ID          int        `csv:"id" json:"id"`
	Title       string     `csv:"title" json:"title"`
	Description string     `csv:"description" json:"description"`
	Price       string     `csv:"price" json:"price"`
	Category    string     `csv:"category" json:"category"`
	Link        string     `csv:"link" json:"link"`
	Source      string     `csv:"source" json:"source"`
	ScrapedAt   *time.Time `csv:"scraped_at" json:"scraped_at,omitempty"`
}

// SkipReason explains why a candidate block did not become a product.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipMissingTitle  SkipReason = "missing_title"
	SkipMissingPrice  SkipReason = "missing_price"
	SkipDuplicateLink SkipReason = "duplicate_link"
)

// ItemOutcome is the result of extracting a single candidate block from a source page.
type ItemOutcome struct {
	Source  string
	Index   int
	Product *Product
	Skip    SkipReason
}

// Accepted reports whether the outcome carries a usable product.
func (o ItemOutcome) Accepted() bool {
	return o.Skip == SkipNone && o.Product != nil
}

// FallbackMode records how much of the fallback dataset a refresh used.
type FallbackMode string

const (
	FallbackNone   FallbackMode = "none"
	FallbackPadded FallbackMode = "padded"
	FallbackFull   FallbackMode = "full"
)

// ScrapeResult holds the overall result of a refresh.
type ScrapeResult struct {
	Products      []Product
	StartTime     time.Time
	EndTime       time.Time
	RequestCount  int
	ScrapedCount  int
	SkippedByType map[SkipReason]int
	FailedSources []string
	ErrorsByType  map[string]int
	Fallback      FallbackMode
}
