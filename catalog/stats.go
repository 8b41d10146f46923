package catalog

import (
	"time"

	"github.com/aluiziolira/go-tech-catalog/parser"
)

// Stats summarises a snapshot.
type Stats struct {
	TotalProducts int                   `json:"total_products"`
	Categories    map[string]int        `json:"categories"`
	PriceRanges   map[parser.Bucket]int `json:"price_ranges"`
	LastUpdated   *time.Time            `json:"last_updated"`
}

// ComputeStats counts products per category and per price bucket. Only prices
// in rupee notation are bucketed; the rest are left out of PriceRanges.
func ComputeStats(snap *Snapshot) Stats {
	stats := Stats{
		TotalProducts: len(snap.Products),
		Categories:    make(map[string]int),
		PriceRanges:   make(map[parser.Bucket]int, len(parser.Buckets)),
	}
	for _, bucket := range parser.Buckets {
		stats.PriceRanges[bucket] = 0
	}

	for _, p := range snap.Products {
		stats.Categories[p.Category]++
		if bucket, ok := parser.ParsePriceBucket(p.Price); ok {
			stats.PriceRanges[bucket]++
		}
	}

	if snap.Loaded() {
		lastUpdated := snap.LastUpdated
		stats.LastUpdated = &lastUpdated
	}
	return stats
}
