// Package catalog owns the in-memory product snapshot and the read-side
// operations served by the API: lookup, filtering, categories and statistics.
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-tech-catalog/models"
	"go.uber.org/zap"
)

// Loader produces a fresh product list. The scraper satisfies it.
type Loader interface {
	Run(ctx context.Context) *models.ScrapeResult
}

// Snapshot is an immutable view of the catalog at one load.
type Snapshot struct {
	Products    []models.Product
	LastUpdated time.Time
}

// Loaded reports whether the snapshot came from a completed load.
func (s *Snapshot) Loaded() bool {
	return !s.LastUpdated.IsZero()
}

// Cache holds the current snapshot. Loads replace it wholesale with an atomic
// swap; readers never observe a partially built list.
type Cache struct {
	loader Loader
	log    *zap.Logger
	now    func() time.Time

	current atomic.Pointer[Snapshot]
}

// NewCache returns an empty cache backed by loader.
func NewCache(loader Loader, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{
		loader: loader,
		log:    log,
		now:    time.Now,
	}
	c.current.Store(&Snapshot{})
	return c
}

// Load runs the loader and publishes its products as the new snapshot.
func (c *Cache) Load(ctx context.Context) (*Snapshot, *models.ScrapeResult) {
	c.log.Info("loading product cache")

	result := c.loader.Run(ctx)
	products := make([]models.Product, len(result.Products))
	copy(products, result.Products)

	snap := &Snapshot{
		Products:    products,
		LastUpdated: c.now(),
	}
	c.current.Store(snap)

	c.log.Info("product cache loaded",
		zap.Int("products", len(products)),
		zap.String("fallback", string(result.Fallback)),
	)
	return snap, result
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Get looks a product up by id in the current snapshot.
func (c *Cache) Get(id int) (models.Product, bool) {
	for _, p := range c.Snapshot().Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
