package catalog

import (
	"sort"
	"strings"

	"github.com/aluiziolira/go-tech-catalog/models"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Query describes a product listing request.
type Query struct {
	Search   string
	Category string
	// MinPrice and MaxPrice are accepted and echoed back but do not filter.
	MinPrice *string
	MaxPrice *string
	// Limit keeps the first N matches; zero or negative means no limit.
	Limit int
}

// Filter returns the products matching q in their original order. The input
// slice is never modified.
func Filter(products []models.Product, q Query) []models.Product {
	search := strings.ToLower(q.Search)
	out := make([]models.Product, 0, len(products))

	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.Category != "" && q.Category != AllCategories && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matchesSearch(p models.Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Description), search) ||
		strings.Contains(strings.ToLower(p.Category), search)
}

// Categories returns the distinct categories in ascending order.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
