// Package catalog derives what the storefront shows from a product list:
// the filtered listing, category options and display formatting.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"nstore-backend/models"
)

// StatusFilter is the admin status selection.
type StatusFilter string

const (
	StatusAll   StatusFilter = "all"
	StatusReady StatusFilter = StatusFilter(models.StatusReady)
	StatusSold  StatusFilter = StatusFilter(models.StatusSold)
)

// ParseStatusFilter maps a query value onto a StatusFilter; anything
// unrecognised means all statuses.
func ParseStatusFilter(s string) StatusFilter {
	if st, ok := models.ParseStatus(s); ok {
		return StatusFilter(st)
	}
	return StatusAll
}

// AllCategories is the category selection meaning "no category filter".
const AllCategories = "all"

// DefaultCategories are offered on the product form and public filter.
var DefaultCategories = []string{"iPhone", "Android", "Laptop"}

// Criteria are the transient UI filter inputs.
type Criteria struct {
	Search   string
	Category string
	// Status applies to the admin view only.
	Status StatusFilter
	// Public restricts the result to Ready products.
	Public bool
}

// Filter returns the products of list that pass every criterion, in their
// original relative order.
func Filter(list []models.Product, c Criteria) []models.Product {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(c.Search))
	category := strings.TrimSpace(c.Category)
	anyCategory := IsAllCategories(category)
	category = fold.String(category)

	out := make([]models.Product, 0, len(list))
	for _, p := range list {
		if !statusMatches(p.Status, c) {
			continue
		}
		if !anyCategory && fold.String(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(fold.String(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func statusMatches(s models.Status, c Criteria) bool {
	if c.Public {
		return s == models.StatusReady
	}
	switch c.Status {
	case "", StatusAll:
		return true
	default:
		return StatusFilter(s) == c.Status
	}
}

// IsAllCategories reports whether a category selection means "all".
func IsAllCategories(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "", AllCategories, "semua":
		return true
	}
	return false
}

// Categories returns the distinct non-empty categories of list in order of
// first appearance. Spellings that differ only in case count once, keeping
// the first one seen.
func Categories(list []models.Product) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{})
	var out []string
	for _, p := range list {
		if p.Category == "" {
			continue
		}
		key := fold.String(p.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
