// Package browse holds the read-side helpers the storefront views apply to
// the cached catalog: filtering, search, pagination and offers.
package browse

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/model"
)

// Filter is the catalog filter form. An invalid (unset) MaxPrice means no
// upper bound; an empty Categories slice means all categories.
type Filter struct {
	MinPrice   decimal.Decimal
	MaxPrice   decimal.NullDecimal
	Categories []string
	Query      string
}

// Apply returns the products matching every criterion, in catalog order.
func (f Filter) Apply(products []model.Product) []model.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Price.LessThan(f.MinPrice) {
			continue
		}
		if f.MaxPrice.Valid && p.Price.GreaterThan(f.MaxPrice.Decimal) {
			continue
		}
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterCategories narrows the category list by a case-insensitive
// substring of the display name.
func FilterCategories(categories []model.Category, query string) []model.Category {
	q := strings.ToLower(query)
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
