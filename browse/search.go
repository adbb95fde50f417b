package browse

import (
	"strings"

	"storefront/model"
)

// Search returns the products matching query. A product matches when the
// whole query, or any single whitespace separated term of it, appears in
// its title, description or category. Blank queries match nothing.
func Search(products []model.Product, query string) []model.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.Product{}
	}
	terms := strings.Fields(q)

	out := []model.Product{}
	for _, p := range products {
		if matches(p, q) {
			out = append(out, p)
			continue
		}
		for _, term := range terms {
			if matches(p, term) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Suggest is the type-ahead variant of Search: whole-query matches only,
// at most limit results.
func Suggest(products []model.Product, query string, limit int) []model.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Product{}
	if q == "" || limit <= 0 {
		return out
	}
	for _, p := range products {
		if !matches(p, q) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

func matches(p model.Product, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Description), lowered) ||
		strings.Contains(strings.ToLower(p.Category), lowered)
}
