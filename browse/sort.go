package browse

import (
	"errors"
	"slices"
	"strings"

	"storefront/model"
)

// SortOrder is a listing order accepted by Sort.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

var ErrUnknownSortOrder = errors.New("unknown sort order")

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return o, nil
	}
	return SortNone, ErrUnknownSortOrder
}

// Sort returns a sorted copy of products. Ties keep catalog order; names
// compare case-insensitively. SortNone returns the products unchanged.
func Sort(products []model.Product, order SortOrder) []model.Product {
	out := slices.Clone(products)
	var cmp func(a, b model.Product) int
	switch order {
	case SortPriceAsc:
		cmp = func(a, b model.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		cmp = func(a, b model.Product) int { return b.Price.Cmp(a.Price) }
	case SortNameAsc:
		cmp = func(a, b model.Product) int { return compareTitles(a, b) }
	case SortNameDesc:
		cmp = func(a, b model.Product) int { return compareTitles(b, a) }
	default:
		return out
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func compareTitles(a, b model.Product) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}
