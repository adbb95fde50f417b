package browse

// Page is one page of a product listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into 1-based pages of perPage. Pages below 1 are
// treated as 1; pages past the end are empty.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PerPage:    perPage,
		Total:      total,
	}
	if total > 0 {
		p.TotalPages = (total-1)/perPage + 1
	}
	// compare before multiplying; (page-1)*perPage can overflow
	if page-1 >= p.TotalPages {
		return p
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	p.Items = items[start:end]
	return p
}
