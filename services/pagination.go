package services

import "github.com/upb/webshop/repositories"

// Page size bounds for listings
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage validates a page request against the sortable fields of a listing.
// An empty sort selects defaultSort and a zero size selects DefaultPageSize.
func NormalizePage(page repositories.Page, sortable []string, defaultSort string) (repositories.Page, error) {
	if page.Size == 0 {
		page.Size = DefaultPageSize
	}
	if page.Number < 0 || page.Size < 1 || page.Size > MaxPageSize {
		return page, ErrInvalidPagination.
			WithDetail("pageNumber", page.Number).
			WithDetail("pageSize", page.Size)
	}

	if page.Sort == "" {
		page.Sort = defaultSort
		return page, nil
	}
	for _, field := range sortable {
		if field == page.Sort {
			return page, nil
		}
	}
	return page, ErrInvalidSortField.WithDetail("sort", page.Sort).WithDetail("allowed", sortable)
}
