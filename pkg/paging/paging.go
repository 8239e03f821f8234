// Package paging provides a paginated result wrapper for list queries.
package paging

// Page is one page of a larger result set. CurrentPage is 1-based.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	PageSize    int
	TotalItems  int
}

// New creates a page from the items of the current page and the total item
// count of the underlying query.
func New[T any](items []T, page, pageSize, totalItems int) Page[T] {
	return Page[T]{
		Items:       items,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
	}
}

// TotalPages returns the number of pages needed to hold TotalItems.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalItems + p.PageSize - 1) / p.PageSize
}

// HasPrevious reports whether a page precedes the current one.
func (p Page[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a page follows the current one.
func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages()
}
