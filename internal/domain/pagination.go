package domain

import "math"

// Listing page size bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 3
	MaxPageSize     = 100
)

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Normalize fills in the default page size and caps it at MaxPageSize.
// Page is left untouched; Offset treats anything below 1 as the first page.
func (p PaginationParams) Normalize() PaginationParams {
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize, never negative. A product that does not fit in
// an int saturates at math.MaxInt, which lies past the last row of any listing.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns how many pages of PageSize hold total items.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize < 1 || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
