package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ourevents/internal/domain"
)

// ParsePagination reads page and limit from the request query string.
// Missing or non-numeric values fall back to page 1 and the default limit;
// limit is capped at domain.MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	page := domain.DefaultPage
	if s := q.Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			page = v
		}
	}
	limit := domain.DefaultPageSize
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			limit = v
		}
	}
	return domain.PaginationParams{Page: page, PageSize: limit}.Normalize()
}

// ParseEventFilter reads the category and city listing filters.
// An empty category means no filter; a non-numeric one is a validation error.
// City is matched exactly, so it is passed through untouched.
func ParseEventFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	filter := domain.EventFilter{City: q.Get("city")}
	if s := strings.TrimSpace(q.Get("category")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			ve := domain.NewValidationError()
			ve.Add("category", fmt.Sprintf("%q is not a valid category id.", s))
			return domain.EventFilter{}, ve
		}
		filter.CategoryID = &id
	}
	return filter, nil
}

// PathID parses the named path value as a positive integer id.
// Anything else cannot name a stored row and is reported as not found.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s %q: %w", name, raw, domain.ErrNotFound)
	}
	return id, nil
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the page parameters and the total count.
func NewPaginationMeta(p domain.PaginationParams, total int) PaginationMeta {
	return PaginationMeta{
		Page:       p.Page,
		Limit:      p.PageSize,
		TotalCount: total,
		TotalPages: p.TotalPages(total),
	}
}
