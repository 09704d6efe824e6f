package helpers

import (
	"net/http"
	"strconv"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// PageParams is a validated page request.
type PageParams struct {
	Page     int
	PageSize int
}

// ParsePagination reads page and page_size from the request query string and
// clamps them to valid ranges. Invalid or missing values fall back to defaults.
func ParsePagination(r *http.Request) PageParams {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = v
		}
	}
	pageSize := DefaultPageSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = min(v, MaxPageSize)
		}
	}
	return PageParams{Page: page, PageSize: pageSize}
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the slice of items on the requested page together with its metadata.
// A page past the end yields an empty, non-nil slice.
func Paginate[T any](items []T, p PageParams) ([]T, PaginationMeta) {
	total := len(items)
	meta := PaginationMeta{Page: p.Page, PageSize: p.PageSize, Total: total}
	if p.PageSize > 0 {
		meta.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
	start := (p.Page - 1) * p.PageSize
	if start >= total || p.PageSize <= 0 {
		return []T{}, meta
	}
	end := min(start+p.PageSize, total)
	return items[start:end], meta
}
