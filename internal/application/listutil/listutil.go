// Package listutil parses list-view query parameters and paginates
// record slices for the admin table endpoints.
package listutil

import (
	"fmt"
	"net/url"
	"strconv"
)

// ListParams carries pagination and filter parameters parsed from a request.
type ListParams struct {
	Page    int               // 1-indexed page number
	PerPage int               // rows per page
	Filters map[string]string // exact-match field filters (e.g. booking_status=pending)
}

// PageInfo carries pagination metadata returned alongside a page of records.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100, 200}

// ParseListParams extracts page, per_page, and exact-match field filters
// from URL query values.
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns valid ListParams with defaults applied; only recognised
// filter keys are kept
func ParseListParams(q url.Values, filterKeys []string) ListParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	filters := make(map[string]string)
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}
	return ListParams{Page: page, PerPage: perPage, Filters: filters}
}

// MatchesFilters reports whether a record satisfies every filter.
// Values are compared as strings so numeric columns filter naturally.
// PRE: none
// POST: returns true when filters is empty
func MatchesFilters(record map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		v, ok := record[key]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

// Filter returns the records matching every filter, preserving order.
func Filter(records []map[string]any, filters map[string]string) []map[string]any {
	if len(filters) == 0 {
		return records
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if MatchesFilters(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0, perPage > 0, page >= 1
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
// PRE: PageInfo is valid
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page slices out the current page of records.
// PRE: info was computed from len(records)
// POST: returned slice is never nil
func Page(records []map[string]any, info PageInfo) []map[string]any {
	start := info.Offset()
	if start >= len(records) {
		return []map[string]any{}
	}
	end := start + info.PerPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
