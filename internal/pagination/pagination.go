// Package pagination parses page/limit query parameters and slices
// in-memory result sets. Document stores return whole query results, so
// paging happens after the query.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params represents pagination query parameters
type Params struct {
	Page  int `json:"page"`  // 1-based
	Limit int `json:"limit"` // items per page
}

// Meta contains pagination metadata for responses
type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ParseParams reads ?page and ?limit. Missing or malformed values fall back
// to the defaults and limit is capped at MaxLimit.
func ParseParams(r *http.Request) Params {
	q := r.URL.Query()
	p := Params{
		Page:  positiveInt(q.Get("page"), DefaultPage),
		Limit: positiveInt(q.Get("limit"), DefaultLimit),
	}
	p.Validate()
	return p
}

func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Validate ensures pagination parameters are valid and sets defaults if needed
func (p *Params) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

func (p *Params) CalculateOffset() int {
	return (p.Page - 1) * p.Limit
}

// CalculateMeta creates pagination metadata based on total records
func (p *Params) CalculateMeta(totalRecords int) Meta {
	totalPages := (totalRecords + p.Limit - 1) / p.Limit
	if totalPages < 1 {
		totalPages = 1
	}

	return Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
		HasNext:      p.Page < totalPages,
		HasPrevious:  p.Page > 1,
	}
}

// Slice returns the requested page of items and its metadata. A page past
// the end yields an empty slice.
func Slice[T any](items []T, p Params) ([]T, Meta) {
	p.Validate()
	start := min(p.CalculateOffset(), len(items))
	end := min(start+p.Limit, len(items))
	return items[start:end], p.CalculateMeta(len(items))
}
