package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 20}},
		{"explicit", "?page=3&limit=10", Params{Page: 3, Limit: 10}},
		{"limit capped", "?limit=500", Params{Page: 1, Limit: MaxLimit}},
		{"garbage ignored", "?page=abc&limit=-4", Params{Page: 1, Limit: 20}},
		{"zero page", "?page=0", Params{Page: 1, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/residents"+tt.query, nil)
			assert.Equal(t, tt.want, ParseParams(r))
		})
	}
}

func TestCalculateMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	meta := p.CalculateMeta(25)
	assert.Equal(t, Meta{CurrentPage: 2, PerPage: 10, TotalPages: 3, TotalRecords: 25, HasNext: true, HasPrevious: true}, meta)

	empty := Params{Page: 1, Limit: 10}
	assert.Equal(t, 1, empty.CalculateMeta(0).TotalPages)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Slice(items, Params{Page: 2, Limit: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, 3, meta.TotalPages)

	page, _ = Slice(items, Params{Page: 3, Limit: 2})
	assert.Equal(t, []int{5}, page)

	page, meta = Slice(items, Params{Page: 9, Limit: 2})
	assert.Empty(t, page)
	assert.False(t, meta.HasNext)
}
