package pagination_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/example-api/internal/pagination"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int64
		page    int
		perPage int
		want    pagination.Meta
	}{
		{
			name: "empty", total: 0, page: 1, perPage: 10,
			want: pagination.Meta{Total: 0, Page: 1, PerPage: 10, Pages: 0},
		},
		{
			name: "first of three", total: 15, page: 1, perPage: 5,
			want: pagination.Meta{Total: 15, Page: 1, PerPage: 5, Pages: 3, HasNext: true},
		},
		{
			name: "last of three", total: 15, page: 3, perPage: 5,
			want: pagination.Meta{Total: 15, Page: 3, PerPage: 5, Pages: 3, HasPrev: true},
		},
		{
			name: "partial last page", total: 11, page: 2, perPage: 10,
			want: pagination.Meta{Total: 11, Page: 2, PerPage: 10, Pages: 2, HasPrev: true},
		},
		{
			name: "page past the end", total: 3, page: 4, perPage: 10,
			want: pagination.Meta{Total: 3, Page: 4, PerPage: 10, Pages: 1, HasPrev: true},
		},
		{
			name: "exact fit", total: 100, page: 1, perPage: 100,
			want: pagination.Meta{Total: 100, Page: 1, PerPage: 100, Pages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pagination.Calculate(tt.total, tt.page, tt.perPage))
		})
	}
}

func TestCalculate_PanicsOnInvalidInput(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { pagination.Calculate(-1, 1, 10) })
	assert.Panics(t, func() { pagination.Calculate(10, 0, 10) })
	assert.Panics(t, func() { pagination.Calculate(10, 1, 0) })
}

func TestOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, perPage int
		want          int
	}{
		{page: 1, perPage: 10, want: 0},
		{page: 2, perPage: 10, want: 10},
		{page: 10, perPage: 5, want: 45},
		{page: math.MaxInt/100 + 1, perPage: 100, want: math.MaxInt / 100 * 100},
	}

	for _, tt := range tests {
		offset, ok := pagination.Offset(tt.page, tt.perPage)
		assert.True(t, ok, "page=%d per_page=%d", tt.page, tt.perPage)
		assert.Equal(t, tt.want, offset)
	}
}

func TestOffset_Overflow(t *testing.T) {
	t.Parallel()

	for _, page := range []int{math.MaxInt/50 + 2, math.MaxInt/100 + 2, math.MaxInt} {
		offset, ok := pagination.Offset(page, 100)
		assert.False(t, ok, "page=%d", page)
		assert.Zero(t, offset)
	}
}
