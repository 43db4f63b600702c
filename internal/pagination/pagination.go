// Package pagination computes page metadata for offset-paginated listings.
package pagination

import (
	"fmt"
	"math"
)

// Meta describes one page of a listing.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// Calculate returns the metadata for page of a listing with total items split
// into pages of perPage. Pages is zero when total is zero.
//
// It panics on total < 0, page < 1 or perPage < 1; callers validate input first.
func Calculate(total int64, page, perPage int) Meta {
	if total < 0 || page < 1 || perPage < 1 {
		panic(fmt.Sprintf("pagination: invalid arguments total=%d page=%d per_page=%d", total, page, perPage))
	}

	pages := 0
	if total > 0 {
		size := int64(perPage)
		pages = int((total + size - 1) / size)
	}

	return Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// Offset returns the number of rows to skip to reach page. ok is false when
// the offset does not fit in an int; such a page lies past any real listing.
func Offset(page, perPage int) (offset int, ok bool) {
	if perPage > 0 && page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}
