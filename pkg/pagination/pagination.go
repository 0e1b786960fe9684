package pagination

import "math"

const (
	// DefaultPage is the first page, used when the caller omits or mangles it.
	DefaultPage = 1
	// DefaultPageSize matches the six-card grid of the listing page.
	DefaultPageSize = 6
	// MaxPageSize caps how many rows a single page query can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Page is the metadata returned next to a page of results.
type Page struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"limit"`
	Pages    int   `json:"pages"`
}

// Normalize applies defaults to non-positive values, caps the page size and
// caps the page so the offset cannot overflow.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if maxPage := math.MaxInt / p.PageSize; p.Page-1 > maxPage {
		p.Page = maxPage
	}
	return p
}

// Offset returns (page-1)*pageSize for normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PageSize
}

// Build computes the page metadata for a total row count.
// Pages is ceil(total/pageSize), so an empty result reports zero pages.
func Build(p Params, total int64) Page {
	n := p.Normalize()
	if total < 0 {
		total = 0
	}
	size := int64(n.PageSize)
	return Page{
		Total:    total,
		Page:     n.Page,
		PageSize: n.PageSize,
		Pages:    int((total + size - 1) / size),
	}
}
