package domain

import "math"

type Pagination struct {
	Page     int
	PageSize int
}

// Metadata describes the page a listing returned.
type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}

func (p Pagination) Limit() int {
	return p.PageSize
}

// Offset saturates at math.MaxInt so a page far past the end stays past the
// end instead of wrapping around.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}

	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}

	return (p.Page - 1) * p.PageSize
}

// Window clamps the page to [0, total) and returns slice bounds for stores
// that paginate in memory.
func (p Pagination) Window(total int) (start, end int) {
	start = min(max(p.Offset(), 0), total)
	end = min(start+p.Limit(), total)

	return start, end
}

// Metadata reports the position of p within totalRecords. LastPage is zero
// when nothing matched.
func (p Pagination) Metadata(totalRecords int) *Metadata {
	lastPage := 0
	if p.PageSize > 0 {
		lastPage = (totalRecords + p.PageSize - 1) / p.PageSize
	}

	return &Metadata{
		CurrentPage:  p.Page,
		FirstPage:    1,
		LastPage:     lastPage,
		PageSize:     p.PageSize,
		TotalRecords: totalRecords,
	}
}
