package query

// Pagination selects a page of results.
//
// Page is 1-based; 0 means unset and is treated as page 1 once NumPerPage
// is set. NumPerPage 0 means unlimited.
type Pagination struct {
	page       int
	numPerPage int
}

// NewPagination creates an unset pagination (no limit).
func NewPagination() *Pagination {
	return &Pagination{}
}

// NewPaginationFromData creates a pagination and applies data.
func NewPaginationFromData(data Data) (*Pagination, error) {
	p := NewPagination()
	if err := p.SetData(data); err != nil {
		return nil, err
	}
	return p, nil
}

// Page returns the page number (0 when unset).
func (p *Pagination) Page() int {
	return p.page
}

// SetPage sets the 1-based page number. Negative pages are rejected.
func (p *Pagination) SetPage(page int) error {
	if page < 0 {
		return InvalidArgument("page", "must be a non-negative integer, got %d", page)
	}
	p.page = page
	return nil
}

// NumPerPage returns the page size (0 when unlimited).
func (p *Pagination) NumPerPage() int {
	return p.numPerPage
}

// SetNumPerPage sets the page size. Negative sizes are rejected.
func (p *Pagination) SetNumPerPage(n int) error {
	if n < 0 {
		return InvalidArgument("num_per_page", "must be a non-negative integer, got %d", n)
	}
	p.numPerPage = n
	return nil
}

// First returns the 0-based offset of the first item of the page.
func (p *Pagination) First() int {
	page := p.page
	if page == 0 {
		page = 1
	}
	return max(0, (page-1)*p.numPerPage)
}

// Last returns First plus the page size: the offset one past the page.
func (p *Pagination) Last() int {
	return p.First() + p.numPerPage
}

// Limited reports whether a page size is set.
func (p *Pagination) Limited() bool {
	return p.numPerPage > 0
}

// SetData applies recognised keys: page, num_per_page (alias numPerPage).
func (p *Pagination) SetData(data Data) error {
	for _, key := range data.sortedKeys() {
		v := data[key]

		var err error
		switch key {
		case "page":
			var n int
			if n, err = asInt(key, v); err == nil {
				err = p.SetPage(n)
			}
		case "num_per_page", "numPerPage":
			var n int
			if n, err = asInt("num_per_page", v); err == nil {
				err = p.SetNumPerPage(n)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Data exports the pagination state.
func (p *Pagination) Data() Data {
	return Data{
		"page":         p.page,
		"num_per_page": p.numPerPage,
	}
}

// Clone returns a copy of the pagination.
func (p *Pagination) Clone() *Pagination {
	clone := *p
	return &clone
}
