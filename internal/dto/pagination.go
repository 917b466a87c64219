package dto

// PageQuery is the common pagination input for list endpoints.
type PageQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Normalize applies defaults for unset values.
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// Offset converts the page/limit pair into a row offset.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination describes a list result window.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for a total row count.
func NewPagination(total int, q PageQuery) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{Total: total, Page: q.Page, Limit: q.Limit, Pages: pages}
}
