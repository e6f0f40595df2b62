package models

import "math"

// ComplaintFilter narrows a complaint listing. An empty SubmittedBy means no owner restriction.
type ComplaintFilter struct {
	Status      Status
	Priority    Priority
	Category    Category
	Department  string
	Search      string
	SubmittedBy string
	SortBy      string
	SortDesc    bool
	Page        int
	Limit       int
}

// UserFilter narrows an account listing.
type UserFilter struct {
	Role       Role
	Department string
	Search     string
	IsActive   *bool
	SortBy     string
	SortDesc   bool
	Page       int
	Limit      int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
