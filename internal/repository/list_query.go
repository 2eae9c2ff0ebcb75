package repository

import (
	"strings"

	"gorm.io/gorm"
)

// ListQuery represents common list query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset of the requested page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// TotalPages returns the page count for total rows
func (q *ListQuery) TotalPages(total int64) int64 {
	if q.PerPage <= 0 {
		return 1
	}
	return (total + int64(q.PerPage) - 1) / int64(q.PerPage)
}

// applySortAndPage orders by a whitelisted column and paginates
func applySortAndPage(db *gorm.DB, query *ListQuery, sortable map[string]string, defaultOrder string) *gorm.DB {
	order := defaultOrder
	if col, ok := sortable[query.SortBy]; ok {
		order = col
		if strings.ToLower(query.SortDir) == "desc" {
			order += " DESC"
		} else {
			order += " ASC"
		}
	}
	db = db.Order(order)

	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}
	return db
}
