package pagination

import "gorm.io/gorm"

// Pagination carries page-based paging parameters bound from query strings.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size"`
}

// PageInfo describes the page that was returned.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// Normalize clamps the paging parameters, falling back to defaultSize.
func (p Pagination) Normalize(defaultSize int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Apply adds LIMIT/OFFSET to a gorm statement.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	return stmt.Offset(p.Offset()).Limit(p.PageSize)
}

// BuildPageInfo derives PageInfo from a total row count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	pages := int(total) / p.PageSize
	if int(total)%p.PageSize != 0 {
		pages++
	}
	return PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: total,
		TotalPages: pages,
		HasMore:    p.Page < pages,
	}
}
