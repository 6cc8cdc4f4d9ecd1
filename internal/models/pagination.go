package models

import "strings"

// Page size limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Pagination is the recognized paging configuration.
type Pagination struct {
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	SortField     string `json:"sort_field"`
	SortDirection string `json:"sort_direction"`
}

// Normalize clamps page and size and lowercases the direction.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if strings.EqualFold(p.SortDirection, SortDesc) {
		p.SortDirection = SortDesc
	} else {
		p.SortDirection = SortAsc
	}
	p.SortField = strings.TrimSpace(p.SortField)
	return p
}

// Offset is the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// PageResult is one page of T plus the unpaged total.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResult fills in the page metadata.
func NewPageResult[T any](items []T, total int64, p Pagination) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return PageResult[T]{Items: items, Total: total, Page: p.Page, Size: p.Size, TotalPages: pages}
}

// GeoFilter filters any geo level. Nil fields are unconstrained; parent ids that do
// not apply to the queried level are ignored.
type GeoFilter struct {
	ContinentID *uint
	CountryID   *uint
	RegionID    *uint
	DistrictID  *uint
	Name        *string
	Code        *string
	Status      *bool
}

// POIFilter filters accommodations, locations, foods and events.
type POIFilter struct {
	CountryID  *uint
	RegionID   *uint
	DistrictID *uint
	WardID     *uint
	Name       *string
	Status     *bool
}

// ArticleFilter filters articles.
type ArticleFilter struct {
	AuthorID   *uint
	CountryID  *uint
	RegionID   *uint
	DistrictID *uint
	WardID     *uint
	CategoryID *uint
	TagID      *uint
	Title      *string
	Status     *bool
}

// CommunityPostFilter filters community posts.
type CommunityPostFilter struct {
	UserID     *uint
	CategoryID *uint
	TagID      *uint
	Title      *string
	Status     *bool
}

// GroupCount is a (group key, count) aggregate row.
type GroupCount struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
