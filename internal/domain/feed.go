package domain

import "strings"

// Feed paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// FeedQuery selects a page of posts.
// Empty Category or Query means no filter on that dimension.
type FeedQuery struct {
	Category string
	Query    string
	Page     int
	PageSize int
}

// Normalize clears whitespace-only filters, trims the search text and clamps
// paging into valid ranges. A non-blank Category is kept byte for byte since
// it is matched exactly. A defaultSize or maxSize of zero falls back to the
// package defaults.
func (q FeedQuery) Normalize(defaultSize, maxSize int) FeedQuery {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}

	if strings.TrimSpace(q.Category) == "" {
		q.Category = ""
	}
	q.Query = strings.TrimSpace(q.Query)

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultSize
	}
	if q.PageSize > maxSize {
		q.PageSize = maxSize
	}
	return q
}

// Offset is the number of matching posts skipped before this page.
func (q FeedQuery) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// FeedPage is one page of a filtered feed.
type FeedPage struct {
	Items      []Post `json:"items"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// NewFeedPage assembles a page and derives TotalPages from the filtered count.
func NewFeedPage(items []Post, total int, q FeedQuery) FeedPage {
	if items == nil {
		items = []Post{}
	}
	pages := 0
	if q.PageSize > 0 {
		pages = (total + q.PageSize - 1) / q.PageSize
	}
	return FeedPage{
		Items:      items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}
}
