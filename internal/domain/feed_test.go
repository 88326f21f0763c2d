package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   FeedQuery
		want FeedQuery
	}{
		{
			name: "zero value gets defaults",
			in:   FeedQuery{},
			want: FeedQuery{Page: 1, PageSize: 10},
		},
		{
			name: "search text is trimmed",
			in:   FeedQuery{Category: "Mom Life", Query: "  sleep\t", Page: 2, PageSize: 5},
			want: FeedQuery{Category: "Mom Life", Query: "sleep", Page: 2, PageSize: 5},
		},
		{
			name: "category is kept verbatim",
			in:   FeedQuery{Category: " Baby", Page: 1, PageSize: 10},
			want: FeedQuery{Category: " Baby", Page: 1, PageSize: 10},
		},
		{
			name: "whitespace-only filters become empty",
			in:   FeedQuery{Category: "   ", Query: " ", Page: 1, PageSize: 10},
			want: FeedQuery{Page: 1, PageSize: 10},
		},
		{
			name: "negative page clamps to first",
			in:   FeedQuery{Page: -3, PageSize: 10},
			want: FeedQuery{Page: 1, PageSize: 10},
		},
		{
			name: "oversized page clamps to max",
			in:   FeedQuery{Page: 1, PageSize: 5000},
			want: FeedQuery{Page: 1, PageSize: 50},
		},
		{
			name: "category case is preserved",
			in:   FeedQuery{Category: "momLife", Page: 1, PageSize: 10},
			want: FeedQuery{Category: "momLife", Page: 1, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(10, 50))
		})
	}
}

func TestFeedQuery_NormalizeFallsBackToPackageDefaults(t *testing.T) {
	q := FeedQuery{}.Normalize(0, 0)
	assert.Equal(t, DefaultPageSize, q.PageSize)

	q = FeedQuery{PageSize: 1000}.Normalize(0, 0)
	assert.Equal(t, MaxPageSize, q.PageSize)
}

func TestFeedQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, FeedQuery{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 10, FeedQuery{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 40, FeedQuery{Page: 5, PageSize: 10}.Offset())
	assert.Equal(t, 0, FeedQuery{}.Offset())
}

func TestNewFeedPage(t *testing.T) {
	q := FeedQuery{Page: 2, PageSize: 10}

	page := NewFeedPage(nil, 25, q)
	assert.NotNil(t, page.Items, "items must serialize as [] not null")
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)

	page = NewFeedPage(nil, 0, q)
	assert.Equal(t, 0, page.TotalPages)

	page = NewFeedPage(nil, 20, q)
	assert.Equal(t, 2, page.TotalPages)
}
