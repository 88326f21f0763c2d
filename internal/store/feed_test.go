package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mommylounge/lounge-server/internal/domain"
)

func TestFeedFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    domain.FeedQuery
		wantKeys []string
	}{
		{"empty", domain.FeedQuery{}, nil},
		{"blank values", domain.FeedQuery{Category: "  ", Query: "\t"}, nil},
		{"category only", domain.FeedQuery{Category: "Baby"}, []string{"category"}},
		{"query only", domain.FeedQuery{Query: "sleep"}, []string{"$or"}},
		{"both", domain.FeedQuery{Category: "Baby", Query: "sleep"}, []string{"category", "$or"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := FeedFilter(tt.query)
			var keys []string
			for _, e := range filter {
				keys = append(keys, e.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestFeedFilter_EscapesSearchText(t *testing.T) {
	filter := FeedFilter(domain.FeedQuery{Query: " a.b* "})
	require.Len(t, filter, 1)

	clauses, ok := filter[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 3)

	title := clauses[0].(bson.D)[0].Value.(bson.D)
	assert.Equal(t, `a\.b\*`, title[0].Value)
	assert.Equal(t, "i", title[1].Value)
}

func TestFeedFindOptions(t *testing.T) {
	q := domain.FeedQuery{Page: 3, PageSize: 20}.Normalize(10, 100)
	opts := FeedFindOptions(q)

	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
}

func TestPostDocument_MatchesSearch(t *testing.T) {
	doc := postDocument{
		Title:   "Night Weaning",
		Content: "Any tips for the 3am wake-up?",
		Comments: []commentDocument{
			{Text: "We used a White Noise machine"},
			{Text: "Hang in there"},
		},
	}

	tests := []struct {
		needle string
		want   bool
	}{
		{"", true},
		{"weaning", true},
		{"3am", true},
		{"white noise", true},
		{"hang in", true},
		{"a.m", false},
		{"teething", false},
	}

	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			assert.Equal(t, tt.want, doc.matchesSearch(tt.needle))
		})
	}
}

func TestPageWindow(t *testing.T) {
	q := domain.FeedQuery{Page: 2, PageSize: 10}

	start, end := pageWindow(q, 25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	start, end = pageWindow(domain.FeedQuery{Page: 3, PageSize: 10}, 25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = pageWindow(domain.FeedQuery{Page: 9, PageSize: 10}, 25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}
