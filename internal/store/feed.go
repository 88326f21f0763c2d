package store

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mommylounge/lounge-server/internal/domain"
)

// feedSort is newest first, with the object id breaking timestamp ties.
var feedSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// FeedFilter builds the posts filter for a feed query.
// Blank category or search text means no constraint on that dimension.
// The search text is matched literally and case-insensitively against the
// title, the body, and every comment text.
func FeedFilter(q domain.FeedQuery) bson.D {
	q = q.Normalize(0, 0)

	filter := categoryFilter(q)
	if q.Query != "" {
		pattern := bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q.Query)},
			{Key: "$options", Value: "i"},
		}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "content", Value: pattern}},
			bson.D{{Key: "comments.text", Value: pattern}},
		}})
	}
	return filter
}

// categoryFilter is the category part of a normalized feed query.
func categoryFilter(q domain.FeedQuery) bson.D {
	filter := bson.D{}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	return filter
}

// FeedFindOptions returns newest-first ordering with the page window applied.
// q must already be normalized.
func FeedFindOptions(q domain.FeedQuery) *options.FindOptions {
	return options.Find().
		SetSort(feedSort).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))
}

// matchesSearch reports whether needle occurs in the post title, body or any
// comment text. needle must already be lower-cased.
func (d *postDocument) matchesSearch(needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(d.Content), needle) {
		return true
	}
	for i := range d.Comments {
		if strings.Contains(strings.ToLower(d.Comments[i].Text), needle) {
			return true
		}
	}
	return false
}

// pageWindow returns the [start, end) bounds of q's page over total items.
func pageWindow(q domain.FeedQuery, total int) (int, int) {
	start := min(q.Offset(), total)
	if q.PageSize <= 0 {
		return start, total
	}
	return start, min(start+q.PageSize, total)
}
