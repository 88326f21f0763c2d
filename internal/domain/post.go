// Package domain contains the core forum types shared by the store, service and API layers.
package domain

import (
	"slices"
	"time"
)

// Post is a forum thread. Comments are embedded and owned by the post.
type Post struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	OwnerDisplayName string    `json:"owner_display_name"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
	Comments         []Comment `json:"comments"`

	// Revision increments on every comment mutation. Used for compare-and-swap.
	Revision int64 `json:"-"`
}

// IsOwnedBy reports whether userID owns the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// FindComment returns the comment with the given ID and its index, or -1.
func (p *Post) FindComment(commentID string) (*Comment, int) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], i
		}
	}
	return nil, -1
}

// CommentsNewestFirst returns a copy of the comments sorted by timestamp, newest first.
func (p *Post) CommentsNewestFirst() []Comment {
	out := slices.Clone(p.Comments)
	SortCommentsNewestFirst(out)
	return out
}

// Comment is a reply embedded in exactly one post.
type Comment struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"author_id"`
	AuthorDisplayName string    `json:"author_display_name"`
	Text              string    `json:"text"`
	Timestamp         time.Time `json:"timestamp"`
	EditedAt          time.Time `json:"edited_at,omitzero"`
}

// IsAuthoredBy reports whether userID wrote the comment.
func (c *Comment) IsAuthoredBy(userID string) bool {
	return userID != "" && c.AuthorID == userID
}

// SortCommentsNewestFirst orders comments by timestamp descending, ID descending on ties.
func SortCommentsNewestFirst(comments []Comment) {
	slices.SortStableFunc(comments, func(a, b Comment) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
}

// UpdateResult reports whether a mutation changed stored state.
// A false Changed is a successful no-op, not an error.
type UpdateResult struct {
	Changed bool `json:"changed"`
}

// DeleteResult reports whether a delete removed anything.
type DeleteResult struct {
	Removed bool `json:"removed"`
}
