package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// messagePreviewLimit caps how much of the comment text is copied into a notification.
const messagePreviewLimit = 280

// Notification tells a post owner that someone replied.
// State is Unread -> Read, one way.
type Notification struct {
	ID              string    `json:"id"`
	RecipientUserID string    `json:"recipient_user_id"`
	ActorID         string    `json:"actor_id"`
	PostID          string    `json:"post_id"`
	CommentID       string    `json:"comment_id,omitempty"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
	ReadAt          time.Time `json:"read_at,omitzero"`
}

// IsFor reports whether the notification is addressed to userID.
func (n *Notification) IsFor(userID string) bool {
	return userID != "" && n.RecipientUserID == userID
}

// CommentNotificationMessage builds the message for a reply notification.
// The comment text is always included so the recipient sees what was said.
func CommentNotificationMessage(actorName, postTitle, commentText string) string {
	if actorName == "" {
		actorName = PlaceholderDisplayName
	}
	return fmt.Sprintf("%s commented on your post %q: %s", actorName, postTitle, truncate(commentText, messagePreviewLimit))
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

// MarkReadResult is returned by read acknowledgements.
// UnreadCount is always recomputed from the store, never decremented locally.
type MarkReadResult struct {
	Changed     bool `json:"changed"`
	UnreadCount int  `json:"unread_count"`
}

// MarkAllReadResult is returned by the bulk read acknowledgement.
type MarkAllReadResult struct {
	Modified    int `json:"modified"`
	UnreadCount int `json:"unread_count"`
}
