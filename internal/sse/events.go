// Package sse implements Server-Sent Events for pushing notification counts
// and live comment activity to connected clients.
package sse

import (
	"time"

	"github.com/mommylounge/lounge-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventPostCreated is broadcast when a post is published.
	EventPostCreated EventType = "post.created"
	// EventPostDeleted is broadcast when a post is removed.
	EventPostDeleted EventType = "post.deleted"

	EventCommentAdded   EventType = "comment.added"
	EventCommentUpdated EventType = "comment.updated"
	EventCommentDeleted EventType = "comment.deleted"

	// EventNotificationCreated goes to the recipient only.
	EventNotificationCreated EventType = "notification.created"
	// EventNotificationCount carries the recomputed unread count. Recipient only.
	EventNotificationCount EventType = "notification.count"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one user's sessions. Empty means everyone.
	UserID string `json:"-"`
}

// PostEventData is the payload for post events.
type PostEventData struct {
	Post *domain.Post `json:"post,omitempty"`

	PostID string `json:"post_id"`
}

// CommentEventData is the payload for comment events.
type CommentEventData struct {
	PostID  string          `json:"post_id"`
	Comment *domain.Comment `json:"comment,omitempty"`

	CommentID string `json:"comment_id"`
}

// NotificationEventData is the payload for notification.created.
type NotificationEventData struct {
	Notification *domain.Notification `json:"notification"`
	UnreadCount  int                  `json:"unread_count"`
}

// UnreadCountEventData is the payload for notification.count.
type UnreadCountEventData struct {
	UnreadCount int `json:"unread_count"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPostCreatedEvent creates a post.created event.
func NewPostCreatedEvent(post *domain.Post) Event {
	return Event{
		Type:      EventPostCreated,
		Data:      PostEventData{Post: post, PostID: post.ID},
		Timestamp: time.Now(),
	}
}

// NewPostDeletedEvent creates a post.deleted event.
func NewPostDeletedEvent(postID string) Event {
	return Event{
		Type:      EventPostDeleted,
		Data:      PostEventData{PostID: postID},
		Timestamp: time.Now(),
	}
}

// NewCommentAddedEvent creates a comment.added event.
func NewCommentAddedEvent(postID string, comment *domain.Comment) Event {
	return Event{
		Type:      EventCommentAdded,
		Data:      CommentEventData{PostID: postID, Comment: comment, CommentID: comment.ID},
		Timestamp: time.Now(),
	}
}

// NewCommentUpdatedEvent creates a comment.updated event.
func NewCommentUpdatedEvent(postID string, comment *domain.Comment) Event {
	return Event{
		Type:      EventCommentUpdated,
		Data:      CommentEventData{PostID: postID, Comment: comment, CommentID: comment.ID},
		Timestamp: time.Now(),
	}
}

// NewCommentDeletedEvent creates a comment.deleted event.
func NewCommentDeletedEvent(postID, commentID string) Event {
	return Event{
		Type:      EventCommentDeleted,
		Data:      CommentEventData{PostID: postID, CommentID: commentID},
		Timestamp: time.Now(),
	}
}

// NewNotificationCreatedEvent creates a notification.created event for the recipient.
func NewNotificationCreatedEvent(n *domain.Notification, unread int) Event {
	return Event{
		Type:      EventNotificationCreated,
		Data:      NotificationEventData{Notification: n, UnreadCount: unread},
		Timestamp: time.Now(),
		UserID:    n.RecipientUserID,
	}
}

// NewUnreadCountEvent creates a notification.count event for userID.
func NewUnreadCountEvent(userID string, unread int) Event {
	return Event{
		Type:      EventNotificationCount,
		Data:      UnreadCountEventData{UnreadCount: unread},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
