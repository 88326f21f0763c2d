package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mommylounge/lounge-server/internal/bus"
	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
)

const maxNotificationListLimit = 200

// NotificationService creates notifications as a side effect of comments and
// lets recipients read and acknowledge them. Unread counts are always
// recomputed from the store and pushed to the recipient's open streams.
type NotificationService struct {
	store  *store.Store
	sse    *sse.Manager
	events bus.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store *store.Store, sseManager *sse.Manager, events bus.Publisher, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		sse:    sseManager,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyOnComment records that actorID commented on recipientID's post.
// Self-comments produce nothing.
func (s *NotificationService) NotifyOnComment(ctx context.Context, recipientID, actorID, postID, commentID, message string) error {
	if recipientID == "" || recipientID == actorID {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n := &domain.Notification{
		RecipientUserID: recipientID,
		ActorID:         actorID,
		PostID:          postID,
		CommentID:       commentID,
		Message:         message,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	s.events.Publish(ctx, bus.Event{
		Type:           bus.NotificationCreated,
		ActorID:        actorID,
		RecipientID:    recipientID,
		PostID:         postID,
		CommentID:      commentID,
		NotificationID: n.ID,
	})

	unread, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to recount unread notifications", "user_id", recipientID, "error", err)
		return nil
	}
	s.sse.Emit(sse.NewNotificationCreatedEvent(n, unread))
	s.sse.Emit(sse.NewUnreadCountEvent(recipientID, unread))

	logger.FromContext(ctx, s.logger).Debug("notification created",
		"notification_id", n.ID,
		"recipient_id", recipientID,
		"post_id", postID,
		"unread", unread,
	)
	return nil
}

// ListNotifications returns the caller's notifications, newest first.
// limit <= 0 returns everything up to the hard cap.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("sign in to see notifications")
	}
	if limit <= 0 || limit > maxNotificationListLimit {
		limit = maxNotificationListLimit
	}
	return s.store.ListNotifications(ctx, userID, unreadOnly, limit)
}

// UnreadCount counts the caller's unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, domainerrors.Unauthorized("sign in to see notifications")
	}
	return s.store.CountUnread(ctx, userID)
}

// MarkRead acknowledges one notification. Marking an already-read
// notification succeeds with Changed=false.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*domain.MarkReadResult, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("sign in to manage notifications")
	}

	changed, err := s.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return nil, err
	}

	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.sse.Emit(sse.NewUnreadCountEvent(userID, unread))
	}

	return &domain.MarkReadResult{Changed: changed, UnreadCount: unread}, nil
}

// MarkAllRead acknowledges every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*domain.MarkAllReadResult, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("sign in to manage notifications")
	}

	modified, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if modified > 0 {
		s.sse.Emit(sse.NewUnreadCountEvent(userID, unread))
	}

	return &domain.MarkAllReadResult{Modified: modified, UnreadCount: unread}, nil
}

// PurgeRead deletes read notifications older than the retention window.
func (s *NotificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	return s.store.PurgeRead(ctx, s.now().Add(-olderThan))
}
