package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/id"
)

// CreateNotification inserts n as unread. ID and CreatedAt are written back.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	postOID, err := id.ParseObjectID("post", n.PostID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := notificationDocument{
		ID:              id.NewObjectID(),
		RecipientUserID: n.RecipientUserID,
		ActorID:         n.ActorID,
		PostID:          postOID,
		CommentID:       n.CommentID,
		Message:         n.Message,
		CreatedAt:       s.timestamp(),
	}

	if _, err := s.notifications.InsertOne(ctx, doc); err != nil {
		return wrapErr(err, "create notification")
	}

	n.ID = doc.ID.Hex()
	n.IsRead = false
	n.CreatedAt = doc.CreatedAt
	n.ReadAt = time.Time{}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
// limit <= 0 means no limit.
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "recipient_user_id", Value: userID}}
	if unreadOnly {
		filter = append(filter, bson.E{Key: "is_read", Value: false})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.notifications.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err, "list notifications")
	}

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr(err, "decode notifications")
	}

	out := make([]domain.Notification, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// CountUnread counts a user's unread notifications.
func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := s.notifications.CountDocuments(ctx, bson.D{
		{Key: "recipient_user_id", Value: userID},
		{Key: "is_read", Value: false},
	})
	if err != nil {
		return 0, wrapErr(err, "count unread notifications")
	}
	return int(n), nil
}

// MarkRead flips one notification to read. The unread state is part of the
// filter so the transition happens at most once; changed is false when the
// notification was already read.
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	oid, err := id.ParseObjectID("notification", notificationID)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": oid, "recipient_user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": s.timestamp()}},
	)
	if err != nil {
		return false, wrapErr(err, "mark notification read")
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	var doc notificationDocument
	if err := s.notifications.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return false, domainerrors.NotFoundf("notification %s not found", notificationID)
		}
		return false, wrapErr(err, "get notification")
	}
	if doc.RecipientUserID != userID {
		return false, domainerrors.Forbidden("notification belongs to another user")
	}
	return false, nil
}

// MarkAllRead flips every unread notification of a user and returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := s.notifications.UpdateMany(ctx,
		bson.M{"recipient_user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": s.timestamp()}},
	)
	if err != nil {
		return 0, wrapErr(err, "mark all notifications read")
	}
	return int(res.ModifiedCount), nil
}

// PurgeRead deletes read notifications whose read time is before cutoff.
// Unread notifications are never touched.
func (s *Store) PurgeRead(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := s.notifications.DeleteMany(ctx, bson.M{
		"is_read": true,
		"read_at": bson.M{"$lt": cutoff.UTC()},
	})
	if err != nil {
		return 0, wrapErr(err, "purge read notifications")
	}
	return int(res.DeletedCount), nil
}
