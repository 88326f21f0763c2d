package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mommylounge/lounge-server/internal/bus"
	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/dto"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/id"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
	"github.com/mommylounge/lounge-server/internal/validation"
)

// editAttempts bounds the compare-and-swap loop on comment edits.
const editAttempts = 3

// CommentNotifier records owner notifications for new comments.
type CommentNotifier interface {
	NotifyOnComment(ctx context.Context, recipientID, actorID, postID, commentID, message string) error
}

// CommentService manages comments embedded in posts and triggers owner
// notifications.
type CommentService struct {
	store         *store.Store
	identity      *IdentityService
	enricher      *dto.Enricher
	notifications CommentNotifier
	sse           *sse.Manager
	events        bus.Publisher
	validator     *validation.Validator
	logger        *slog.Logger
	now           func() time.Time
}

// NewCommentService creates a new comment service.
func NewCommentService(
	store *store.Store,
	identity *IdentityService,
	enricher *dto.Enricher,
	notifications CommentNotifier,
	sseManager *sse.Manager,
	events bus.Publisher,
	validator *validation.Validator,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		store:         store,
		identity:      identity,
		enricher:      enricher,
		notifications: notifications,
		sse:           sseManager,
		events:        events,
		validator:     validator,
		logger:        logger,
		now:           time.Now,
	}
}

// CommentInput carries comment text for create and edit.
type CommentInput struct {
	Text string `json:"text" validate:"notblank,max=5000"`
}

// ListComments returns a post's comments newest first with names resolved.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichComments(ctx, post.CommentsNewestFirst()), nil
}

// AddComment appends a comment and, when the commenter is not the post owner,
// notifies the owner. The comment is stored before the notification is
// created, and a notification failure never fails the comment.
func (s *CommentService) AddComment(ctx context.Context, postID string, principal *domain.Principal, input CommentInput) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, domainerrors.Unauthorized("sign in to comment")
	}
	if _, err := id.ParseObjectID("post", postID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	s.identity.Touch(ctx, principal)

	comment := &domain.Comment{
		AuthorID:          principal.ID,
		AuthorDisplayName: principal.Name(),
		Text:              input.Text,
	}
	post, err := s.store.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}

	s.sse.Emit(sse.NewCommentAddedEvent(postID, comment))
	s.events.Publish(ctx, bus.Event{
		Type:      bus.CommentCreated,
		ActorID:   principal.ID,
		PostID:    postID,
		CommentID: comment.ID,
	})

	if !post.IsOwnedBy(principal.ID) {
		message := domain.CommentNotificationMessage(principal.Name(), post.Title, comment.Text)
		if err := s.notifications.NotifyOnComment(ctx, post.OwnerID, principal.ID, postID, comment.ID, message); err != nil {
			logger.FromContext(ctx, s.logger).Warn("failed to notify post owner",
				"post_id", postID,
				"comment_id", comment.ID,
				"recipient_id", post.OwnerID,
				"error", err,
			)
		}
	}

	logger.FromContext(ctx, s.logger).Info("comment added", "post_id", postID, "comment_id", comment.ID, "author_id", principal.ID)
	return comment, nil
}

// EditComment replaces a comment's text. Only the author may edit. The write
// is a compare-and-swap on the post revision, retried a few times before
// giving up with a conflict.
func (s *CommentService) EditComment(ctx context.Context, postID, callerID, commentID string, input CommentInput) (*domain.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if callerID == "" {
		return nil, domainerrors.Unauthorized("sign in to edit a comment")
	}
	if _, err := id.ParseObjectID("post", postID); err != nil {
		return nil, err
	}
	if _, err := id.ParseObjectID("comment", commentID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= editAttempts; attempt++ {
		post, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return nil, err
		}

		existing, idx := post.FindComment(commentID)
		if existing == nil {
			return nil, domainerrors.NotFoundf("comment %s not found", commentID)
		}
		if !existing.IsAuthoredBy(callerID) {
			return nil, domainerrors.Forbidden("only the author can edit this comment")
		}
		if existing.Text == input.Text {
			return &domain.UpdateResult{Changed: false}, nil
		}

		comments := slices.Clone(post.Comments)
		comments[idx].Text = input.Text
		comments[idx].EditedAt = s.now().UTC().Truncate(time.Millisecond)

		swapped, err := s.store.ReplaceComments(ctx, postID, post.Revision, comments)
		if err != nil {
			return nil, err
		}
		if swapped {
			edited := comments[idx]
			s.sse.Emit(sse.NewCommentUpdatedEvent(postID, &edited))
			logger.FromContext(ctx, s.logger).Info("comment edited", "post_id", postID, "comment_id", commentID, "attempt", attempt)
			return &domain.UpdateResult{Changed: true}, nil
		}

		logger.FromContext(ctx, s.logger).Debug("comment edit lost revision race, retrying", "post_id", postID, "attempt", attempt)
	}

	return nil, domainerrors.Conflict(fmt.Sprintf("comment %s changed concurrently, try again", commentID))
}

// DeleteComment removes a comment authored by the caller. Deleting a comment
// that no longer exists succeeds with Removed=false.
func (s *CommentService) DeleteComment(ctx context.Context, postID, callerID, commentID string) (*domain.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if callerID == "" {
		return nil, domainerrors.Unauthorized("sign in to delete a comment")
	}
	if _, err := id.ParseObjectID("comment", commentID); err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	existing, _ := post.FindComment(commentID)
	if existing == nil {
		return &domain.DeleteResult{Removed: false}, nil
	}
	if !existing.IsAuthoredBy(callerID) {
		return nil, domainerrors.Forbidden("only the author can delete this comment")
	}

	removed, err := s.store.RemoveComment(ctx, postID, commentID, callerID)
	if err != nil {
		return nil, err
	}
	if removed {
		s.sse.Emit(sse.NewCommentDeletedEvent(postID, commentID))
		logger.FromContext(ctx, s.logger).Info("comment deleted", "post_id", postID, "comment_id", commentID, "author_id", callerID)
	}
	return &domain.DeleteResult{Removed: removed}, nil
}
