package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/dto"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/id"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
	"github.com/mommylounge/lounge-server/internal/validation"
)

// PostService is the post repository: feed listing, CRUD, and ownership rules.
type PostService struct {
	store     *store.Store
	identity  *IdentityService
	enricher  *dto.Enricher
	sse       *sse.Manager
	validator *validation.Validator
	feed      config.FeedConfig
	logger    *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(
	store *store.Store,
	identity *IdentityService,
	enricher *dto.Enricher,
	sseManager *sse.Manager,
	validator *validation.Validator,
	feed config.FeedConfig,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		store:     store,
		identity:  identity,
		enricher:  enricher,
		sse:       sseManager,
		validator: validator,
		feed:      feed,
		logger:    logger,
	}
}

// CreatePostInput is the new-post command.
type CreatePostInput struct {
	Title    string `json:"title" validate:"notblank,max=200"`
	Category string `json:"category" validate:"notblank,max=64"`
	Content  string `json:"content" validate:"notblank,max=20000"`
}

// UpdatePostInput edits a post. Nil fields are left as they are.
type UpdatePostInput struct {
	Title   *string `json:"title,omitempty" validate:"omitnil,notblank,max=200"`
	Content *string `json:"content,omitempty" validate:"omitnil,notblank,max=20000"`
}

// ListPosts returns one page of the feed.
func (s *PostService) ListPosts(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q = q.Normalize(s.feed.DefaultPageSize, s.feed.MaxPageSize)

	posts, total, err := s.store.ListPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	page := domain.NewFeedPage(s.enricher.EnrichPosts(ctx, posts), total, q)
	return &page, nil
}

// ListPostsByOwner returns one page of a user's posts.
func (s *PostService) ListPostsByOwner(ctx context.Context, ownerID string, page, pageSize int) (*domain.FeedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := domain.FeedQuery{Page: page, PageSize: pageSize}.Normalize(s.feed.DefaultPageSize, s.feed.MaxPageSize)

	posts, total, err := s.store.ListPostsByOwner(ctx, ownerID, q)
	if err != nil {
		return nil, fmt.Errorf("list posts by owner: %w", err)
	}

	result := domain.NewFeedPage(s.enricher.EnrichPosts(ctx, posts), total, q)
	return &result, nil
}

// GetPost loads a post with comments newest first and names resolved.
func (s *PostService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichPost(ctx, post), nil
}

// CreatePost publishes a post owned by the caller.
func (s *PostService) CreatePost(ctx context.Context, principal *domain.Principal, input CreatePostInput) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, domainerrors.Unauthorized("sign in to create a post")
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	post := &domain.Post{
		OwnerID:          principal.ID,
		OwnerDisplayName: principal.Name(),
		Title:            strings.TrimSpace(input.Title),
		Category:         strings.TrimSpace(input.Category),
		Content:          input.Content,
	}

	s.identity.Touch(ctx, principal)

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.sse.Emit(sse.NewPostCreatedEvent(post))

	logger.FromContext(ctx, s.logger).Info("post created", "post_id", post.ID, "owner_id", post.OwnerID, "category", post.Category)
	return post, nil
}

// UpdatePost edits title and/or content. Only the owner may edit; writing
// the same values is a successful no-op.
func (s *PostService) UpdatePost(ctx context.Context, postID, callerID string, input UpdatePostInput) (*domain.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if callerID == "" {
		return nil, domainerrors.Unauthorized("sign in to edit a post")
	}
	if _, err := id.ParseObjectID("post", postID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(callerID) {
		return nil, domainerrors.Forbidden("only the owner can edit this post")
	}

	title, content := post.Title, post.Content
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		content = *input.Content
	}
	if title == post.Title && content == post.Content {
		return &domain.UpdateResult{Changed: false}, nil
	}

	if err := s.store.UpdatePost(ctx, postID, callerID, title, content); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("post updated", "post_id", postID, "owner_id", callerID)
	return &domain.UpdateResult{Changed: true}, nil
}

// DeletePost removes a post and its comments. Only the owner may delete.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if callerID == "" {
		return domainerrors.Unauthorized("sign in to delete a post")
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsOwnedBy(callerID) {
		return domainerrors.Forbidden("only the owner can delete this post")
	}

	if err := s.store.DeletePost(ctx, postID, callerID); err != nil {
		return err
	}

	s.sse.Emit(sse.NewPostDeletedEvent(postID))

	logger.FromContext(ctx, s.logger).Info("post deleted", "post_id", postID, "owner_id", callerID)
	return nil
}
