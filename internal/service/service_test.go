package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mommylounge/lounge-server/internal/auth"
	"github.com/mommylounge/lounge-server/internal/bus"
	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/dto"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
	"github.com/mommylounge/lounge-server/internal/validation"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testServices bundles every service over one in-memory store.
type testServices struct {
	store         *store.Store
	sse           *sse.Manager
	tokens        *auth.TokenService
	identity      *IdentityService
	posts         *PostService
	comments      *CommentService
	notifications *NotificationService
}

func setupTestServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	ctx, cancel := context.WithCancel(context.Background())

	st, err := store.OpenMemory(ctx, logger)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	manager := sse.NewManager(logger)
	go manager.Start(ctx)

	v := validation.New()
	identity := NewIdentityService(st, tokens, v, logger)
	enricher := dto.NewEnricher(identity)
	notifications := NewNotificationService(st, manager, bus.Noop{}, logger)
	feed := config.FeedConfig{DefaultPageSize: domain.DefaultPageSize, MaxPageSize: domain.MaxPageSize}

	svc := &testServices{
		store:         st,
		sse:           manager,
		tokens:        tokens,
		identity:      identity,
		posts:         NewPostService(st, identity, enricher, manager, v, feed, logger),
		comments:      NewCommentService(st, identity, enricher, notifications, manager, bus.Noop{}, v, logger),
		notifications: notifications,
	}

	return svc, func() {
		cancel()
		assert.NoError(t, st.Close())
	}
}

func principal(id, name string) *domain.Principal {
	return &domain.Principal{ID: id, DisplayName: name}
}

func createTestPost(t *testing.T, svc *testServices, owner *domain.Principal, title string) *domain.Post {
	t.Helper()
	post, err := svc.posts.CreatePost(context.Background(), owner, CreatePostInput{
		Title:    title,
		Category: "Baby",
		Content:  "content of " + title,
	})
	require.NoError(t, err)
	return post
}

func ptr[T any](v T) *T {
	return &v
}
