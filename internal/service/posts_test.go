package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/id"
	"github.com/mommylounge/lounge-server/internal/sse"
)

func TestCreatePost(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	client, err := svc.sse.Connect("watcher")
	require.NoError(t, err)

	post, err := svc.posts.CreatePost(ctx, principal("owner", "Olive"), CreatePostInput{
		Title:    "  First steps  ",
		Category: "Toddler",
		Content:  "She walked today!",
	})
	require.NoError(t, err)
	assert.True(t, id.IsObjectID(post.ID))
	assert.Equal(t, "First steps", post.Title)
	assert.Equal(t, "Olive", post.OwnerDisplayName)

	evt := <-client.EventChan
	assert.Equal(t, sse.EventPostCreated, evt.Type)

	profile, err := svc.identity.GetProfile(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Olive", profile.DisplayName)
}

func TestCreatePost_Errors(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.posts.CreatePost(ctx, nil, CreatePostInput{Title: "t", Category: "c", Content: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = svc.posts.CreatePost(ctx, principal("u", "U"), CreatePostInput{Title: " ", Category: "c", Content: "x"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Details, "title")
}

func TestListPosts_FilterAndPaging(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	owner := principal("owner", "Olive")
	for i := range 12 {
		createTestPost(t, svc, owner, fmt.Sprintf("post %02d", i))
	}
	_, err := svc.posts.CreatePost(ctx, owner, CreatePostInput{Title: "Lunchbox ideas", Category: "School", Content: "Bento boxes"})
	require.NoError(t, err)

	page, err := svc.posts.ListPosts(ctx, domain.FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, 13, page.TotalCount)
	assert.Len(t, page.Items, domain.DefaultPageSize)
	assert.Equal(t, "Lunchbox ideas", page.Items[0].Title)

	page, err = svc.posts.ListPosts(ctx, domain.FeedQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	page, err = svc.posts.ListPosts(ctx, domain.FeedQuery{Category: "School"})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "Lunchbox ideas", page.Items[0].Title)

	page, err = svc.posts.ListPosts(ctx, domain.FeedQuery{Query: "BENTO"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	page, err = svc.posts.ListPosts(ctx, domain.FeedQuery{Page: -4, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, domain.MaxPageSize, page.PageSize)
	assert.Len(t, page.Items, 13)
}

func TestGetPost_ResolvesOwnerName(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	post := createTestPost(t, svc, principal("owner", "Olive"), "Rename me")
	svc.identity.Touch(ctx, principal("owner", "Olivia"))

	got, err := svc.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Olivia", got.OwnerDisplayName)

	_, err = svc.posts.GetPost(ctx, id.NewObjectID().Hex())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdatePost(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	post := createTestPost(t, svc, principal("owner", "Olive"), "Draft")

	_, err := svc.posts.UpdatePost(ctx, post.ID, "intruder", UpdatePostInput{Title: ptr("Mine now")})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	result, err := svc.posts.UpdatePost(ctx, post.ID, "owner", UpdatePostInput{Title: ptr("Draft")})
	require.NoError(t, err)
	assert.False(t, result.Changed)

	result, err = svc.posts.UpdatePost(ctx, post.ID, "owner", UpdatePostInput{Title: ptr("Final"), Content: ptr("done")})
	require.NoError(t, err)
	assert.True(t, result.Changed)

	got, err := svc.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "done", got.Content)
	assert.Equal(t, "Baby", got.Category)

	_, err = svc.posts.UpdatePost(ctx, post.ID, "owner", UpdatePostInput{Title: ptr("  ")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.posts.UpdatePost(ctx, id.NewObjectID().Hex(), "owner", UpdatePostInput{Title: ptr("x")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	post := createTestPost(t, svc, principal("owner", "Olive"), "Temporary")
	_, err := svc.comments.AddComment(ctx, post.ID, principal("c", "Casey"), CommentInput{Text: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.posts.DeletePost(ctx, post.ID, "c"), domainerrors.ErrForbidden)
	require.NoError(t, svc.posts.DeletePost(ctx, post.ID, "owner"))

	_, err = svc.posts.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.comments.ListComments(ctx, post.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, svc.posts.DeletePost(ctx, post.ID, "owner"), domainerrors.ErrNotFound)
}

func TestListPostsByOwner(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestPost(t, svc, principal("a", "Ada"), "a1")
	createTestPost(t, svc, principal("b", "Bea"), "b1")
	createTestPost(t, svc, principal("a", "Ada"), "a2")

	page, err := svc.posts.ListPostsByOwner(ctx, "a", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)
	for _, p := range page.Items {
		assert.Equal(t, "a", p.OwnerID)
	}
}
