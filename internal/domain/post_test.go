package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_IsOwnedBy(t *testing.T) {
	post := &Post{OwnerID: "user-a"}

	assert.True(t, post.IsOwnedBy("user-a"))
	assert.False(t, post.IsOwnedBy("user-b"))
	assert.False(t, post.IsOwnedBy(""), "empty caller never owns a post")
	assert.False(t, (&Post{}).IsOwnedBy(""), "empty owner must not match empty caller")
}

func TestPost_FindComment(t *testing.T) {
	post := &Post{Comments: []Comment{{ID: "c1"}, {ID: "c2"}}}

	c, idx := post.FindComment("c2")
	require.NotNil(t, c)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "c2", c.ID)

	c, idx = post.FindComment("missing")
	assert.Nil(t, c)
	assert.Equal(t, -1, idx)
}

func TestPost_CommentsNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	post := &Post{Comments: []Comment{
		{ID: "a", Timestamp: base},
		{ID: "b", Timestamp: base.Add(2 * time.Minute)},
		{ID: "c", Timestamp: base.Add(time.Minute)},
		{ID: "d", Timestamp: base.Add(2 * time.Minute)},
	}}

	sorted := post.CommentsNewestFirst()

	ids := make([]string, len(sorted))
	for i, c := range sorted {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids)
	assert.Equal(t, "a", post.Comments[0].ID, "original order is untouched")
}

func TestComment_IsAuthoredBy(t *testing.T) {
	c := &Comment{AuthorID: "user-a"}
	assert.True(t, c.IsAuthoredBy("user-a"))
	assert.False(t, c.IsAuthoredBy("user-b"))
	assert.False(t, c.IsAuthoredBy(""))
}

func TestCommentNotificationMessage(t *testing.T) {
	msg := CommentNotificationMessage("Dana", "Sleep regression", "hi")
	assert.Equal(t, `Dana commented on your post "Sleep regression": hi`, msg)

	msg = CommentNotificationMessage("", "T", "hello")
	assert.True(t, strings.HasPrefix(msg, PlaceholderDisplayName))

	long := strings.Repeat("x", messagePreviewLimit+50)
	msg = CommentNotificationMessage("Dana", "T", long)
	assert.Contains(t, msg, strings.Repeat("x", messagePreviewLimit))
	assert.NotContains(t, msg, strings.Repeat("x", messagePreviewLimit+1))
}

func TestPrincipal_Name(t *testing.T) {
	var nilPrincipal *Principal
	assert.Equal(t, PlaceholderDisplayName, nilPrincipal.Name())
	assert.Equal(t, PlaceholderDisplayName, (&Principal{ID: "u"}).Name())
	assert.Equal(t, "Dana", (&Principal{ID: "u", DisplayName: "Dana"}).Name())
}
