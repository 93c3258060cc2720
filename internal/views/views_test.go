package views

import (
	"testing"

	"comuna-reader/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, StableID("alice"), StableID("alice"))
	})

	t.Run("positive", func(t *testing.T) {
		// Long strings overflow int32 into negative territory before
		// the absolute value is taken.
		for _, input := range []string{"alice", "bob-rubric", "Очень длинный ключ рубрики с переполнением"} {
			assert.Greater(t, StableID(input), 0, "input %q", input)
		}
	})

	t.Run("empty string maps to one", func(t *testing.T) {
		assert.Equal(t, 1, StableID(""))
	})

	t.Run("distinct keys diverge", func(t *testing.T) {
		assert.NotEqual(t, StableID("alice"), StableID("bob"))
	})
}

func TestToPostViewWithoutRubric(t *testing.T) {
	post := backend.Post{
		ID:        5,
		Title:     "Hello",
		Content:   "body",
		CreatedAt: "2025-03-01T10:00:00Z",
		Author:    &backend.Author{Username: "bob"},
	}

	view := ToPostView(post, nil)

	assert.Equal(t, 5, view.Post.ID)
	assert.Equal(t, "Hello", view.Post.Name)
	assert.Equal(t, "body", view.Post.Body)
	assert.Nil(t, view.Community)
	assert.Equal(t, StableID("bob"), view.Creator.ID)
	assert.Equal(t, view.Creator.ID, view.Post.CreatorID)
	assert.Equal(t, StableID("bob-rubric"), view.Post.CommunityID)
	assert.Equal(t, "bob", view.Creator.Name)
	assert.Equal(t, "bob", view.Creator.DisplayName)
	assert.True(t, view.Post.Local)
	assert.True(t, view.Creator.Local)
	assert.Equal(t, "NotSubscribed", view.Subscribed)
	assert.Equal(t, "https://post.local/5", view.Post.ApID)
	assert.Equal(t, "https://t.me/bob", view.Creator.ActorID)
}

func TestToPostViewWithRubric(t *testing.T) {
	post := backend.Post{
		ID:         9,
		Title:      "Post",
		Rubric:     "Технологии",
		RubricSlug: "tech",
		CreatedAt:  "2025-03-01T10:00:00Z",
		Author:     &backend.Author{Username: "alice", Title: "Alice"},
	}

	view := ToPostView(post, nil)

	require.NotNil(t, view.Community)
	assert.Equal(t, StableID("tech"), view.Community.ID)
	assert.Equal(t, view.Community.ID, view.Post.CommunityID)
	assert.Equal(t, "tech", view.Community.Name)
	assert.Equal(t, "Технологии", view.Community.Title)
	assert.Equal(t, "https://rubrics.local/tech", view.Community.ActorID)
	assert.Equal(t, "Alice", view.Creator.DisplayName)
}

func TestToPostViewRubricWithoutSlug(t *testing.T) {
	post := backend.Post{
		ID:     11,
		Rubric: "Local News",
		Author: &backend.Author{Username: "carol"},
	}

	view := ToPostView(post, nil)

	require.NotNil(t, view.Community)
	assert.Equal(t, "local-news", view.Community.Name)
	assert.Equal(t, "https://rubrics.local/Local News", view.Community.ActorID)
	assert.Equal(t, StableID("Local News"), view.Post.CommunityID)
}

func TestToPostViewAnonymousAuthor(t *testing.T) {
	view := ToPostView(backend.Post{ID: 1}, nil)

	assert.Equal(t, "author", view.Creator.Name)
	assert.Equal(t, "author", view.Creator.DisplayName)
	assert.Equal(t, StableID("author"), view.Creator.ID)
	assert.Equal(t, StableID("author-rubric"), view.Post.CommunityID)
}

func TestToPostViewFallbackAuthor(t *testing.T) {
	fallback := &backend.Author{Username: "channel", Title: "Channel"}
	view := ToPostView(backend.Post{ID: 2}, fallback)

	assert.Equal(t, "channel", view.Creator.Name)
	assert.Equal(t, "Channel", view.Creator.DisplayName)
}

func TestToPostViewCounts(t *testing.T) {
	post := backend.Post{
		ID:            3,
		CommentsCount: 7,
		LikesCount:    12,
		CreatedAt:     "2025-01-01T00:00:00Z",
	}

	view := ToPostView(post, nil)

	assert.Equal(t, 3, view.Counts.ID)
	assert.Equal(t, 3, view.Counts.PostID)
	assert.Equal(t, 7, view.Counts.Comments)
	assert.Equal(t, 12, view.Counts.Score)
	assert.Zero(t, view.Counts.Upvotes)
	assert.Zero(t, view.Counts.Downvotes)
}

func TestToPostViewTagsNeverNil(t *testing.T) {
	view := ToPostView(backend.Post{ID: 4}, nil)
	assert.NotNil(t, view.Post.Tags)
	assert.Empty(t, view.Post.Tags)
}

func TestToPostViews(t *testing.T) {
	posts := []backend.Post{{ID: 1}, {ID: 2}}
	fallback := &backend.Author{Username: "shared"}

	converted := ToPostViews(posts, fallback)

	require.Len(t, converted, 2)
	assert.Equal(t, "shared", converted[0].Creator.Name)
	assert.Equal(t, "shared", converted[1].Creator.Name)
}
