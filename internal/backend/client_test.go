package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"comuna-reader/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(NewEndpoints(srv.URL), nil, nil)
}

func TestHomeFeed(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/home/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "posts": [{"id": 1, "title": "First"}, {"id": 2, "title": "Second"}]}`))
	}))

	posts, err := client.HomeFeed(context.Background(), FeedOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, 1, posts[0].ID)
	assert.Equal(t, "Second", posts[1].Title)
}

func TestAuthorPostsCarriesEnvelopeAuthor(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/authors/alice/posts/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "author": {"username": "alice", "title": "Alice"}, "posts": [{"id": 3, "title": "Post"}]}`))
	}))

	author, posts, err := client.AuthorPosts(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, author)
	assert.Equal(t, "alice", author.Username)
	require.Len(t, posts, 1)
	assert.Nil(t, posts[0].Author)
}

func TestPostDetailNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.PostDetail(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestBackendErrorSurfacesAsBadResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Rubrics(context.Background(), RubricsOptions{})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrBadResponse))
}

func TestUnreachableBackendIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(NewEndpoints(base), nil, nil)
	_, err := client.Tags(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrTransport))
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/", r.URL.Path)
		assert.Equal(t, "go", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query": "go", "page": 2, "posts": [], "authors": [{"username": "gopher"}]}`))
	}))

	results, err := client.Search(context.Background(), "go", 2, 20, "All", "New")
	require.NoError(t, err)
	assert.Equal(t, "go", results.Query)
	assert.Equal(t, 2, results.Page)
	require.Len(t, results.Authors, 1)
	assert.Equal(t, "gopher", results.Authors[0].Username)
}

func TestPostComments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/5/comments/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "comments": [{"id": 10, "post_id": 5, "content": "nice"}]}`))
	}))

	comments, err := client.PostComments(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 5, comments[0].PostID)
}
