package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comuna-reader/internal/backend"
	"comuna-reader/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(backend.NewEndpoints(srv.URL), nil)
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "alice", payload["username"])
		assert.Equal(t, "secret", payload["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"ok":    true,
			"token": "tok-123",
			"user":  map[string]any{"username": "alice"},
		})
	}))

	token, user, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestLoginFailureCarriesServerMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "неверный пароль"})
	}))

	_, _, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidCredentials, appErr.Code)
	assert.Equal(t, "неверный пароль", appErr.Message)
}

func TestLoginSuccessWithoutTokenIsFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))

	_, _, err := client.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))
}

func TestMeRejectedToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))

	_, err := client.Me(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidToken))
}

func TestMeSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"username": "alice", "is_verified": true},
		})
	}))

	user, err := client.Me(context.Background(), "tok-123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestVerificationCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/verification-code/", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"code": "ABCD-1234"})
	}))

	code, err := client.VerificationCode(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", code)
}

func TestUserPosts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		json.NewEncoder(w).Encode(map[string]any{
			"posts": []map[string]any{{"id": 1, "title": "Mine"}},
			"total": 12,
		})
	}))

	posts, total, err := client.UserPosts(context.Background(), "tok-123", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 12, total)
}

func TestUpdatePostUsesPatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/auth/posts/5/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"post": map[string]any{"id": 5, "title": "Edited"},
		})
	}))

	post, err := client.UpdatePost(context.Background(), "tok-123", 5, UpdatePostPayload{Title: "Edited"})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "Edited", post.Title)
}

func TestUploadImage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "avatar.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{"url": "https://cdn.test/avatar.png"})
	}))

	url, err := client.UploadImage(context.Background(), "tok-123", "avatar.png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/avatar.png", url)
}

func TestTokenExpiry(t *testing.T) {
	t.Run("reads exp claim without verification", func(t *testing.T) {
		expires := time.Now().Add(time.Hour).Truncate(time.Second)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": expires.Unix(),
		})
		signed, err := token.SignedString([]byte("unknown-to-client"))
		require.NoError(t, err)

		got, ok := TokenExpiry(signed)
		assert.True(t, ok)
		assert.True(t, got.Equal(expires))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := TokenExpiry("not-a-jwt")
		assert.False(t, ok)
	})

	t.Run("no exp claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, ok := TokenExpiry(signed)
		assert.False(t, ok)
	})
}
