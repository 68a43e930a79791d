package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/config"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T) *api {
	cfg := &config.Config{
		Port:           "0",
		Store:          config.StoreMemory,
		AllowedOrigins: []string{"*"},
		Auth:           config.Auth{JWTSecret: "secret", TokenTTL: time.Hour},
	}
	s := New(cfg, zap.NewNop(), Deps{
		Store:   database.NewMemoryStore(),
		Limiter: middleware.NewMemoryLimiter(100),
	})
	return &api{t: t, router: s.RegisterRoutes()}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (a *api) register(name string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/register", "", gin.H{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	return body["token"].(string)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", body["status"])
}

func TestUpdateSubredditByOtherUserIsForbidden(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")

	code, sub := a.do(http.MethodPost, "/api/subreddits", alice, gin.H{"name": "test"})
	require.Equal(t, http.StatusCreated, code)
	id := sub["id"].(string)

	code, body := a.do(http.MethodPatch, "/api/subreddits/"+id, bob, gin.H{"description": "mine"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NOT_MODERATOR", body["code"])
	assert.NotEmpty(t, body["request_id"])

	code, _ = a.do(http.MethodPatch, "/api/subreddits/"+id, alice, gin.H{"description": "ours"})
	assert.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, "/api/subreddits", bob, gin.H{"name": "test"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "SUBREDDIT_EXISTS", body["code"])
}

func TestVoteToggleOverHTTP(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")

	_, sub := a.do(http.MethodPost, "/api/subreddits", alice, gin.H{"name": "golang"})
	code, post := a.do(http.MethodPost, "/api/posts", alice, gin.H{
		"title":        "hello",
		"content":      "world",
		"subreddit_id": sub["id"],
	})
	require.Equal(t, http.StatusCreated, code)
	assert.EqualValues(t, 1, post["vote_count"])
	votePath := "/api/posts/" + post["id"].(string) + "/vote"

	code, body := a.do(http.MethodPost, votePath, bob, gin.H{"type": "up"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "created", body["result"])
	assert.Nil(t, body["previous"])
	assert.EqualValues(t, 2, body["vote_count"])

	_, body = a.do(http.MethodPost, votePath, bob, gin.H{"type": "DOWN"})
	assert.Equal(t, "flipped", body["result"])
	assert.Equal(t, "UP", body["previous"])
	assert.EqualValues(t, 0, body["vote_count"])

	_, body = a.do(http.MethodPost, votePath, bob, gin.H{"type": "DOWN"})
	assert.Equal(t, "removed", body["result"])
	assert.EqualValues(t, 1, body["vote_count"])

	code, body = a.do(http.MethodPost, votePath, bob, gin.H{"type": "SIDEWAYS"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_VOTE_TYPE", body["code"])

	code, body = a.do(http.MethodPost, "/api/posts/missing/vote", bob, gin.H{"type": "UP"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "SUBJECT_NOT_FOUND", body["code"])
	assert.Equal(t, "Post not found", body["error"])

	code, _ = a.do(http.MethodPost, votePath, "", gin.H{"type": "UP"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCommentThreadOverHTTP(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")

	_, sub := a.do(http.MethodPost, "/api/subreddits", alice, gin.H{"name": "golang"})
	_, post := a.do(http.MethodPost, "/api/posts", alice, gin.H{"title": "t", "subreddit_id": sub["id"]})
	commentsPath := "/api/posts/" + post["id"].(string) + "/comments"

	code, root := a.do(http.MethodPost, commentsPath, alice, gin.H{"content": "root"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(http.MethodPost, commentsPath, alice, gin.H{"content": "reply", "parent_id": root["id"]})
	require.Equal(t, http.StatusCreated, code)

	req := httptest.NewRequest(http.MethodGet, commentsPath, nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tree []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	require.Len(t, tree, 1)
	replies := tree[0]["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0].(map[string]any)["content"])
	assert.Nil(t, tree[0]["user_vote"])

	code, body := a.do(http.MethodPost, "/api/comments/"+root["id"].(string)+"/upvote", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "created", body["result"])
}

func TestFeedRequiresViewer(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "NOT_AUTHENTICATED", body["code"])

	token := a.register("alice")
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
