//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("subreddits"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := Open(dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGormStore_VoteLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := models.User{Name: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, &user))
	sub := models.Subreddit{Name: "golang", CreatorID: user.ID}
	require.NoError(t, s.CreateSubreddit(ctx, &sub))
	post := models.Post{Title: "hello", SubredditID: sub.ID, CreatorID: user.ID}
	require.NoError(t, s.CreatePost(ctx, &post, models.VoteUp))

	dup := models.Vote{SubjectID: post.ID, UserID: user.ID, Direction: models.VoteDown}
	assert.ErrorIs(t, s.CreateVote(ctx, models.SubjectPost, &dup), ErrDuplicate)

	require.NoError(t, s.UpdateVote(ctx, models.SubjectPost, post.ID, user.ID, models.VoteDown))
	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Votes, 1)
	assert.Equal(t, models.VoteDown, got.Votes[0].Direction)

	require.NoError(t, s.DeleteVote(ctx, models.SubjectPost, post.ID, user.ID))
	_, err = s.FindVote(ctx, models.SubjectPost, post.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_CommentsAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := models.User{Name: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, &user))
	sub := models.Subreddit{Name: "rust", CreatorID: user.ID}
	require.NoError(t, s.CreateSubreddit(ctx, &sub))
	post := models.Post{Title: "ownership", SubredditID: sub.ID, CreatorID: user.ID}
	require.NoError(t, s.CreatePost(ctx, &post, models.VoteUp))

	parent := models.Comment{Content: "first", PostID: post.ID, CreatorID: user.ID}
	require.NoError(t, s.CreateComment(ctx, &parent))
	reply := models.Comment{Content: "second", PostID: post.ID, CreatorID: user.ID, ParentID: &parent.ID}
	require.NoError(t, s.CreateComment(ctx, &reply))

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CommentCount)

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, parent.ID, comments[0].ID)
	assert.Equal(t, "bob", comments[0].Creator.Name)

	require.NoError(t, s.DeleteSubreddit(ctx, sub.ID))
	_, err = s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetComment(ctx, reply.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
