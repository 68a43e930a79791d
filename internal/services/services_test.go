package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/auth"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/voting"
)

type fixture struct {
	store      *database.MemoryStore
	access     *Access
	accounts   *AccountService
	subreddits *SubredditService
	posts      *PostService
	comments   *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	store := database.NewMemoryStore()
	access := NewAccess(store)
	engine := voting.NewEngine(store, log)
	return &fixture{
		store:      store,
		access:     access,
		accounts:   NewAccountService(store, auth.NewTokens("secret", time.Hour), log),
		subreddits: NewSubredditService(store, access, nil, log),
		posts:      NewPostService(store, access, engine, nil, log),
		comments:   NewCommentService(store, access, engine, nil, log),
	}
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	res, err := f.accounts.Register(context.Background(), models.RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	return res.User.ID
}

func (f *fixture) subreddit(t *testing.T, owner, name string) string {
	t.Helper()
	sub, err := f.subreddits.Create(context.Background(), owner, models.CreateSubredditRequest{Name: name})
	require.NoError(t, err)
	return sub.ID
}

func (f *fixture) post(t *testing.T, owner, subredditID string) string {
	t.Helper()
	p, err := f.posts.Create(context.Background(), owner, models.CreatePostRequest{Title: "title", Content: "body", SubredditID: subredditID})
	require.NoError(t, err)
	return p.ID
}

func strPtr(s string) *string { return &s }

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func TestAccounts_RegisterLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "alice")

	_, err := f.accounts.Register(ctx, models.RegisterRequest{Name: "alice2", Email: "ALICE@example.com", Password: "password"})
	assertKind(t, err, apperr.KindAlreadyExists)

	res, err := f.accounts.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, id, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = f.accounts.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assertKind(t, err, apperr.KindNotAuthenticated)

	me, err := f.accounts.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Name)
}

func TestSubreddits_UpdateByNonModeratorIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	id := f.subreddit(t, a, "test")

	_, err := f.subreddits.Update(ctx, b, id, models.UpdateSubredditRequest{Description: strPtr("hijacked")})
	assertKind(t, err, apperr.KindNotAuthorized)

	err = f.subreddits.Delete(ctx, b, id)
	assertKind(t, err, apperr.KindNotAuthorized)

	_, err = f.subreddits.Update(ctx, b, "missing", models.UpdateSubredditRequest{})
	assertKind(t, err, apperr.KindNotFound)
}

func TestSubreddits_PartialUpdatePreservesOmittedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	sub, err := f.subreddits.Create(ctx, a, models.CreateSubredditRequest{Name: "golang", Description: "gophers"})
	require.NoError(t, err)

	got, err := f.subreddits.Update(ctx, a, sub.ID, models.UpdateSubredditRequest{Name: strPtr("go")})
	require.NoError(t, err)
	assert.Equal(t, "go", got.Name)
	assert.Equal(t, "gophers", got.Description)
	assert.True(t, got.IsModerator)
}

func TestSubreddits_DuplicateName(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	f.subreddit(t, a, "test")

	_, err := f.subreddits.Create(context.Background(), a, models.CreateSubredditRequest{Name: "test"})
	assertKind(t, err, apperr.KindAlreadyExists)
	assert.Equal(t, "SUBREDDIT_EXISTS", apperr.CodeOf(err))
}

func TestSubreddits_Membership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	id := f.subreddit(t, a, "test")

	require.NoError(t, f.subreddits.Join(ctx, b, id))
	assertKind(t, f.subreddits.Join(ctx, b, id), apperr.KindAlreadyExists)

	view, err := f.subreddits.Get(ctx, b, id)
	require.NoError(t, err)
	assert.True(t, view.IsMember)
	assert.False(t, view.IsModerator)
	assert.Equal(t, int64(2), view.MemberCount)

	require.NoError(t, f.subreddits.Leave(ctx, b, id))
	assertKind(t, f.subreddits.Leave(ctx, b, id), apperr.KindNotFound)
	assertKind(t, f.subreddits.Join(ctx, b, "missing"), apperr.KindNotFound)
}

func TestSubreddits_Moderators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	id := f.subreddit(t, a, "test")

	assertKind(t, f.subreddits.AddModerator(ctx, b, id, b), apperr.KindNotAuthorized)
	assertKind(t, f.subreddits.AddModerator(ctx, a, id, "ghost"), apperr.KindNotFound)

	require.NoError(t, f.subreddits.AddModerator(ctx, a, id, b))
	assertKind(t, f.subreddits.AddModerator(ctx, a, id, b), apperr.KindAlreadyExists)

	ok, err := f.access.CheckModerator(ctx, id, b)
	require.NoError(t, err)
	assert.True(t, ok)
	isMember, err := f.store.IsMember(ctx, id, b)
	require.NoError(t, err)
	assert.True(t, isMember)

	require.NoError(t, f.subreddits.RemoveModerator(ctx, b, id, a))
	err = f.subreddits.RemoveModerator(ctx, b, id, b)
	assertKind(t, err, apperr.KindValidationFailed)
	assert.Equal(t, "LAST_MODERATOR", apperr.CodeOf(err))

	assertKind(t, f.subreddits.RemoveModerator(ctx, b, id, a), apperr.KindNotFound)

	_, err = f.access.CheckModerator(ctx, "missing", a)
	assertKind(t, err, apperr.KindNotFound)
}

func TestPosts_CreateCastsUpVoteAndFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	golang := f.subreddit(t, a, "golang")
	rust := f.subreddit(t, b, "rust")
	postID := f.post(t, a, golang)
	f.post(t, b, rust)

	view, err := f.posts.Get(ctx, a, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.VoteCount)
	require.NotNil(t, view.UserVote)
	assert.Equal(t, models.VoteUp, *view.UserVote)
	assert.Equal(t, "golang", view.Subreddit.Name)
	assert.Equal(t, "a", view.Creator.Name)

	feed, err := f.posts.List(ctx, a, PostQuery{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, postID, feed[0].ID)

	_, err = f.posts.List(ctx, "", PostQuery{})
	assertKind(t, err, apperr.KindNotAuthenticated)

	bySub, err := f.posts.List(ctx, "", PostQuery{SubredditID: rust})
	require.NoError(t, err)
	require.Len(t, bySub, 1)
	assert.Nil(t, bySub[0].UserVote)

	_, err = f.posts.Create(ctx, a, models.CreatePostRequest{Title: "x", SubredditID: "missing"})
	assertKind(t, err, apperr.KindNotFound)
}

func TestPosts_OwnershipAndPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	postID := f.post(t, a, f.subreddit(t, a, "golang"))

	_, err := f.posts.Update(ctx, b, postID, models.UpdatePostRequest{Title: strPtr("mine now")})
	assertKind(t, err, apperr.KindNotAuthorized)
	assertKind(t, f.posts.Delete(ctx, b, postID), apperr.KindNotAuthorized)

	owned, err := f.access.CheckOwnership(ctx, models.SubjectPost, postID, b)
	require.NoError(t, err)
	assert.False(t, owned)
	_, err = f.access.CheckOwnership(ctx, models.SubjectPost, "missing", b)
	assertKind(t, err, apperr.KindNotFound)

	updated, err := f.posts.Update(ctx, a, postID, models.UpdatePostRequest{Title: strPtr("new title")})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "body", updated.Content)

	require.NoError(t, f.posts.Delete(ctx, a, postID))
	_, err = f.posts.Get(ctx, a, postID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestPosts_VoteToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	postID := f.post(t, a, f.subreddit(t, a, "golang"))

	out, err := f.posts.Vote(ctx, b, postID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, voting.Created, out.Outcome)
	assert.Equal(t, 2, out.VoteCount)

	out, err = f.posts.Vote(ctx, b, postID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, voting.Flipped, out.Outcome)
	assert.Equal(t, 0, out.VoteCount)

	out, err = f.posts.Vote(ctx, b, postID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, voting.Removed, out.Outcome)
	assert.Equal(t, 1, out.VoteCount)

	out, err = f.posts.Vote(ctx, a, postID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, voting.Removed, out.Outcome)
	assert.Equal(t, 0, out.VoteCount)

	_, err = f.posts.Vote(ctx, b, "missing", models.VoteUp)
	assertKind(t, err, apperr.KindNotFound)
}

func TestComments_ThreadAndParentRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	sub := f.subreddit(t, a, "golang")
	postID := f.post(t, a, sub)
	otherPost := f.post(t, a, sub)

	root, err := f.comments.Create(ctx, a, postID, models.CreateCommentRequest{Content: "root"})
	require.NoError(t, err)
	reply, err := f.comments.Create(ctx, b, postID, models.CreateCommentRequest{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, b, otherPost, models.CreateCommentRequest{Content: "x", ParentID: &root.ID})
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.comments.Create(ctx, b, postID, models.CreateCommentRequest{Content: "x", ParentID: strPtr("missing")})
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.comments.Create(ctx, b, postID, models.CreateCommentRequest{Content: "   "})
	assertKind(t, err, apperr.KindValidationFailed)
	_, err = f.comments.Thread(ctx, a, "missing")
	assertKind(t, err, apperr.KindNotFound)

	_, err = f.comments.Vote(ctx, b, root.ID, models.VoteUp)
	require.NoError(t, err)

	tree, err := f.comments.Thread(ctx, b, postID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	assert.Equal(t, 1, tree[0].VoteCount)
	require.NotNil(t, tree[0].UserVote)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, reply.ID, tree[0].Replies[0].ID)

	post, err := f.posts.Get(ctx, a, postID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), post.CommentCount)
}

func TestComments_DeleteDemotesReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	postID := f.post(t, a, f.subreddit(t, a, "golang"))

	root, err := f.comments.Create(ctx, a, postID, models.CreateCommentRequest{Content: "root"})
	require.NoError(t, err)
	reply, err := f.comments.Create(ctx, b, postID, models.CreateCommentRequest{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)

	assertKind(t, f.comments.Delete(ctx, b, root.ID), apperr.KindNotAuthorized)
	_, err = f.comments.Update(ctx, b, root.ID, models.UpdateCommentRequest{Content: "edited"})
	assertKind(t, err, apperr.KindNotAuthorized)

	edited, err := f.comments.Update(ctx, b, reply.ID, models.UpdateCommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	require.NoError(t, f.comments.Delete(ctx, a, root.ID))

	tree, err := f.comments.Thread(ctx, a, postID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, reply.ID, tree[0].ID)
}

func TestSubreddits_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	id := f.subreddit(t, a, "golang")
	postID := f.post(t, a, id)
	_, err := f.comments.Create(ctx, a, postID, models.CreateCommentRequest{Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, f.subreddits.Delete(ctx, a, id))

	_, err = f.posts.Get(ctx, a, postID)
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.subreddits.Get(ctx, a, id)
	assertKind(t, err, apperr.KindNotFound)
}
