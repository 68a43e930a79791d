// Package services holds the application operations behind the HTTP handlers.
package services

import (
	"context"
	"errors"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

var (
	errPostNotFound      = apperr.NotFound("POST_NOT_FOUND", "Post not found")
	errCommentNotFound   = apperr.NotFound("COMMENT_NOT_FOUND", "Comment not found")
	errSubredditNotFound = apperr.NotFound("SUBREDDIT_NOT_FOUND", "Subreddit not found")
	errUserNotFound      = apperr.NotFound("USER_NOT_FOUND", "User not found")
)

// lookup maps a store miss to notFound and any other store failure to an
// internal error.
func lookup(err error, notFound *apperr.Error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return notFound
	}
	return apperr.Internal("Failed to "+action, err)
}

func requireUser(userID string) error {
	if userID == "" {
		return apperr.NotAuthenticated("NOT_AUTHENTICATED", "Authentication required")
	}
	return nil
}

// Access re-fetches the target of a mutation and checks the caller's rights
// over it.
type Access struct {
	store database.Store
}

func NewAccess(store database.Store) *Access {
	return &Access{store: store}
}

// CheckOwnership reports whether userID created the post or comment.
func (a *Access) CheckOwnership(ctx context.Context, kind models.SubjectKind, subjectID, userID string) (bool, error) {
	switch kind {
	case models.SubjectPost:
		post, err := a.store.GetPost(ctx, subjectID)
		if err != nil {
			return false, lookup(err, errPostNotFound, "load post")
		}
		return post.CreatorID == userID, nil
	case models.SubjectComment:
		comment, err := a.store.GetComment(ctx, subjectID)
		if err != nil {
			return false, lookup(err, errCommentNotFound, "load comment")
		}
		return comment.CreatorID == userID, nil
	}
	return false, apperr.Validation("INVALID_SUBJECT", "Unknown subject kind")
}

// CheckModerator reports whether userID moderates the subreddit.
func (a *Access) CheckModerator(ctx context.Context, subredditID, userID string) (bool, error) {
	if _, err := a.store.GetSubreddit(ctx, subredditID); err != nil {
		return false, lookup(err, errSubredditNotFound, "load subreddit")
	}
	ok, err := a.store.IsModerator(ctx, subredditID, userID)
	if err != nil {
		return false, apperr.Internal("Failed to check moderator", err)
	}
	return ok, nil
}

// OwnedPost loads a post the caller must have created.
func (a *Access) OwnedPost(ctx context.Context, postID, userID, action string) (*models.Post, error) {
	post, err := a.store.GetPost(ctx, postID)
	if err != nil {
		return nil, lookup(err, errPostNotFound, "load post")
	}
	if post.CreatorID != userID {
		return nil, apperr.NotAuthorized("NOT_POST_OWNER", "You can only "+action+" your own posts")
	}
	return post, nil
}

// OwnedComment loads a comment the caller must have created.
func (a *Access) OwnedComment(ctx context.Context, commentID, userID, action string) (*models.Comment, error) {
	comment, err := a.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, lookup(err, errCommentNotFound, "load comment")
	}
	if comment.CreatorID != userID {
		return nil, apperr.NotAuthorized("NOT_COMMENT_OWNER", "You can only "+action+" your own comments")
	}
	return comment, nil
}

// RequireModerator loads a subreddit the caller must moderate.
func (a *Access) RequireModerator(ctx context.Context, subredditID, userID string) (*models.Subreddit, error) {
	sub, err := a.store.GetSubreddit(ctx, subredditID)
	if err != nil {
		return nil, lookup(err, errSubredditNotFound, "load subreddit")
	}
	ok, err := a.store.IsModerator(ctx, subredditID, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to check moderator", err)
	}
	if !ok {
		return nil, apperr.NotAuthorized("NOT_MODERATOR", "Only moderators can manage this subreddit")
	}
	return sub, nil
}
