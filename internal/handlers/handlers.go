package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/services"
)

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	Subreddit *SubredditHandler
	Post      *PostHandler
	Comment   *CommentHandler
	User      *UserHandler
}

// Services are the operations the handlers expose over HTTP.
type Services struct {
	Accounts   *services.AccountService
	Subreddits *services.SubredditService
	Posts      *services.PostService
	Comments   *services.CommentService
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc Services) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Accounts),
		Subreddit: NewSubredditHandler(svc.Subreddits),
		Post:      NewPostHandler(svc.Posts, svc.Comments),
		Comment:   NewCommentHandler(svc.Comments),
		User:      NewUserHandler(svc.Accounts, svc.Posts),
	}
}

func respondError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// bindJSON decodes the body into dst and reports binding failures as
// validation errors.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Validation("INVALID_REQUEST", err.Error()))
		return false
	}
	return true
}

func bindVote(c *gin.Context) (models.VoteType, bool) {
	var input models.VoteRequest
	if !bindJSON(c, &input) {
		return "", false
	}
	dir, err := models.ParseVoteType(input.Type)
	if err != nil {
		respondError(c, apperr.Validation("INVALID_VOTE_TYPE", "Vote type must be UP or DOWN"))
		return "", false
	}
	return dir, true
}
