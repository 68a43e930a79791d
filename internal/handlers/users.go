package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/services"
)

type UserHandler struct {
	accounts *services.AccountService
	posts    *services.PostService
}

func NewUserHandler(accounts *services.AccountService, posts *services.PostService) *UserHandler {
	return &UserHandler{accounts: accounts, posts: posts}
}

// GetUserProfile returns a user's public profile and their posts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")

	user, err := h.accounts.Get(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := h.posts.List(ctx, middleware.UserID(c), services.PostQuery{CreatorID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user.Ref(),
		"posts": posts,
	})
}
