package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/services"
)

type SubredditHandler struct {
	subreddits *services.SubredditService
}

func NewSubredditHandler(subreddits *services.SubredditService) *SubredditHandler {
	return &SubredditHandler{subreddits: subreddits}
}

func (h *SubredditHandler) GetSubreddits(c *gin.Context) {
	subs, err := h.subreddits.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *SubredditHandler) GetSubreddit(c *gin.Context) {
	sub, err := h.subreddits.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubredditHandler) CreateSubreddit(c *gin.Context) {
	var input models.CreateSubredditRequest
	if !bindJSON(c, &input) {
		return
	}

	sub, err := h.subreddits.Create(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// UpdateSubreddit is moderator only; omitted fields are left unchanged.
func (h *SubredditHandler) UpdateSubreddit(c *gin.Context) {
	var input models.UpdateSubredditRequest
	if !bindJSON(c, &input) {
		return
	}

	sub, err := h.subreddits.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubredditHandler) DeleteSubreddit(c *gin.Context) {
	if err := h.subreddits.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subreddit deleted successfully"})
}

func (h *SubredditHandler) JoinSubreddit(c *gin.Context) {
	if err := h.subreddits.Join(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined subreddit"})
}

func (h *SubredditHandler) LeaveSubreddit(c *gin.Context) {
	if err := h.subreddits.Leave(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left subreddit"})
}

func (h *SubredditHandler) AddModerator(c *gin.Context) {
	var input models.AddModeratorRequest
	if !bindJSON(c, &input) {
		return
	}

	if err := h.subreddits.AddModerator(c.Request.Context(), middleware.UserID(c), c.Param("id"), input.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Moderator added"})
}

func (h *SubredditHandler) RemoveModerator(c *gin.Context) {
	if err := h.subreddits.RemoveModerator(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Moderator removed"})
}
