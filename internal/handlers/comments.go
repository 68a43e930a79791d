package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var input models.UpdateCommentRequest
	if !bindJSON(c, &input) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), middleware.UserID(c), c.Param("commentId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), middleware.UserID(c), c.Param("commentId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) VoteComment(c *gin.Context) {
	dir, ok := bindVote(c)
	if !ok {
		return
	}
	h.vote(c, dir)
}

// UpvoteComment and DownvoteComment keep the single-direction routes; they
// toggle exactly like VoteComment.
func (h *CommentHandler) UpvoteComment(c *gin.Context) {
	h.vote(c, models.VoteUp)
}

func (h *CommentHandler) DownvoteComment(c *gin.Context) {
	h.vote(c, models.VoteDown)
}

func (h *CommentHandler) vote(c *gin.Context, dir models.VoteType) {
	out, err := h.comments.Vote(c.Request.Context(), middleware.UserID(c), c.Param("commentId"), dir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
