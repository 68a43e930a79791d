package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/services"
)

type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService) *PostHandler {
	return &PostHandler{posts: posts, comments: comments}
}

// GetPosts returns one subreddit's posts, or the caller's feed when no
// subreddit_id is given.
func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), middleware.UserID(c), services.PostQuery{
		SubredditID: c.Query("subreddit_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if !bindJSON(c, &input) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	var input models.UpdatePostRequest
	if !bindJSON(c, &input) {
		return
	}

	post, err := h.posts.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// VotePost toggles the caller's vote: same direction removes it, the other
// direction flips it.
func (h *PostHandler) VotePost(c *gin.Context) {
	dir, ok := bindVote(c)
	if !ok {
		return
	}

	out, err := h.posts.Vote(c.Request.Context(), middleware.UserID(c), c.Param("id"), dir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetComments returns the post's comments as a reply tree
func (h *PostHandler) GetComments(c *gin.Context) {
	tree, err := h.comments.Thread(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if !bindJSON(c, &input) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
