package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/comments"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/events"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/voting"
)

var errEmptyComment = apperr.Validation("INVALID_COMMENT", "Comment content is required")

type CommentService struct {
	store  database.Store
	access *Access
	engine *voting.Engine
	events *events.Publisher
	log    *zap.Logger
}

func NewCommentService(store database.Store, access *Access, engine *voting.Engine, pub *events.Publisher, log *zap.Logger) *CommentService {
	return &CommentService{store: store, access: access, engine: engine, events: pub, log: log}
}

// Thread returns the comments of a post as a reply tree annotated for viewerID.
func (s *CommentService) Thread(ctx context.Context, viewerID, postID string) ([]*comments.Node, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, lookup(err, errPostNotFound, "load post")
	}
	rows, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comments", err)
	}
	return comments.BuildTree(rows, viewerID), nil
}

// Create adds a comment to a post. A parent, when given, must belong to the
// same post.
func (s *CommentService) Create(ctx context.Context, userID, postID string, req models.CreateCommentRequest) (*comments.Node, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errEmptyComment
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, lookup(err, errPostNotFound, "load post")
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.store.GetComment(ctx, *req.ParentID)
		if err != nil {
			return nil, lookup(err, apperr.NotFound("PARENT_NOT_FOUND", "Parent comment not found"), "load parent comment")
		}
		if parent.PostID != postID {
			return nil, apperr.NotFound("PARENT_NOT_FOUND", "Parent comment not found")
		}
		parentID = &parent.ID
	}

	comment := models.Comment{
		Content:   content,
		PostID:    postID,
		ParentID:  parentID,
		CreatorID: userID,
	}
	if err := s.store.CreateComment(ctx, &comment); err != nil {
		return nil, apperr.Internal("Failed to create comment", err)
	}

	s.events.Publish(events.SubjectCommentCreated, userID, map[string]any{
		"comment_id": comment.ID,
		"post_id":    postID,
	})
	return s.node(ctx, userID, comment.ID)
}

func (s *CommentService) node(ctx context.Context, viewerID, id string) (*comments.Node, error) {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, lookup(err, errCommentNotFound, "load comment")
	}
	return comments.NewNode(*c, viewerID), nil
}

func (s *CommentService) Update(ctx context.Context, userID, id string, req models.UpdateCommentRequest) (*comments.Node, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	comment, err := s.access.OwnedComment(ctx, id, userID, "edit")
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errEmptyComment
	}

	comment.Content = content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, lookup(err, errCommentNotFound, "update comment")
	}
	return s.node(ctx, userID, id)
}

// Delete removes the comment and its votes. Its replies stay and are shown
// as roots.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.access.OwnedComment(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return lookup(err, errCommentNotFound, "delete comment")
	}
	s.log.Info("comment deleted", zap.String("comment_id", id), zap.String("user_id", userID))
	return nil
}

func (s *CommentService) Vote(ctx context.Context, userID, id string, direction models.VoteType) (*VoteOutcome, error) {
	res, err := s.engine.Apply(ctx, models.SubjectComment, id, userID, direction)
	if err != nil {
		return nil, err
	}

	comment, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, lookup(err, errCommentNotFound, "load comment")
	}
	publishVote(s.events, models.SubjectComment, id, userID, res)
	return &VoteOutcome{Result: res, VoteCount: voting.Tally(comment.Votes)}, nil
}
