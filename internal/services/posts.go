package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/events"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
	"github.com/emilythestrangee/subreddits/backend/internal/voting"
)

// PostView is a post with the vote roll-up for one viewer.
type PostView struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Content      string              `json:"content"`
	Creator      models.UserRef      `json:"creator"`
	Subreddit    models.SubredditRef `json:"subreddit"`
	CommentCount int64               `json:"comment_count"`
	UserVote     *models.VoteType    `json:"user_vote"`
	VoteCount    int                 `json:"vote_count"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func newPostView(p models.Post, viewerID string) PostView {
	return PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Creator:      p.Creator.Ref(),
		Subreddit:    p.Subreddit.Ref(),
		CommentCount: p.CommentCount,
		UserVote:     voting.UserVote(p.Votes, viewerID),
		VoteCount:    voting.Tally(p.Votes),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// VoteOutcome is a toggle result with the subject's recomputed score.
type VoteOutcome struct {
	voting.Result
	VoteCount int `json:"vote_count"`
}

// PostQuery selects posts. With neither field set the viewer's feed is
// returned: posts of every subreddit the viewer has joined.
type PostQuery struct {
	SubredditID string
	CreatorID   string
}

type PostService struct {
	store  database.Store
	access *Access
	engine *voting.Engine
	events *events.Publisher
	log    *zap.Logger
}

func NewPostService(store database.Store, access *Access, engine *voting.Engine, pub *events.Publisher, log *zap.Logger) *PostService {
	return &PostService{store: store, access: access, engine: engine, events: pub, log: log}
}

func (s *PostService) List(ctx context.Context, viewerID string, q PostQuery) ([]PostView, error) {
	filter := database.PostFilter{SubredditID: q.SubredditID, CreatorID: q.CreatorID}
	if q.SubredditID == "" && q.CreatorID == "" {
		if err := requireUser(viewerID); err != nil {
			return nil, err
		}
		filter.MemberID = viewerID
	}

	posts, err := s.store.ListPosts(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch posts", err)
	}
	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = newPostView(p, viewerID)
	}
	return views, nil
}

func (s *PostService) Get(ctx context.Context, viewerID, id string) (*PostView, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, lookup(err, errPostNotFound, "load post")
	}
	view := newPostView(*post, viewerID)
	return &view, nil
}

// Create stores the post with an UP vote from its creator.
func (s *PostService) Create(ctx context.Context, userID string, req models.CreatePostRequest) (*PostView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("INVALID_POST", "Post title is required")
	}
	if _, err := s.store.GetSubreddit(ctx, req.SubredditID); err != nil {
		return nil, lookup(err, errSubredditNotFound, "load subreddit")
	}

	post := models.Post{
		Title:       title,
		Content:     req.Content,
		SubredditID: req.SubredditID,
		CreatorID:   userID,
	}
	if err := s.store.CreatePost(ctx, &post, models.VoteUp); err != nil {
		return nil, apperr.Internal("Failed to create post", err)
	}

	s.events.Publish(events.SubjectPostCreated, userID, map[string]any{
		"post_id":      post.ID,
		"subreddit_id": post.SubredditID,
	})
	return s.Get(ctx, userID, post.ID)
}

// Update applies a partial update; nil fields keep their stored value.
func (s *PostService) Update(ctx context.Context, userID, id string, req models.UpdatePostRequest) (*PostView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	post, err := s.access.OwnedPost(ctx, id, userID, "edit")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("INVALID_POST", "Post title is required")
		}
		post.Title = title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, lookup(err, errPostNotFound, "update post")
	}
	return s.Get(ctx, userID, id)
}

func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.access.OwnedPost(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return lookup(err, errPostNotFound, "delete post")
	}
	s.log.Info("post deleted", zap.String("post_id", id), zap.String("user_id", userID))
	return nil
}

func (s *PostService) Vote(ctx context.Context, userID, id string, direction models.VoteType) (*VoteOutcome, error) {
	res, err := s.engine.Apply(ctx, models.SubjectPost, id, userID, direction)
	if err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, lookup(err, errPostNotFound, "load post")
	}
	publishVote(s.events, models.SubjectPost, id, userID, res)
	return &VoteOutcome{Result: res, VoteCount: voting.Tally(post.Votes)}, nil
}

func publishVote(pub *events.Publisher, kind models.SubjectKind, subjectID, userID string, res voting.Result) {
	pub.Publish(events.SubjectVoteApplied, userID, map[string]any{
		"kind":       string(kind),
		"subject_id": subjectID,
		"result":     res.Outcome.String(),
		"direction":  string(res.Direction),
	})
}
