package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/events"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

// SubredditView is a subreddit as seen by one viewer.
type SubredditView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	MemberCount int64     `json:"member_count"`
	IsMember    bool      `json:"is_member"`
	IsModerator bool      `json:"is_moderator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newSubredditView(sub models.Subreddit) SubredditView {
	return SubredditView{
		ID:          sub.ID,
		Name:        sub.Name,
		Description: sub.Description,
		CreatorID:   sub.CreatorID,
		MemberCount: sub.MemberCount,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}

var (
	errSubredditExists = apperr.AlreadyExists("SUBREDDIT_EXISTS", "A subreddit with this name already exists")
	errEmptyName       = apperr.Validation("INVALID_SUBREDDIT", "Subreddit name is required")
)

type SubredditService struct {
	store  database.Store
	access *Access
	events *events.Publisher
	log    *zap.Logger
}

func NewSubredditService(store database.Store, access *Access, pub *events.Publisher, log *zap.Logger) *SubredditService {
	return &SubredditService{store: store, access: access, events: pub, log: log}
}

func (s *SubredditService) List(ctx context.Context) ([]SubredditView, error) {
	subs, err := s.store.ListSubreddits(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch subreddits", err)
	}
	views := make([]SubredditView, len(subs))
	for i, sub := range subs {
		views[i] = newSubredditView(sub)
	}
	return views, nil
}

func (s *SubredditService) Get(ctx context.Context, viewerID, id string) (*SubredditView, error) {
	sub, err := s.store.GetSubreddit(ctx, id)
	if err != nil {
		return nil, lookup(err, errSubredditNotFound, "load subreddit")
	}
	view := newSubredditView(*sub)
	if viewerID != "" {
		if view.IsMember, err = s.store.IsMember(ctx, id, viewerID); err != nil {
			return nil, apperr.Internal("Failed to check membership", err)
		}
		if view.IsModerator, err = s.store.IsModerator(ctx, id, viewerID); err != nil {
			return nil, apperr.Internal("Failed to check moderator", err)
		}
	}
	return &view, nil
}

func (s *SubredditService) Create(ctx context.Context, userID string, req models.CreateSubredditRequest) (*SubredditView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errEmptyName
	}

	sub := models.Subreddit{Name: name, Description: req.Description, CreatorID: userID}
	if err := s.store.CreateSubreddit(ctx, &sub); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, errSubredditExists
		}
		return nil, apperr.Internal("Failed to create subreddit", err)
	}

	s.events.Publish(events.SubjectSubredditCreated, userID, map[string]any{"subreddit_id": sub.ID, "name": sub.Name})
	s.log.Info("subreddit created", zap.String("subreddit_id", sub.ID), zap.String("user_id", userID))

	view := newSubredditView(sub)
	view.IsMember = true
	view.IsModerator = true
	return &view, nil
}

// Update applies a partial update; nil fields keep their stored value.
func (s *SubredditService) Update(ctx context.Context, userID, id string, req models.UpdateSubredditRequest) (*SubredditView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sub, err := s.access.RequireModerator(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errEmptyName
		}
		sub.Name = name
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}

	if err := s.store.UpdateSubreddit(ctx, sub); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, errSubredditExists
		}
		return nil, lookup(err, errSubredditNotFound, "update subreddit")
	}
	return s.Get(ctx, userID, id)
}

func (s *SubredditService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.access.RequireModerator(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteSubreddit(ctx, id); err != nil {
		return lookup(err, errSubredditNotFound, "delete subreddit")
	}
	s.log.Info("subreddit deleted", zap.String("subreddit_id", id), zap.String("user_id", userID))
	return nil
}

func (s *SubredditService) Join(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.store.GetSubreddit(ctx, id); err != nil {
		return lookup(err, errSubredditNotFound, "load subreddit")
	}
	if err := s.store.AddMember(ctx, id, userID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return apperr.AlreadyExists("ALREADY_MEMBER", "You are already a member of this subreddit")
		}
		return apperr.Internal("Failed to join subreddit", err)
	}
	return nil
}

func (s *SubredditService) Leave(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.store.GetSubreddit(ctx, id); err != nil {
		return lookup(err, errSubredditNotFound, "load subreddit")
	}
	err := s.store.RemoveMember(ctx, id, userID)
	return lookup(err, apperr.NotFound("NOT_MEMBER", "You are not a member of this subreddit"), "leave subreddit")
}

// AddModerator grants targetID moderator rights. The target also joins the
// subreddit if they had not.
func (s *SubredditService) AddModerator(ctx context.Context, actorID, id, targetID string) error {
	if err := requireUser(actorID); err != nil {
		return err
	}
	if _, err := s.access.RequireModerator(ctx, id, actorID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return lookup(err, errUserNotFound, "load user")
	}

	if err := s.store.AddModerator(ctx, id, targetID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return apperr.AlreadyExists("ALREADY_MODERATOR", "User is already a moderator")
		}
		return apperr.Internal("Failed to add moderator", err)
	}
	if err := s.store.AddMember(ctx, id, targetID); err != nil && !errors.Is(err, database.ErrDuplicate) {
		return apperr.Internal("Failed to add member", err)
	}

	s.log.Info("moderator added",
		zap.String("subreddit_id", id),
		zap.String("actor_id", actorID),
		zap.String("user_id", targetID),
	)
	return nil
}

// RemoveModerator revokes targetID's rights. A subreddit always keeps at
// least one moderator.
func (s *SubredditService) RemoveModerator(ctx context.Context, actorID, id, targetID string) error {
	if err := requireUser(actorID); err != nil {
		return err
	}
	if _, err := s.access.RequireModerator(ctx, id, actorID); err != nil {
		return err
	}

	isMod, err := s.store.IsModerator(ctx, id, targetID)
	if err != nil {
		return apperr.Internal("Failed to check moderator", err)
	}
	if !isMod {
		return apperr.NotFound("MODERATOR_NOT_FOUND", "User is not a moderator")
	}
	n, err := s.store.CountModerators(ctx, id)
	if err != nil {
		return apperr.Internal("Failed to count moderators", err)
	}
	if n <= 1 {
		return apperr.Validation("LAST_MODERATOR", "A subreddit must keep at least one moderator")
	}

	err = s.store.RemoveModerator(ctx, id, targetID)
	return lookup(err, apperr.NotFound("MODERATOR_NOT_FOUND", "User is not a moderator"), "remove moderator")
}
