// Package voting applies vote toggles to posts and comments.
package voting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

// ErrSubjectNotFound is wrapped by the error Apply returns when the voted
// post or comment does not exist.
var ErrSubjectNotFound = errors.New("subject not found")

// Outcome is what a toggle did to the voter's row.
type Outcome int

const (
	Created Outcome = iota + 1
	Removed
	Flipped
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Flipped:
		return "flipped"
	}
	return "unknown"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result describes one applied toggle. Previous is set only for Flipped and
// Removed, and holds the direction the voter had before the call.
type Result struct {
	Outcome   Outcome          `json:"result"`
	Direction models.VoteType  `json:"direction"`
	Previous  *models.VoteType `json:"previous"`
}

// Engine keeps at most one vote per user and subject. Repeating a direction
// removes the vote and the other direction flips it in place.
type Engine struct {
	votes database.Votes
	log   *zap.Logger
}

func NewEngine(votes database.Votes, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{votes: votes, log: log}
}

func subjectLabel(kind models.SubjectKind) string {
	if kind == models.SubjectComment {
		return "Comment"
	}
	return "Post"
}

// Apply toggles userID's vote on the subject. Each call writes a single row
// unless it loses a race with a concurrent vote from the same user, in which
// case the unique (subject, user) key rejects the insert and the existing row
// is updated instead.
func (e *Engine) Apply(ctx context.Context, kind models.SubjectKind, subjectID, userID string, direction models.VoteType) (Result, error) {
	if userID == "" {
		return Result{}, apperr.NotAuthenticated("NOT_AUTHENTICATED", "Authentication required")
	}
	if !kind.Valid() {
		return Result{}, apperr.Validation("INVALID_SUBJECT", fmt.Sprintf("Cannot vote on %q", kind))
	}
	if direction != models.VoteUp && direction != models.VoteDown {
		return Result{}, apperr.Validation("INVALID_VOTE_TYPE", "Vote type must be UP or DOWN")
	}

	ok, err := e.votes.SubjectExists(ctx, kind, subjectID)
	if err != nil {
		return Result{}, apperr.Internal("Failed to load "+string(kind), err)
	}
	if !ok {
		return Result{}, apperr.Wrap(apperr.KindNotFound, "SUBJECT_NOT_FOUND", subjectLabel(kind)+" not found", ErrSubjectNotFound)
	}

	existing, err := e.votes.FindVote(ctx, kind, subjectID, userID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return e.create(ctx, kind, subjectID, userID, direction)
	case err != nil:
		return Result{}, apperr.Internal("Failed to load vote", err)
	}

	previous := existing.Direction
	if previous == direction {
		err := e.votes.DeleteVote(ctx, kind, subjectID, userID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return Result{}, apperr.Internal("Failed to remove vote", err)
		}
		e.logApplied(kind, subjectID, userID, Removed)
		return Result{Outcome: Removed, Direction: direction, Previous: &previous}, nil
	}

	err = e.votes.UpdateVote(ctx, kind, subjectID, userID, direction)
	if errors.Is(err, database.ErrNotFound) {
		// removed concurrently since FindVote
		return e.create(ctx, kind, subjectID, userID, direction)
	}
	if err != nil {
		return Result{}, apperr.Internal("Failed to update vote", err)
	}
	e.logApplied(kind, subjectID, userID, Flipped)
	return Result{Outcome: Flipped, Direction: direction, Previous: &previous}, nil
}

func (e *Engine) create(ctx context.Context, kind models.SubjectKind, subjectID, userID string, direction models.VoteType) (Result, error) {
	vote := models.Vote{SubjectID: subjectID, UserID: userID, Direction: direction}
	err := e.votes.CreateVote(ctx, kind, &vote)
	if errors.Is(err, database.ErrDuplicate) {
		e.log.Debug("concurrent vote detected, converging",
			zap.String("kind", string(kind)),
			zap.String("subject_id", subjectID),
			zap.String("user_id", userID),
		)
		err = e.votes.UpdateVote(ctx, kind, subjectID, userID, direction)
	}
	if err != nil {
		return Result{}, apperr.Internal("Failed to record vote", err)
	}
	e.logApplied(kind, subjectID, userID, Created)
	return Result{Outcome: Created, Direction: direction}, nil
}

func (e *Engine) logApplied(kind models.SubjectKind, subjectID, userID string, outcome Outcome) {
	e.log.Debug("vote applied",
		zap.String("kind", string(kind)),
		zap.String("subject_id", subjectID),
		zap.String("user_id", userID),
		zap.Stringer("outcome", outcome),
	)
}
