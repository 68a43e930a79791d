package models

import (
	"fmt"
	"strings"
	"time"
)

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// ParseVoteType accepts "UP" or "DOWN" in any case.
func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(strings.ToUpper(strings.TrimSpace(s))) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	}
	return "", fmt.Errorf("vote type must be UP or DOWN, got %q", s)
}

// Weight is the contribution of a single vote to a subject's score.
func (t VoteType) Weight() int {
	if t == VoteUp {
		return 1
	}
	return -1
}

// SubjectKind identifies the votable entity a vote is attached to.
type SubjectKind string

const (
	SubjectPost    SubjectKind = "post"
	SubjectComment SubjectKind = "comment"
)

func (k SubjectKind) Valid() bool {
	return k == SubjectPost || k == SubjectComment
}

// VoteTable is the table holding votes for this kind of subject.
func (k SubjectKind) VoteTable() string {
	if k == SubjectComment {
		return "comment_votes"
	}
	return "post_votes"
}

// Vote is one user's vote on one subject. (SubjectID, UserID) is the primary
// key, so the store rejects a second vote from the same user.
type Vote struct {
	SubjectID string    `gorm:"primaryKey;size:26" json:"subject_id"`
	UserID    string    `gorm:"primaryKey;size:26" json:"user_id"`
	Direction VoteType  `gorm:"type:varchar(4);not null;check:chk_vote_direction,direction IN ('UP','DOWN')" json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v Vote) Ballot() Vote { return v }

type PostVote struct {
	Vote
}

func (PostVote) TableName() string { return SubjectPost.VoteTable() }

type CommentVote struct {
	Vote
}

func (CommentVote) TableName() string { return SubjectComment.VoteTable() }

type VoteRequest struct {
	Type string `json:"type" binding:"required"`
}
