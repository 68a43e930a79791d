package models

import (
	"time"

	"gorm.io/gorm"
)

type Subreddit struct {
	ID          string    `gorm:"primaryKey;size:26" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `gorm:"size:26;not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID" json:"-"`
	MemberCount int64     `gorm:"-" json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Subreddit) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s Subreddit) Ref() SubredditRef {
	return SubredditRef{ID: s.ID, Name: s.Name}
}

type SubredditRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubredditMember marks a user as having joined a subreddit.
type SubredditMember struct {
	SubredditID string    `gorm:"primaryKey;size:26" json:"subreddit_id"`
	UserID      string    `gorm:"primaryKey;size:26" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubredditModerator grants management rights over a subreddit. It is
// independent of membership.
type SubredditModerator struct {
	SubredditID string    `gorm:"primaryKey;size:26" json:"subreddit_id"`
	UserID      string    `gorm:"primaryKey;size:26" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateSubredditRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateSubredditRequest is a partial update: nil fields keep their stored value.
type UpdateSubredditRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddModeratorRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
