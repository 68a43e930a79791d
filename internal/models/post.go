package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID           string     `gorm:"primaryKey;size:26" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Content      string     `json:"content"`
	SubredditID  string     `gorm:"size:26;not null;index" json:"subreddit_id"`
	Subreddit    Subreddit  `gorm:"foreignKey:SubredditID" json:"-"`
	CreatorID    string     `gorm:"size:26;not null;index" json:"creator_id"`
	Creator      User       `gorm:"foreignKey:CreatorID" json:"-"`
	Votes        []PostVote `gorm:"foreignKey:SubjectID" json:"-"`
	CommentCount int64      `gorm:"-" json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type CreatePostRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
	SubredditID string `json:"subreddit_id" binding:"required"`
}

// UpdatePostRequest is a partial update: nil fields keep their stored value.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}
