package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to exactly one post. ParentID is a plain column with no
// foreign key: replies outlive a deleted parent and are shown as roots.
type Comment struct {
	ID        string        `gorm:"primaryKey;size:26" json:"id"`
	Content   string        `gorm:"not null" json:"content"`
	PostID    string        `gorm:"size:26;not null;index" json:"post_id"`
	ParentID  *string       `gorm:"size:26;index" json:"parent_id,omitempty"`
	CreatorID string        `gorm:"size:26;not null" json:"creator_id"`
	Creator   User          `gorm:"foreignKey:CreatorID" json:"-"`
	Votes     []CommentVote `gorm:"foreignKey:SubjectID" json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type CreateCommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}
