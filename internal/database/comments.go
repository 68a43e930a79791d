package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Omit("Creator", "Votes").Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", translate(err))
	}
	return nil
}

func (s *GormStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Votes").
		Where("id = ?", id).
		Take(&comment).Error
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", translate(err))
	}
	return &comment, nil
}

func (s *GormStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Votes").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", translate(err))
	}
	return comments, nil
}

func (s *GormStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content)
	if res.Error != nil {
		return fmt.Errorf("update comment: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update comment: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subject_id = ?", id).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete comment: %w", translate(err))
	}
	return nil
}
