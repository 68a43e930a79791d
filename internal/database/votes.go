package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

func (s *GormStore) SubjectExists(ctx context.Context, kind models.SubjectKind, subjectID string) (bool, error) {
	var model any = &models.Post{}
	if kind == models.SubjectComment {
		model = &models.Comment{}
	}
	ok, err := s.exists(ctx, model, "id = ?", subjectID)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", kind, err)
	}
	return ok, nil
}

func (s *GormStore) votes(ctx context.Context, kind models.SubjectKind) *gorm.DB {
	return s.db.WithContext(ctx).Table(kind.VoteTable())
}

func (s *GormStore) FindVote(ctx context.Context, kind models.SubjectKind, subjectID, userID string) (*models.Vote, error) {
	var vote models.Vote
	err := s.votes(ctx, kind).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		Take(&vote).Error
	if err != nil {
		return nil, fmt.Errorf("find %s vote: %w", kind, translate(err))
	}
	return &vote, nil
}

func (s *GormStore) CreateVote(ctx context.Context, kind models.SubjectKind, vote *models.Vote) error {
	if err := s.votes(ctx, kind).Create(vote).Error; err != nil {
		return fmt.Errorf("create %s vote: %w", kind, translate(err))
	}
	return nil
}

func (s *GormStore) UpdateVote(ctx context.Context, kind models.SubjectKind, subjectID, userID string, direction models.VoteType) error {
	res := s.votes(ctx, kind).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		Updates(map[string]any{"direction": direction, "updated_at": s.db.NowFunc()})
	if res.Error != nil {
		return fmt.Errorf("update %s vote: %w", kind, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update %s vote: %w", kind, ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteVote(ctx context.Context, kind models.SubjectKind, subjectID, userID string) error {
	res := s.votes(ctx, kind).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		Delete(&models.Vote{})
	if res.Error != nil {
		return fmt.Errorf("delete %s vote: %w", kind, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s vote: %w", kind, ErrNotFound)
	}
	return nil
}
