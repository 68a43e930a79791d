package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

func (s *GormStore) CreateSubreddit(ctx context.Context, sub *models.Subreddit) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator").Create(sub).Error; err != nil {
			return err
		}
		member := models.SubredditMember{SubredditID: sub.ID, UserID: sub.CreatorID}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		moderator := models.SubredditModerator{SubredditID: sub.ID, UserID: sub.CreatorID}
		return tx.Create(&moderator).Error
	})
	if err != nil {
		return fmt.Errorf("create subreddit: %w", translate(err))
	}
	sub.MemberCount = 1
	return nil
}

func (s *GormStore) GetSubreddit(ctx context.Context, id string) (*models.Subreddit, error) {
	var sub models.Subreddit
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&sub).Error; err != nil {
		return nil, fmt.Errorf("get subreddit: %w", translate(err))
	}
	counts, err := s.memberCounts(ctx, []string{sub.ID})
	if err != nil {
		return nil, err
	}
	sub.MemberCount = counts[sub.ID]
	return &sub, nil
}

func (s *GormStore) ListSubreddits(ctx context.Context) ([]models.Subreddit, error) {
	var subs []models.Subreddit
	if err := s.db.WithContext(ctx).Order("name asc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subreddits: %w", translate(err))
	}

	ids := make([]string, len(subs))
	for i := range subs {
		ids[i] = subs[i].ID
	}
	counts, err := s.memberCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].MemberCount = counts[subs[i].ID]
	}
	return subs, nil
}

func (s *GormStore) memberCounts(ctx context.Context, subredditIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(subredditIDs))
	if len(subredditIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SubredditID string
		Total       int64
	}
	err := s.db.WithContext(ctx).Model(&models.SubredditMember{}).
		Select("subreddit_id, count(*) as total").
		Where("subreddit_id IN ?", subredditIDs).
		Group("subreddit_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count members: %w", translate(err))
	}
	for _, row := range rows {
		counts[row.SubredditID] = row.Total
	}
	return counts, nil
}

func (s *GormStore) UpdateSubreddit(ctx context.Context, sub *models.Subreddit) error {
	res := s.db.WithContext(ctx).Model(&models.Subreddit{}).
		Where("id = ?", sub.ID).
		Updates(map[string]any{"name": sub.Name, "description": sub.Description})
	if res.Error != nil {
		return fmt.Errorf("update subreddit: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update subreddit: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteSubreddit(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := tx.Model(&models.Post{}).Select("id").Where("subreddit_id = ?", id)
		comments := tx.Model(&models.Comment{}).Select("id").Where("post_id IN (?)", posts)

		steps := []struct {
			model any
			query string
			arg   any
		}{
			{&models.CommentVote{}, "subject_id IN (?)", comments},
			{&models.Comment{}, "post_id IN (?)", posts},
			{&models.PostVote{}, "subject_id IN (?)", posts},
			{&models.Post{}, "subreddit_id = ?", id},
			{&models.SubredditMember{}, "subreddit_id = ?", id},
			{&models.SubredditModerator{}, "subreddit_id = ?", id},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.arg).Delete(step.model).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&models.Subreddit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete subreddit: %w", translate(err))
	}
	return nil
}

func (s *GormStore) AddMember(ctx context.Context, subredditID, userID string) error {
	member := models.SubredditMember{SubredditID: subredditID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return fmt.Errorf("add member: %w", translate(err))
	}
	return nil
}

func (s *GormStore) RemoveMember(ctx context.Context, subredditID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("subreddit_id = ? AND user_id = ?", subredditID, userID).
		Delete(&models.SubredditMember{})
	if res.Error != nil {
		return fmt.Errorf("remove member: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("remove member: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) IsMember(ctx context.Context, subredditID, userID string) (bool, error) {
	return s.exists(ctx, &models.SubredditMember{}, "subreddit_id = ? AND user_id = ?", subredditID, userID)
}

func (s *GormStore) AddModerator(ctx context.Context, subredditID, userID string) error {
	moderator := models.SubredditModerator{SubredditID: subredditID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&moderator).Error; err != nil {
		return fmt.Errorf("add moderator: %w", translate(err))
	}
	return nil
}

func (s *GormStore) RemoveModerator(ctx context.Context, subredditID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("subreddit_id = ? AND user_id = ?", subredditID, userID).
		Delete(&models.SubredditModerator{})
	if res.Error != nil {
		return fmt.Errorf("remove moderator: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("remove moderator: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) IsModerator(ctx context.Context, subredditID, userID string) (bool, error) {
	return s.exists(ctx, &models.SubredditModerator{}, "subreddit_id = ? AND user_id = ?", subredditID, userID)
}

func (s *GormStore) CountModerators(ctx context.Context, subredditID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SubredditModerator{}).
		Where("subreddit_id = ?", subredditID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count moderators: %w", translate(err))
	}
	return n, nil
}

func (s *GormStore) exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}
