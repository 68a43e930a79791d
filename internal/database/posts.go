package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post, creatorVote models.VoteType) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator", "Subreddit", "Votes").Create(post).Error; err != nil {
			return err
		}
		vote := models.PostVote{Vote: models.Vote{
			SubjectID: post.ID,
			UserID:    post.CreatorID,
			Direction: creatorVote,
		}}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		post.Votes = []models.PostVote{vote}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create post: %w", translate(err))
	}
	return nil
}

func (s *GormStore) postQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Subreddit").
		Preload("Votes")
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.postQuery(ctx).Where("id = ?", id).Take(&post).Error; err != nil {
		return nil, fmt.Errorf("get post: %w", translate(err))
	}

	posts := []models.Post{post}
	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *GormStore) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	q := s.postQuery(ctx).Order("created_at desc, id desc")
	switch {
	case filter.SubredditID != "":
		q = q.Where("subreddit_id = ?", filter.SubredditID)
	case filter.MemberID != "":
		joined := s.db.WithContext(ctx).Model(&models.SubredditMember{}).
			Select("subreddit_id").
			Where("user_id = ?", filter.MemberID)
		q = q.Where("subreddit_id IN (?)", joined)
	}
	if filter.CreatorID != "" {
		q = q.Where("creator_id = ?", filter.CreatorID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", translate(err))
	}
	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) fillCommentCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var rows []struct {
		PostID string
		Total  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, count(*) as total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", translate(err))
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}

func (s *GormStore) UpdatePost(ctx context.Context, post *models.Post) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{"title": post.Title, "content": post.Content})
	if res.Error != nil {
		return fmt.Errorf("update post: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update post: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeletePost(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("subject_id IN (?)", comments).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.PostVote{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", translate(err))
	}
	return nil
}
