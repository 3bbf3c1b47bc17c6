package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"gorm.io/gorm"
)

type TweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return fmt.Errorf("failed to create tweet: %w", err)
	}
	return nil
}

func (r *TweetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&tweet, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tweet: %w", err)
	}
	return &tweet, nil
}

func (r *TweetRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tweets).Error; err != nil {
		return nil, fmt.Errorf("failed to get tweets by owner: %w", err)
	}
	return tweets, nil
}

func (r *TweetRepository) Update(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Save(tweet).Error; err != nil {
		return fmt.Errorf("failed to update tweet: %w", err)
	}
	return nil
}

// DeleteCascading removes a tweet plus the comments and likes referencing it
// (and the likes on those comments) in one transaction.
func (r *TweetRepository) DeleteCascading(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).
			Select("id").
			Where("target_type = ? AND target_id = ?", models.TargetTweet, id)

		if err := tx.Where("target_type = ? AND target_id IN (?)", models.TargetComment, commentIDs).
			Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment likes: %w", err)
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetTweet, id).
			Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetTweet, id).
			Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&models.Tweet{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete tweet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("tweet %s: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
}

// CleanupRefs is the idempotent repair variant of the tweet cascade.
func (r *TweetRepository) CleanupRefs(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	commentIDs := db.Model(&models.Comment{}).
		Select("id").
		Where("target_type = ? AND target_id = ?", models.TargetTweet, id)
	if err := db.Where("target_type = ? AND target_id IN (?)", models.TargetComment, commentIDs).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to clean comment likes: %w", err)
	}
	if err := db.Where("target_type = ? AND target_id = ?", models.TargetTweet, id).
		Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("failed to clean comments: %w", err)
	}
	if err := db.Where("target_type = ? AND target_id = ?", models.TargetTweet, id).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to clean likes: %w", err)
	}
	return nil
}
