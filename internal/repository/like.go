package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("like already exists: %w", apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *LikeRepository) Delete(ctx context.Context, likedBy uuid.UUID, target models.LikeTarget) error {
	if err := r.db.WithContext(ctx).
		Where("liked_by_id = ? AND target_type = ? AND target_id = ?", likedBy, target.Type, target.ID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *LikeRepository) CountByTarget(ctx context.Context, target models.LikeTarget) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// CountVideoLikesByOwner totals likes across every video a channel owns.
func (r *LikeRepository) CountVideoLikesByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Joins("JOIN videos ON videos.id = likes.target_id").
		Where("likes.target_type = ? AND videos.owner_id = ?", models.TargetVideo, ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count video likes: %w", err)
	}
	return count, nil
}

// ListLikedVideos returns the videos a user has liked, owner joined.
func (r *LikeRepository) ListLikedVideos(ctx context.Context, userID uuid.UUID) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Joins("JOIN likes ON likes.target_id = videos.id AND likes.target_type = ?", models.TargetVideo).
		Where("likes.liked_by_id = ?", userID).
		Order("likes.created_at DESC").
		Preload("Owner").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list liked videos: %w", err)
	}
	return videos, nil
}
