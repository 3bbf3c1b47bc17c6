package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// VideoFilter shapes the public feed query. SortBy must be one of the
// allowlisted columns; anything else falls back to created_at.
type VideoFilter struct {
	OwnerID       *uuid.UUID
	Query         string
	SortBy        string
	SortDesc      bool
	PublishedOnly bool
	Offset        int
	Limit         int
}

var videoSortColumns = map[string]string{
	"created_at": "created_at",
	"views":      "views",
	"duration":   "duration",
	"title":      "title",
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&video, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) List(ctx context.Context, filter VideoFilter) ([]*models.Video, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Video{})

	if filter.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Query != "" {
		db = db.Where("title ILIKE ?", "%"+filter.Query+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	column, ok := videoSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	var videos []*models.Video
	if err := db.
		Preload("Owner").
		Order(fmt.Sprintf("%s %s, id DESC", column, direction)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&videos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, total, nil
}

// GetByOwner returns every video a channel owns, published or not.
func (r *VideoRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to get videos by owner: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (r *VideoRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}

func (r *VideoRepository) SumViewsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(views), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum views: %w", err)
	}
	return total, nil
}

// DeleteCascading removes a video and every record referencing it inside one
// transaction: likes on its comments, its comments, likes on the video,
// playlist memberships and watch entries, then the video row itself. Zero
// matching dependents is fine; a missing video row aborts with ErrNotFound
// and nothing is applied.
func (r *VideoRepository) DeleteCascading(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).
			Select("id").
			Where("target_type = ? AND target_id = ?", models.TargetVideo, id)

		if err := tx.Where("target_type = ? AND target_id IN (?)", models.TargetComment, commentIDs).
			Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment likes: %w", err)
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetVideo, id).
			Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetVideo, id).
			Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := tx.Where("video_id = ?", id).
			Delete(&models.PlaylistVideo{}).Error; err != nil {
			return fmt.Errorf("failed to delete playlist memberships: %w", err)
		}
		if err := tx.Where("video_id = ?", id).
			Delete(&models.WatchEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete watch entries: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&models.Video{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete video: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("video %s: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

// CleanupRefs re-runs the dependent cleanup without touching the video row.
// Idempotent; used by the repair worker after a delete event.
func (r *VideoRepository) CleanupRefs(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	commentIDs := db.Model(&models.Comment{}).
		Select("id").
		Where("target_type = ? AND target_id = ?", models.TargetVideo, id)
	if err := db.Where("target_type = ? AND target_id IN (?)", models.TargetComment, commentIDs).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to clean comment likes: %w", err)
	}
	if err := db.Where("target_type = ? AND target_id = ?", models.TargetVideo, id).
		Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("failed to clean comments: %w", err)
	}
	if err := db.Where("target_type = ? AND target_id = ?", models.TargetVideo, id).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to clean likes: %w", err)
	}
	if err := db.Where("video_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
		return fmt.Errorf("failed to clean playlist memberships: %w", err)
	}
	if err := db.Where("video_id = ?", id).Delete(&models.WatchEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clean watch entries: %w", err)
	}
	return nil
}
