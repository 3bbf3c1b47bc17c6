package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db}
}

// Record upserts the (user, video) entry, bumping WatchedAt on rewatch so
// history stays ordered by last view.
func (r *WatchHistoryRepository) Record(ctx context.Context, userID, videoID uuid.UUID) error {
	entry := &models.WatchEntry{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"watched_at": entry.WatchedAt}),
		}).
		Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record watch entry: %w", err)
	}
	return nil
}

func (r *WatchHistoryRepository) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.WatchEntry, error) {
	var entries []*models.WatchEntry
	if err := r.db.WithContext(ctx).
		Preload("Video").
		Preload("Video.Owner").
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list watch history: %w", err)
	}
	return entries, nil
}

func (r *WatchHistoryRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WatchEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count watch history: %w", err)
	}
	return count, nil
}
