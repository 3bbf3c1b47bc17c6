package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
)

// Store interfaces capture exactly what each service needs from the
// repository layer; the concrete repositories satisfy them and tests swap in
// in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token string) error
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, current, next string) (bool, error)
}

type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	List(ctx context.Context, filter repository.VideoFilter) ([]*models.Video, int64, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	SumViewsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	DeleteCascading(ctx context.Context, id uuid.UUID) error
}

type TweetStore interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tweet, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Tweet, error)
	Update(ctx context.Context, tweet *models.Tweet) error
	DeleteCascading(ctx context.Context, id uuid.UUID) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByTarget(ctx context.Context, target models.CommentTarget, offset, limit int) ([]*models.Comment, error)
	CountByTarget(ctx context.Context, target models.CommentTarget) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, likedBy uuid.UUID, target models.LikeTarget) error
	CountByTarget(ctx context.Context, target models.LikeTarget) (int64, error)
	CountVideoLikesByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	ListLikedVideos(ctx context.Context, userID uuid.UUID) ([]*models.Video, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uuid.UUID) error
	IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountSubscribed(ctx context.Context, subscriberID uuid.UUID) (int64, error)
	ListSubscribers(ctx context.Context, channelID uuid.UUID, offset, limit int) ([]*models.Subscription, error)
	ListSubscribed(ctx context.Context, subscriberID uuid.UUID, offset, limit int) ([]*models.Subscription, error)
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Playlist, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error)
	ListVideos(ctx context.Context, playlistID uuid.UUID) ([]*models.PlaylistVideo, error)
}

type WatchHistoryStore interface {
	Record(ctx context.Context, userID, videoID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.WatchEntry, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

// EventPublisher is satisfied by queue.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// MediaStore is satisfied by storage.MediaStore.
type MediaStore interface {
	Upload(ctx context.Context, folder, filename string, src io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// StatsCache is satisfied by cache.RedisClient. GetJSON errors on a miss;
// cache.IsMiss tells a miss apart from a real failure.
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Upload carries one multipart file from the HTTP boundary into a service.
// The consuming service closes the reader once the media store has read it.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.ReadCloser
}

// Close releases the underlying file. Safe on a nil upload so optional files
// can be closed unconditionally.
func (u *Upload) Close() error {
	if u == nil || u.Reader == nil {
		return nil
	}
	return u.Reader.Close()
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", field, value, apperr.ErrValidation)
	}
	return id, nil
}
