package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

type VideoService struct {
	videos   VideoStore
	users    UserStore
	history  WatchHistoryStore
	media    MediaStore
	producer EventPublisher
	logger   *logger.Logger
}

func NewVideoService(videos VideoStore, users UserStore, history WatchHistoryStore, media MediaStore, producer EventPublisher, logger *logger.Logger) *VideoService {
	return &VideoService{
		videos:   videos,
		users:    users,
		history:  history,
		media:    media,
		producer: producer,
		logger:   logger,
	}
}

type PublishVideoRequest struct {
	Title       string  `form:"title" binding:"required,max=120"`
	Description string  `form:"description" binding:"max=2000"`
	Duration    float64 `form:"duration" binding:"required,gt=0"`
}

type UpdateVideoRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

type ListVideosRequest struct {
	Page     PageRequest
	Query    string
	OwnerID  string
	SortBy   string
	SortDesc bool
}

type VideoPage struct {
	Items    []*models.Video `json:"items"`
	PageInfo PageInfo        `json:"page_info"`
}

// Publish uploads the video file and thumbnail, then records the video as
// published. Media store failures surface as dependency errors before any row
// is written.
func (s *VideoService) Publish(ctx context.Context, ownerID string, req *PublishVideoRequest, videoFile, thumbnail *Upload) (*models.Video, error) {
	defer videoFile.Close()
	defer thumbnail.Close()

	owner, err := parseID("user id", ownerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive: %w", apperr.ErrValidation)
	}
	if videoFile == nil {
		return nil, fmt.Errorf("video file is required: %w", apperr.ErrValidation)
	}
	if thumbnail == nil {
		return nil, fmt.Errorf("thumbnail is required: %w", apperr.ErrValidation)
	}

	videoURL, err := s.media.Upload(ctx, "videos", videoFile.Filename, videoFile.Reader, videoFile.Size, videoFile.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload video file: %w", apperr.ErrDependency)
	}
	thumbURL, err := s.media.Upload(ctx, "thumbnails", thumbnail.Filename, thumbnail.Reader, thumbnail.Size, thumbnail.ContentType)
	if err != nil {
		if delErr := s.media.Delete(ctx, videoURL); delErr != nil {
			s.logger.WithError(delErr).Warn("Failed to clean up video file after thumbnail upload failure")
		}
		return nil, fmt.Errorf("failed to upload thumbnail: %w", apperr.ErrDependency)
	}

	video := &models.Video{
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		IsPublished: true,
		OwnerID:     owner,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventVideoPublished, video)
	s.logger.WithField("video_id", video.ID).Info("Video published successfully")
	return video, nil
}

// Get returns one video. When viewerID is set the view counts and the video
// lands in the viewer's watch history; both are best-effort against the read.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID string) (*models.Video, error) {
	id, err := parseID("video id", videoID)
	if err != nil {
		return nil, err
	}
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoID, apperr.ErrNotFound)
	}

	if viewerID != "" {
		viewer, err := parseID("user id", viewerID)
		if err != nil {
			return nil, err
		}
		if err := s.videos.IncrementViews(ctx, id); err != nil {
			s.logger.WithError(err).Warn("Failed to increment view count")
		} else {
			video.Views++
		}
		if err := s.history.Record(ctx, viewer, id); err != nil {
			s.logger.WithError(err).Warn("Failed to record watch history")
		}
	}
	return video, nil
}

func (s *VideoService) List(ctx context.Context, req *ListVideosRequest) (*VideoPage, error) {
	page := req.Page.Normalize()

	filter := repository.VideoFilter{
		Query:         req.Query,
		SortBy:        req.SortBy,
		SortDesc:      req.SortDesc,
		PublishedOnly: true,
		Offset:        page.Offset(),
		Limit:         page.Limit,
	}
	if req.OwnerID != "" {
		owner, err := parseID("user id", req.OwnerID)
		if err != nil {
			return nil, err
		}
		filter.OwnerID = &owner
	}

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return &VideoPage{Items: videos, PageInfo: NewPageInfo(page, total)}, nil
}

func (s *VideoService) Update(ctx context.Context, videoID, userID string, req *UpdateVideoRequest, thumbnail *Upload) (*models.Video, error) {
	defer thumbnail.Close()

	video, err := s.getOwned(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("title cannot be blank: %w", apperr.ErrValidation)
		}
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}

	var oldThumb string
	if thumbnail != nil {
		url, err := s.media.Upload(ctx, "thumbnails", thumbnail.Filename, thumbnail.Reader, thumbnail.Size, thumbnail.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload thumbnail: %w", apperr.ErrDependency)
		}
		oldThumb = video.Thumbnail
		video.Thumbnail = url
	}

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}
	if oldThumb != "" {
		if err := s.media.Delete(ctx, oldThumb); err != nil {
			s.logger.WithError(err).Warn("Failed to delete previous thumbnail")
		}
	}

	s.logger.WithField("video_id", video.ID).Info("Video updated")
	return video, nil
}

func (s *VideoService) TogglePublish(ctx context.Context, videoID, userID string) (*models.Video, error) {
	video, err := s.getOwned(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}
	video.IsPublished = !video.IsPublished
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Delete removes the video row together with every comment, like, playlist
// membership and watch entry pointing at it, then emits a deletion event so
// the repair worker can re-sweep for stragglers. Media objects are deleted
// last, best-effort.
func (s *VideoService) Delete(ctx context.Context, videoID, userID string) error {
	video, err := s.getOwned(ctx, videoID, userID)
	if err != nil {
		return err
	}

	if err := s.videos.DeleteCascading(ctx, video.ID); err != nil {
		return err
	}

	s.publishEvent(ctx, queue.EventVideoDeleted, video)

	for _, url := range []string{video.VideoFile, video.Thumbnail} {
		if url == "" {
			continue
		}
		if err := s.media.Delete(ctx, url); err != nil {
			s.logger.WithError(err).Warn("Failed to delete media object")
		}
	}

	s.logger.WithField("video_id", video.ID).Info("Video deleted")
	return nil
}

// ChannelVideos lists every video of one channel, drafts included; the
// channel owner is the only expected caller for unpublished rows, which the
// handler enforces.
func (s *VideoService) ChannelVideos(ctx context.Context, ownerID string) ([]*models.Video, error) {
	owner, err := parseID("user id", ownerID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("channel %s: %w", ownerID, apperr.ErrNotFound)
	}

	videos, err := s.videos.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}

func (s *VideoService) getOwned(ctx context.Context, videoID, userID string) (*models.Video, error) {
	id, err := parseID("video id", videoID)
	if err != nil {
		return nil, err
	}
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoID, apperr.ErrNotFound)
	}
	if video.OwnerID != owner {
		return nil, fmt.Errorf("video belongs to another user: %w", apperr.ErrForbidden)
	}
	return video, nil
}

func (s *VideoService) publishEvent(ctx context.Context, eventType queue.EventType, video *models.Video) {
	event, err := queue.NewEvent(eventType, queue.VideoEventData{
		VideoID: video.ID.String(),
		OwnerID: video.OwnerID.String(),
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to build video event")
		return
	}
	if err := s.producer.Publish(ctx, video.ID.String(), event); err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Error("Failed to publish video event")
	}
}
