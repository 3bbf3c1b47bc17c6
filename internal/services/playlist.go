package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
)

type PlaylistService struct {
	playlists PlaylistStore
	videos    VideoStore
	logger    *logger.Logger
}

func NewPlaylistService(playlists PlaylistStore, videos VideoStore, logger *logger.Logger) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos, logger: logger}
}

type CreatePlaylistRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"max=500"`
}

type UpdatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// PlaylistDetail is a playlist together with its member videos in order.
type PlaylistDetail struct {
	Playlist *models.Playlist `json:"playlist"`
	Videos   []*models.Video  `json:"videos"`
}

func (s *PlaylistService) Create(ctx context.Context, ownerID string, req *CreatePlaylistRequest) (*models.Playlist, error) {
	owner, err := parseID("user id", ownerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("playlist name is required: %w", apperr.ErrValidation)
	}

	playlist := &models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     owner,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}

	s.logger.WithField("playlist_id", playlist.ID).Info("Playlist created")
	return playlist, nil
}

func (s *PlaylistService) Get(ctx context.Context, playlistID string) (*PlaylistDetail, error) {
	id, err := parseID("playlist id", playlistID)
	if err != nil {
		return nil, err
	}
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, apperr.ErrNotFound)
	}

	entries, err := s.playlists.ListVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	videos := make([]*models.Video, 0, len(entries))
	for _, entry := range entries {
		videos = append(videos, &entry.Video)
	}
	return &PlaylistDetail{Playlist: playlist, Videos: videos}, nil
}

func (s *PlaylistService) ListByUser(ctx context.Context, userID string) ([]*models.Playlist, error) {
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	playlists, err := s.playlists.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []*models.Playlist{}
	}
	return playlists, nil
}

func (s *PlaylistService) Update(ctx context.Context, playlistID, userID string, req *UpdatePlaylistRequest) (*models.Playlist, error) {
	playlist, err := s.getOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("playlist name cannot be blank: %w", apperr.ErrValidation)
		}
		playlist.Name = *req.Name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}

	if err := s.playlists.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) Delete(ctx context.Context, playlistID, userID string) error {
	playlist, err := s.getOwned(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, playlist.ID); err != nil {
		return err
	}
	s.logger.WithField("playlist_id", playlist.ID).Info("Playlist deleted")
	return nil
}

// AddVideo appends an existing video to the caller's playlist. Adding the
// same video twice is a conflict.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID, userID string) error {
	playlist, err := s.getOwned(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	video, err := parseID("video id", videoID)
	if err != nil {
		return err
	}

	v, err := s.videos.GetByID(ctx, video)
	if err != nil {
		return fmt.Errorf("failed to get video: %w", err)
	}
	if v == nil {
		return fmt.Errorf("video %s: %w", videoID, apperr.ErrNotFound)
	}

	return s.playlists.AddVideo(ctx, playlist.ID, video)
}

// RemoveVideo drops a video from the playlist; removing one that is not a
// member is a validation error.
func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, userID string) error {
	playlist, err := s.getOwned(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	video, err := parseID("video id", videoID)
	if err != nil {
		return err
	}

	removed, err := s.playlists.RemoveVideo(ctx, playlist.ID, video)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("video is not in the playlist: %w", apperr.ErrValidation)
	}
	return nil
}

func (s *PlaylistService) getOwned(ctx context.Context, playlistID, userID string) (*models.Playlist, error) {
	id, err := parseID("playlist id", playlistID)
	if err != nil {
		return nil, err
	}
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, apperr.ErrNotFound)
	}
	if playlist.OwnerID != owner {
		return nil, fmt.Errorf("playlist belongs to another user: %w", apperr.ErrForbidden)
	}
	return playlist, nil
}
