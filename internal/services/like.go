package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
)

type LikeService struct {
	likes    LikeStore
	videos   VideoStore
	comments CommentStore
	tweets   TweetStore
	logger   *logger.Logger
}

func NewLikeService(likes LikeStore, videos VideoStore, comments CommentStore, tweets TweetStore, logger *logger.Logger) *LikeService {
	return &LikeService{
		likes:    likes,
		videos:   videos,
		comments: comments,
		tweets:   tweets,
		logger:   logger,
	}
}

// LikeState is the post-toggle state of a (user, target) pair.
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"like_count"`
}

func (s *LikeService) ToggleVideo(ctx context.Context, videoID, userID string) (*LikeState, error) {
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
	return s.toggle(ctx, userID, models.VideoLikeTarget(id))
}

func (s *LikeService) ToggleComment(ctx context.Context, commentID, userID string) (*LikeState, error) {
	id, err := parseID("comment id", commentID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, apperr.ErrNotFound)
	}
	return s.toggle(ctx, userID, models.CommentLikeTarget(id))
}

func (s *LikeService) ToggleTweet(ctx context.Context, tweetID, userID string) (*LikeState, error) {
	id, err := parseID("tweet id", tweetID)
	if err != nil {
		return nil, err
	}
	tweet, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tweet: %w", err)
	}
	if tweet == nil {
		return nil, fmt.Errorf("tweet %s: %w", tweetID, apperr.ErrNotFound)
	}
	return s.toggle(ctx, userID, models.TweetLikeTarget(id))
}

// toggle inserts the like and falls back to removing it when the unique index
// reports the row already exists. The insert-first shape means two concurrent
// toggles resolve to one winner instead of two stored likes.
func (s *LikeService) toggle(ctx context.Context, userID string, target models.LikeTarget) (*LikeState, error) {
	likedBy, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	like, err := models.NewLike(likedBy, target)
	if err != nil {
		return nil, fmt.Errorf("invalid like target: %w", apperr.ErrValidation)
	}

	liked := true
	if err := s.likes.Create(ctx, like); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		if err := s.likes.Delete(ctx, likedBy, target); err != nil {
			return nil, err
		}
		liked = false
	}

	count, err := s.likes.CountByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":     userID,
		"target_type": target.Type,
		"target_id":   target.ID,
		"liked":       liked,
	}).Info("Like toggled")
	return &LikeState{Liked: liked, Count: count}, nil
}

// LikedVideos returns the videos the user has liked, most recent like first.
func (s *LikeService) LikedVideos(ctx context.Context, userID string) ([]*models.Video, error) {
	id, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	videos, err := s.likes.ListLikedVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}
