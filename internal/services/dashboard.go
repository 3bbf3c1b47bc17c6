package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/pkg/cache"
	"github.com/vidtube/vidtube/pkg/logger"
)

const statsCacheTTL = 5 * time.Minute

type DashboardService struct {
	users  UserStore
	videos VideoStore
	subs   SubscriptionStore
	likes  LikeStore
	cache  StatsCache
	logger *logger.Logger
}

func NewDashboardService(users UserStore, videos VideoStore, subs SubscriptionStore, likes LikeStore, cache StatsCache, logger *logger.Logger) *DashboardService {
	return &DashboardService{
		users:  users,
		videos: videos,
		subs:   subs,
		likes:  likes,
		cache:  cache,
		logger: logger,
	}
}

type ChannelStats struct {
	TotalSubscribers int64 `json:"total_subscribers"`
	TotalVideos      int64 `json:"total_videos"`
	TotalSubscribed  int64 `json:"total_subscribed"`
	TotalViews       int64 `json:"total_views"`
	TotalLikes       int64 `json:"total_likes"`
}

// ChannelStats aggregates the five channel counters, served from redis when
// a fresh copy exists. Stale reads within the TTL are acceptable.
func (s *DashboardService) ChannelStats(ctx context.Context, ownerID string) (*ChannelStats, error) {
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

	cacheKey := "channel_stats:" + owner.String()
	var stats ChannelStats
	if err := s.cache.GetJSON(ctx, cacheKey, &stats); err == nil {
		return &stats, nil
	} else if !cache.IsMiss(err) {
		// a redis failure degrades to a recomputation, but it is not a miss
		s.logger.WithError(err).Warn("Failed to read channel stats cache")
	}

	if stats.TotalSubscribers, err = s.subs.CountSubscribers(ctx, owner); err != nil {
		return nil, err
	}
	if stats.TotalVideos, err = s.videos.CountByOwner(ctx, owner); err != nil {
		return nil, err
	}
	if stats.TotalSubscribed, err = s.subs.CountSubscribed(ctx, owner); err != nil {
		return nil, err
	}
	if stats.TotalViews, err = s.videos.SumViewsByOwner(ctx, owner); err != nil {
		return nil, err
	}
	if stats.TotalLikes, err = s.likes.CountVideoLikesByOwner(ctx, owner); err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, cacheKey, &stats, statsCacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache channel stats")
	}
	return &stats, nil
}
