package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
)

func TestChannelStats(t *testing.T) {
	users := newFakeUserStore()
	owner := users.add("alice")
	fanA := users.add("fanA")
	fanB := users.add("fanB")

	videos := newFakeVideoStore()
	v1 := videos.add(owner.ID, "one")
	v1.Views = 100
	v2 := videos.add(owner.ID, "two")
	v2.Views = 50

	subs := newFakeSubscriptionStore()
	subs.subs[subKey(fanA.ID, owner.ID)] = subTo(fanA.ID, owner.ID)
	subs.subs[subKey(fanB.ID, owner.ID)] = subTo(fanB.ID, owner.ID)
	subs.subs[subKey(owner.ID, fanA.ID)] = subTo(owner.ID, fanA.ID)

	likes := newFakeLikeStore(videos)
	like, _ := models.NewLike(fanA.ID, models.VideoLikeTarget(v1.ID))
	if err := likes.Create(context.Background(), like); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	cache := newFakeStatsCache()
	svc := NewDashboardService(users, videos, subs, likes, cache, newTestLogger())

	stats, err := svc.ChannelStats(context.Background(), owner.ID.String())
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	want := ChannelStats{
		TotalSubscribers: 2,
		TotalVideos:      2,
		TotalSubscribed:  1,
		TotalViews:       150,
		TotalLikes:       1,
	}
	if *stats != want {
		t.Fatalf("stats mismatch: got %+v want %+v", *stats, want)
	}
}

func TestChannelStatsCached(t *testing.T) {
	users := newFakeUserStore()
	owner := users.add("alice")
	videos := newFakeVideoStore()
	subs := newFakeSubscriptionStore()
	likes := newFakeLikeStore(videos)
	cache := newFakeStatsCache()
	svc := NewDashboardService(users, videos, subs, likes, cache, newTestLogger())

	ctx := context.Background()
	if _, err := svc.ChannelStats(ctx, owner.ID.String()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// mutate the backing data; the cached copy should win within the TTL
	videos.add(owner.ID, "new")

	stats, err := svc.ChannelStats(ctx, owner.ID.String())
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected second call to hit the cache, hits=%d", cache.hits)
	}
	if stats.TotalVideos != 0 {
		t.Fatalf("expected stale cached count, got %d", stats.TotalVideos)
	}
}

func TestChannelStatsCacheReadFailure(t *testing.T) {
	users := newFakeUserStore()
	owner := users.add("alice")
	videos := newFakeVideoStore()
	videos.add(owner.ID, "clip")
	subs := newFakeSubscriptionStore()
	likes := newFakeLikeStore(videos)
	cache := newFakeStatsCache()
	cache.failGet = errors.New("redis: connection refused")

	var buf bytes.Buffer
	log := logger.NewLogger()
	log.SetOutput(&buf)
	svc := NewDashboardService(users, videos, subs, likes, cache, log)

	stats, err := svc.ChannelStats(context.Background(), owner.ID.String())
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalVideos != 1 {
		t.Fatalf("expected fresh stats despite the cache failure, got %+v", stats)
	}
	if !strings.Contains(buf.String(), "Failed to read channel stats cache") {
		t.Fatalf("expected the cache failure to be logged, got %q", buf.String())
	}

	// a plain miss is not worth a warning
	cache.failGet = nil
	buf.Reset()
	other := users.add("bob")
	if _, err := svc.ChannelStats(context.Background(), other.ID.String()); err != nil {
		t.Fatalf("channel stats after miss: %v", err)
	}
	if strings.Contains(buf.String(), "stats cache") {
		t.Fatalf("a cache miss must not be logged as a failure, got %q", buf.String())
	}
}

func TestChannelStatsUnknownUser(t *testing.T) {
	videos := newFakeVideoStore()
	svc := NewDashboardService(newFakeUserStore(), videos, newFakeSubscriptionStore(), newFakeLikeStore(videos), newFakeStatsCache(), newTestLogger())

	_, err := svc.ChannelStats(context.Background(), uuid.New().String())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
