package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
)

func TestToggleVideoLike(t *testing.T) {
	users := newFakeUserStore()
	owner := users.add("alice")
	liker := users.add("bob")
	videos := newFakeVideoStore()
	video := videos.add(owner.ID, "clip")
	likes := newFakeLikeStore(videos)
	svc := NewLikeService(likes, videos, newFakeCommentStore(), newFakeTweetStore(), newTestLogger())

	ctx := context.Background()

	state, err := svc.ToggleVideo(ctx, video.ID.String(), liker.ID.String())
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !state.Liked || state.Count != 1 {
		t.Fatalf("expected liked with count 1, got %+v", state)
	}

	state, err = svc.ToggleVideo(ctx, video.ID.String(), liker.ID.String())
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if state.Liked || state.Count != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", state)
	}

	state, err = svc.ToggleVideo(ctx, video.ID.String(), liker.ID.String())
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if !state.Liked || state.Count != 1 {
		t.Fatalf("expected liked again with count 1, got %+v", state)
	}
}

func TestToggleLikeUnknownVideo(t *testing.T) {
	users := newFakeUserStore()
	liker := users.add("bob")
	videos := newFakeVideoStore()
	likes := newFakeLikeStore(videos)
	svc := NewLikeService(likes, videos, newFakeCommentStore(), newFakeTweetStore(), newTestLogger())

	_, err := svc.ToggleVideo(context.Background(), uuid.New().String(), liker.ID.String())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestToggleTweetLike(t *testing.T) {
	users := newFakeUserStore()
	author := users.add("alice")
	liker := users.add("bob")
	videos := newFakeVideoStore()
	tweets := newFakeTweetStore()
	tweet := tweets.add(author.ID, "hello")
	likes := newFakeLikeStore(videos)
	svc := NewLikeService(likes, videos, newFakeCommentStore(), tweets, newTestLogger())

	state, err := svc.ToggleTweet(context.Background(), tweet.ID.String(), liker.ID.String())
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !state.Liked || state.Count != 1 {
		t.Fatalf("expected liked with count 1, got %+v", state)
	}
}

func TestLikedVideos(t *testing.T) {
	users := newFakeUserStore()
	owner := users.add("alice")
	liker := users.add("bob")
	videos := newFakeVideoStore()
	liked := videos.add(owner.ID, "liked")
	videos.add(owner.ID, "other")
	likes := newFakeLikeStore(videos)
	svc := NewLikeService(likes, videos, newFakeCommentStore(), newFakeTweetStore(), newTestLogger())

	ctx := context.Background()
	if _, err := svc.ToggleVideo(ctx, liked.ID.String(), liker.ID.String()); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	got, err := svc.LikedVideos(ctx, liker.ID.String())
	if err != nil {
		t.Fatalf("liked videos: %v", err)
	}
	if len(got) != 1 || got[0].ID != liked.ID {
		t.Fatalf("expected only the liked video, got %d items", len(got))
	}

	// a user with no likes gets an empty list, not an error
	got, err = svc.LikedVideos(ctx, owner.ID.String())
	if err != nil {
		t.Fatalf("liked videos for owner: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d items", len(got))
	}
}
