package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

func newTestLogger() *logger.Logger {
	l := logger.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

// in-memory fakes for the store interfaces

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) add(username string) *models.User {
	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("username or email already taken: %w", apperr.ErrConflict)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) Update(_ context.Context, user *models.User) error {
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("username or email already taken: %w", apperr.ErrConflict)
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, userID uuid.UUID, token string) error {
	if user, ok := s.users[userID]; ok {
		user.RefreshToken = token
	}
	return nil
}

func (s *fakeUserStore) RotateRefreshToken(_ context.Context, userID uuid.UUID, current, next string) (bool, error) {
	user, ok := s.users[userID]
	if !ok || user.RefreshToken != current {
		return false, nil
	}
	user.RefreshToken = next
	return true, nil
}

type fakeVideoStore struct {
	videos  map[uuid.UUID]*models.Video
	deleted []uuid.UUID
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[uuid.UUID]*models.Video)}
}

func (s *fakeVideoStore) add(ownerID uuid.UUID, title string) *models.Video {
	video := &models.Video{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		VideoFile:   "http://media/videos/" + title,
		Thumbnail:   "http://media/thumbnails/" + title,
		Title:       title,
		Duration:    10,
		IsPublished: true,
		CreatedAt:   time.Now(),
	}
	s.videos[video.ID] = video
	return video
}

func (s *fakeVideoStore) Create(_ context.Context, video *models.Video) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) GetByID(_ context.Context, id uuid.UUID) (*models.Video, error) {
	return s.videos[id], nil
}

func (s *fakeVideoStore) List(_ context.Context, filter repository.VideoFilter) ([]*models.Video, int64, error) {
	var all []*models.Video
	for _, video := range s.videos {
		if filter.PublishedOnly && !video.IsPublished {
			continue
		}
		if filter.OwnerID != nil && video.OwnerID != *filter.OwnerID {
			continue
		}
		all = append(all, video)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], total, nil
}

func (s *fakeVideoStore) GetByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Video, error) {
	var out []*models.Video
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (s *fakeVideoStore) Update(_ context.Context, video *models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id uuid.UUID) error {
	if video, ok := s.videos[id]; ok {
		video.Views++
	}
	return nil
}

func (s *fakeVideoStore) CountByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *fakeVideoStore) SumViewsByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var sum int64
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			sum += video.Views
		}
	}
	return sum, nil
}

func (s *fakeVideoStore) DeleteCascading(_ context.Context, id uuid.UUID) error {
	if _, ok := s.videos[id]; !ok {
		return fmt.Errorf("video %s: %w", id, apperr.ErrNotFound)
	}
	delete(s.videos, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type fakeTweetStore struct {
	tweets  map[uuid.UUID]*models.Tweet
	deleted []uuid.UUID
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[uuid.UUID]*models.Tweet)}
}

func (s *fakeTweetStore) add(ownerID uuid.UUID, content string) *models.Tweet {
	tweet := &models.Tweet{ID: uuid.New(), OwnerID: ownerID, Content: content, CreatedAt: time.Now()}
	s.tweets[tweet.ID] = tweet
	return tweet
}

func (s *fakeTweetStore) Create(_ context.Context, tweet *models.Tweet) error {
	if tweet.ID == uuid.Nil {
		tweet.ID = uuid.New()
	}
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) GetByID(_ context.Context, id uuid.UUID) (*models.Tweet, error) {
	return s.tweets[id], nil
}

func (s *fakeTweetStore) GetByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	return out, nil
}

func (s *fakeTweetStore) Update(_ context.Context, tweet *models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) DeleteCascading(_ context.Context, id uuid.UUID) error {
	if _, ok := s.tweets[id]; !ok {
		return fmt.Errorf("tweet %s: %w", id, apperr.ErrNotFound)
	}
	delete(s.tweets, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type fakeCommentStore struct {
	comments map[uuid.UUID]*models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[uuid.UUID]*models.Comment)}
}

func (s *fakeCommentStore) Create(_ context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = time.Now()
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.comments[id], nil
}

func (s *fakeCommentStore) ListByTarget(_ context.Context, target models.CommentTarget, offset, limit int) ([]*models.Comment, error) {
	var all []*models.Comment
	for _, comment := range s.comments {
		if comment.TargetType == target.Type && comment.TargetID == target.ID {
			all = append(all, comment)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeCommentStore) CountByTarget(_ context.Context, target models.CommentTarget) (int64, error) {
	var count int64
	for _, comment := range s.comments {
		if comment.TargetType == target.Type && comment.TargetID == target.ID {
			count++
		}
	}
	return count, nil
}

func (s *fakeCommentStore) Update(_ context.Context, comment *models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.comments, id)
	return nil
}

type fakeLikeStore struct {
	likes  map[string]*models.Like
	videos *fakeVideoStore
}

func newFakeLikeStore(videos *fakeVideoStore) *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]*models.Like), videos: videos}
}

func likeKey(likedBy uuid.UUID, target models.LikeTarget) string {
	return likedBy.String() + "/" + string(target.Type) + "/" + target.ID.String()
}

func (s *fakeLikeStore) Create(_ context.Context, like *models.Like) error {
	key := likeKey(like.LikedByID, like.Target())
	if _, ok := s.likes[key]; ok {
		return fmt.Errorf("already liked: %w", apperr.ErrConflict)
	}
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	like.CreatedAt = time.Now()
	s.likes[key] = like
	return nil
}

func (s *fakeLikeStore) Delete(_ context.Context, likedBy uuid.UUID, target models.LikeTarget) error {
	delete(s.likes, likeKey(likedBy, target))
	return nil
}

func (s *fakeLikeStore) CountByTarget(_ context.Context, target models.LikeTarget) (int64, error) {
	var count int64
	for _, like := range s.likes {
		if like.TargetType == target.Type && like.TargetID == target.ID {
			count++
		}
	}
	return count, nil
}

func (s *fakeLikeStore) CountVideoLikesByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	for _, like := range s.likes {
		if like.TargetType != models.TargetVideo {
			continue
		}
		if video, ok := s.videos.videos[like.TargetID]; ok && video.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *fakeLikeStore) ListLikedVideos(_ context.Context, userID uuid.UUID) ([]*models.Video, error) {
	var out []*models.Video
	for _, like := range s.likes {
		if like.LikedByID != userID || like.TargetType != models.TargetVideo {
			continue
		}
		if video, ok := s.videos.videos[like.TargetID]; ok {
			out = append(out, video)
		}
	}
	return out, nil
}

type fakeSubscriptionStore struct {
	subs map[string]*models.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]*models.Subscription)}
}

func subKey(subscriberID, channelID uuid.UUID) string {
	return subscriberID.String() + "/" + channelID.String()
}

func subTo(subscriberID, channelID uuid.UUID) *models.Subscription {
	return &models.Subscription{ID: uuid.New(), SubscriberID: subscriberID, ChannelID: channelID}
}

func (s *fakeSubscriptionStore) Create(_ context.Context, sub *models.Subscription) error {
	key := subKey(sub.SubscriberID, sub.ChannelID)
	if _, ok := s.subs[key]; ok {
		return fmt.Errorf("already subscribed: %w", apperr.ErrConflict)
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.subs[key] = sub
	return nil
}

func (s *fakeSubscriptionStore) Delete(_ context.Context, subscriberID, channelID uuid.UUID) error {
	delete(s.subs, subKey(subscriberID, channelID))
	return nil
}

func (s *fakeSubscriptionStore) IsSubscribed(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	_, ok := s.subs[subKey(subscriberID, channelID)]
	return ok, nil
}

func (s *fakeSubscriptionStore) CountSubscribers(_ context.Context, channelID uuid.UUID) (int64, error) {
	var count int64
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			count++
		}
	}
	return count, nil
}

func (s *fakeSubscriptionStore) CountSubscribed(_ context.Context, subscriberID uuid.UUID) (int64, error) {
	var count int64
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			count++
		}
	}
	return count, nil
}

func (s *fakeSubscriptionStore) ListSubscribers(_ context.Context, channelID uuid.UUID, offset, limit int) ([]*models.Subscription, error) {
	var all []*models.Subscription
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			all = append(all, sub)
		}
	}
	return paginateSubs(all, offset, limit), nil
}

func (s *fakeSubscriptionStore) ListSubscribed(_ context.Context, subscriberID uuid.UUID, offset, limit int) ([]*models.Subscription, error) {
	var all []*models.Subscription
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			all = append(all, sub)
		}
	}
	return paginateSubs(all, offset, limit), nil
}

func paginateSubs(all []*models.Subscription, offset, limit int) []*models.Subscription {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type fakePlaylistStore struct {
	playlists map[uuid.UUID]*models.Playlist
	members   map[uuid.UUID][]*models.PlaylistVideo
	videos    *fakeVideoStore
}

func newFakePlaylistStore(videos *fakeVideoStore) *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: make(map[uuid.UUID]*models.Playlist),
		members:   make(map[uuid.UUID][]*models.PlaylistVideo),
		videos:    videos,
	}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist *models.Playlist) error {
	for _, existing := range s.playlists {
		if existing.OwnerID == playlist.OwnerID && existing.Name == playlist.Name {
			return fmt.Errorf("playlist name already taken: %w", apperr.ErrConflict)
		}
	}
	if playlist.ID == uuid.Nil {
		playlist.ID = uuid.New()
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) GetByID(_ context.Context, id uuid.UUID) (*models.Playlist, error) {
	return s.playlists[id], nil
}

func (s *fakePlaylistStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Playlist, error) {
	var out []*models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, playlist *models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.playlists, id)
	delete(s.members, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID uuid.UUID) error {
	for _, entry := range s.members[playlistID] {
		if entry.VideoID == videoID {
			return fmt.Errorf("video already in playlist: %w", apperr.ErrConflict)
		}
	}
	entry := &models.PlaylistVideo{
		ID:         uuid.New(),
		PlaylistID: playlistID,
		VideoID:    videoID,
		Position:   len(s.members[playlistID]) + 1,
	}
	if video, ok := s.videos.videos[videoID]; ok {
		entry.Video = *video
	}
	s.members[playlistID] = append(s.members[playlistID], entry)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	entries := s.members[playlistID]
	for i, entry := range entries {
		if entry.VideoID == videoID {
			s.members[playlistID] = append(entries[:i], entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakePlaylistStore) ListVideos(_ context.Context, playlistID uuid.UUID) ([]*models.PlaylistVideo, error) {
	entries := make([]*models.PlaylistVideo, len(s.members[playlistID]))
	copy(entries, s.members[playlistID])
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

type fakeWatchHistoryStore struct {
	entries []*models.WatchEntry
}

func (s *fakeWatchHistoryStore) Record(_ context.Context, userID, videoID uuid.UUID) error {
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.VideoID == videoID {
			entry.WatchedAt = time.Now()
			return nil
		}
	}
	s.entries = append(s.entries, &models.WatchEntry{
		ID:        uuid.New(),
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now(),
	})
	return nil
}

func (s *fakeWatchHistoryStore) List(_ context.Context, userID uuid.UUID, offset, limit int) ([]*models.WatchEntry, error) {
	var all []*models.WatchEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			all = append(all, entry)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].WatchedAt.After(all[j].WatchedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeWatchHistoryStore) Count(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, entry := range s.entries {
		if entry.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakePublisher struct {
	events []queue.Event
}

func (p *fakePublisher) Publish(_ context.Context, _ string, value interface{}) error {
	if event, ok := value.(queue.Event); ok {
		p.events = append(p.events, event)
	}
	return nil
}

func (p *fakePublisher) eventTypes() []queue.EventType {
	out := make([]queue.EventType, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

// closeRecorder wraps an upload body and remembers whether it was closed.
type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

type fakeMediaStore struct {
	uploads  int
	deleted  []string
	failNext bool
}

func (s *fakeMediaStore) Upload(_ context.Context, folder, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	if s.failNext {
		s.failNext = false
		return "", fmt.Errorf("media store unavailable")
	}
	s.uploads++
	return fmt.Sprintf("http://media/%s/%s", folder, filename), nil
}

func (s *fakeMediaStore) Delete(_ context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

type fakeStatsCache struct {
	data    map[string][]byte
	hits    int
	failGet error
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{data: make(map[string][]byte)}
}

func (c *fakeStatsCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	if c.failGet != nil {
		return c.failGet
	}
	raw, ok := c.data[key]
	if !ok {
		return redis.Nil
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *fakeStatsCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}
