package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/services"
	"github.com/vidtube/vidtube/pkg/logger"
)

type memTweetStore struct {
	tweets map[uuid.UUID]*models.Tweet
}

func (s *memTweetStore) Create(_ context.Context, tweet *models.Tweet) error {
	tweet.ID = uuid.New()
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *memTweetStore) GetByID(_ context.Context, id uuid.UUID) (*models.Tweet, error) {
	return s.tweets[id], nil
}

func (s *memTweetStore) GetByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	return out, nil
}

func (s *memTweetStore) Update(_ context.Context, tweet *models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *memTweetStore) DeleteCascading(_ context.Context, id uuid.UUID) error {
	delete(s.tweets, id)
	return nil
}

type memUserStore struct {
	users map[uuid.UUID]*models.User
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.users[id], nil
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (s *memUserStore) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) SetRefreshToken(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (s *memUserStore) RotateRefreshToken(_ context.Context, _ uuid.UUID, _, _ string) (bool, error) {
	return true, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func quietLogger() *logger.Logger {
	l := logger.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

func newTweetRouter(userID uuid.UUID) (*gin.Engine, *memTweetStore) {
	gin.SetMode(gin.TestMode)

	tweets := &memTweetStore{tweets: make(map[uuid.UUID]*models.Tweet)}
	users := &memUserStore{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Username: "alice"},
	}}
	svc := services.NewTweetService(tweets, users, nopPublisher{}, quietLogger())
	handler := NewTweetHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
	})
	router.POST("/tweets", handler.Create)
	router.DELETE("/tweets/:id", handler.Delete)
	return router, tweets
}

func TestTweetHandlerCreate(t *testing.T) {
	userID := uuid.New()
	router, tweets := newTweetRouter(userID)

	body, _ := json.Marshal(map[string]string{"content": "hello world"})
	req := httptest.NewRequest(http.MethodPost, "/tweets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(tweets.tweets) != 1 {
		t.Fatalf("expected the tweet to be stored")
	}
}

func TestTweetHandlerCreateBindError(t *testing.T) {
	router, _ := newTweetRouter(uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/tweets", bytes.NewReader([]byte(`{"content":""}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTweetHandlerDeleteUnknown(t *testing.T) {
	router, _ := newTweetRouter(uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/tweets/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
