package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

const maxTweetLength = 500

type TweetService struct {
	tweets   TweetStore
	users    UserStore
	producer EventPublisher
	logger   *logger.Logger
}

func NewTweetService(tweets TweetStore, users UserStore, producer EventPublisher, logger *logger.Logger) *TweetService {
	return &TweetService{tweets: tweets, users: users, producer: producer, logger: logger}
}

type CreateTweetRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type UpdateTweetRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

func (s *TweetService) Create(ctx context.Context, ownerID string, req *CreateTweetRequest) (*models.Tweet, error) {
	owner, err := parseID("user id", ownerID)
	if err != nil {
		return nil, err
	}
	if err := validateTweetContent(req.Content); err != nil {
		return nil, err
	}

	tweet := &models.Tweet{
		Content: req.Content,
		OwnerID: owner,
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventTweetCreated, tweet)
	s.logger.WithField("tweet_id", tweet.ID).Info("Tweet created")
	return tweet, nil
}

func (s *TweetService) Get(ctx context.Context, tweetID string) (*models.Tweet, error) {
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
	return tweet, nil
}

// ListByUser returns a user's tweets newest first; an unknown user is an
// error while a user with no tweets is an empty list.
func (s *TweetService) ListByUser(ctx context.Context, userID string) ([]*models.Tweet, error) {
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}

	tweets, err := s.tweets.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if tweets == nil {
		tweets = []*models.Tweet{}
	}
	return tweets, nil
}

func (s *TweetService) Update(ctx context.Context, tweetID, userID string, req *UpdateTweetRequest) (*models.Tweet, error) {
	tweet, err := s.getOwned(ctx, tweetID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateTweetContent(req.Content); err != nil {
		return nil, err
	}

	tweet.Content = req.Content
	if err := s.tweets.Update(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// Delete removes the tweet and every comment and like hanging off it, then
// emits a deletion event for the repair worker.
func (s *TweetService) Delete(ctx context.Context, tweetID, userID string) error {
	tweet, err := s.getOwned(ctx, tweetID, userID)
	if err != nil {
		return err
	}

	if err := s.tweets.DeleteCascading(ctx, tweet.ID); err != nil {
		return err
	}

	s.publishEvent(ctx, queue.EventTweetDeleted, tweet)
	s.logger.WithField("tweet_id", tweet.ID).Info("Tweet deleted")
	return nil
}

func (s *TweetService) getOwned(ctx context.Context, tweetID, userID string) (*models.Tweet, error) {
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	tweet, err := s.Get(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet.OwnerID != owner {
		return nil, fmt.Errorf("tweet belongs to another user: %w", apperr.ErrForbidden)
	}
	return tweet, nil
}

func (s *TweetService) publishEvent(ctx context.Context, eventType queue.EventType, tweet *models.Tweet) {
	event, err := queue.NewEvent(eventType, queue.TweetEventData{
		TweetID: tweet.ID.String(),
		OwnerID: tweet.OwnerID.String(),
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to build tweet event")
		return
	}
	if err := s.producer.Publish(ctx, tweet.ID.String(), event); err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Error("Failed to publish tweet event")
	}
}

func validateTweetContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("content is required: %w", apperr.ErrValidation)
	}
	if len(content) > maxTweetLength {
		return fmt.Errorf("content exceeds %d characters: %w", maxTweetLength, apperr.ErrValidation)
	}
	return nil
}
