package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
)

type SubscriptionService struct {
	subs   SubscriptionStore
	users  UserStore
	logger *logger.Logger
}

func NewSubscriptionService(subs SubscriptionStore, users UserStore, logger *logger.Logger) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, logger: logger}
}

type SubscriptionState struct {
	Subscribed      bool  `json:"subscribed"`
	SubscriberCount int64 `json:"subscriber_count"`
}

type SubscriberPage struct {
	Items    []*models.Subscription `json:"items"`
	PageInfo PageInfo               `json:"page_info"`
}

// Toggle subscribes the caller to the channel, or unsubscribes when the
// unique (subscriber, channel) index reports the edge already exists.
// Subscribing to yourself is rejected.
func (s *SubscriptionService) Toggle(ctx context.Context, channelID, userID string) (*SubscriptionState, error) {
	channel, err := parseID("channel id", channelID)
	if err != nil {
		return nil, err
	}
	subscriber, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	if channel == subscriber {
		return nil, fmt.Errorf("cannot subscribe to your own channel: %w", apperr.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("channel %s: %w", channelID, apperr.ErrNotFound)
	}

	subscribed := true
	sub := &models.Subscription{SubscriberID: subscriber, ChannelID: channel}
	if err := s.subs.Create(ctx, sub); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		if err := s.subs.Delete(ctx, subscriber, channel); err != nil {
			return nil, err
		}
		subscribed = false
	}

	count, err := s.subs.CountSubscribers(ctx, channel)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"subscriber_id": userID,
		"channel_id":    channelID,
		"subscribed":    subscribed,
	}).Info("Subscription toggled")
	return &SubscriptionState{Subscribed: subscribed, SubscriberCount: count}, nil
}

// Subscribers lists the users subscribed to a channel.
func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string, page PageRequest) (*SubscriberPage, error) {
	channel, err := parseID("channel id", channelID)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	total, err := s.subs.CountSubscribers(ctx, channel)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.ListSubscribers(ctx, channel, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	return &SubscriberPage{Items: subs, PageInfo: NewPageInfo(page, total)}, nil
}

// Subscribed lists the channels a user is subscribed to.
func (s *SubscriptionService) Subscribed(ctx context.Context, userID string, page PageRequest) (*SubscriberPage, error) {
	subscriber, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	total, err := s.subs.CountSubscribed(ctx, subscriber)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.ListSubscribed(ctx, subscriber, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	return &SubscriberPage{Items: subs, PageInfo: NewPageInfo(page, total)}, nil
}
