package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

// RepairWorker consumes content deletion events and re-runs the reference
// cleanup for the deleted row. The deletion cascade already ran inside a
// transaction; this pass exists for rows written by racing requests that
// observed the video or tweet just before it went away. Cleanup is
// idempotent, so reprocessing an event is harmless.
type RepairWorker struct {
	videoRepo *repository.VideoRepository
	tweetRepo *repository.TweetRepository
	consumer  *queue.KafkaConsumer
	logger    *logger.Logger
}

func NewRepairWorker(
	videoRepo *repository.VideoRepository,
	tweetRepo *repository.TweetRepository,
	consumer *queue.KafkaConsumer,
	logger *logger.Logger,
) *RepairWorker {
	return &RepairWorker{
		videoRepo: videoRepo,
		tweetRepo: tweetRepo,
		consumer:  consumer,
		logger:    logger,
	}
}

func (w *RepairWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting repair worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		var event queue.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		w.logger.WithFields(map[string]interface{}{
			"event_type": event.Type,
			"timestamp":  event.Timestamp,
		}).Info("Processing event")

		switch event.Type {
		case queue.EventVideoDeleted:
			return w.handleVideoDeleted(ctx, event)
		case queue.EventTweetDeleted:
			return w.handleTweetDeleted(ctx, event)
		case queue.EventVideoPublished, queue.EventTweetCreated,
			queue.EventCommentDeleted, queue.EventUserRegistered:
			// nothing to repair for these
			return nil
		default:
			w.logger.WithField("event_type", event.Type).Warn("Unknown event type")
			return nil
		}
	})
}

func (w *RepairWorker) handleVideoDeleted(ctx context.Context, event queue.Event) error {
	var data queue.VideoEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid video deleted event data: %w", err)
	}

	videoID, err := uuid.Parse(data.VideoID)
	if err != nil {
		return fmt.Errorf("invalid video ID: %w", err)
	}

	if err := w.videoRepo.CleanupRefs(ctx, videoID); err != nil {
		return fmt.Errorf("failed to clean up video references: %w", err)
	}

	w.logger.WithField("video_id", data.VideoID).Info("Video references repaired")
	return nil
}

func (w *RepairWorker) handleTweetDeleted(ctx context.Context, event queue.Event) error {
	var data queue.TweetEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid tweet deleted event data: %w", err)
	}

	tweetID, err := uuid.Parse(data.TweetID)
	if err != nil {
		return fmt.Errorf("invalid tweet ID: %w", err)
	}

	if err := w.tweetRepo.CleanupRefs(ctx, tweetID); err != nil {
		return fmt.Errorf("failed to clean up tweet references: %w", err)
	}

	w.logger.WithField("tweet_id", data.TweetID).Info("Tweet references repaired")
	return nil
}

func (w *RepairWorker) Stop() error {
	w.logger.Info("Stopping repair worker...")
	return w.consumer.Close()
}
