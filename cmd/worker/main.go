package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidtube/vidtube/internal/config"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/workers"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting VidTube repair worker...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	contentEventsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ContentEvents, "repair-worker-group")
	defer contentEventsConsumer.Close()

	videoRepo := repository.NewVideoRepository(db.DB)
	tweetRepo := repository.NewTweetRepository(db.DB)

	repairWorker := workers.NewRepairWorker(videoRepo, tweetRepo, contentEventsConsumer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := repairWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Repair worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	if err := repairWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop repair worker")
	}

	logger.Info("Worker exited")
}
