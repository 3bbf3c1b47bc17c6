package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/vidtube/internal/config"
	"github.com/vidtube/vidtube/internal/handlers"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/services"
	"github.com/vidtube/vidtube/internal/storage"
	"github.com/vidtube/vidtube/pkg/cache"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting VidTube API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	contentEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ContentEvents)
	defer contentEventsProducer.Close()

	mediaStore, err := storage.NewMediaStore(&cfg.Media)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to media store")
	}
	if err := mediaStore.EnsureBucket(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to prepare media bucket")
	}

	userRepo := repository.NewUserRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	tweetRepo := repository.NewTweetRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(db.DB)
	playlistRepo := repository.NewPlaylistRepository(db.DB)
	watchHistoryRepo := repository.NewWatchHistoryRepository(db.DB)

	userService := services.NewUserService(userRepo, subscriptionRepo, watchHistoryRepo, mediaStore, contentEventsProducer, cfg.JWT, logger)
	videoService := services.NewVideoService(videoRepo, userRepo, watchHistoryRepo, mediaStore, contentEventsProducer, logger)
	tweetService := services.NewTweetService(tweetRepo, userRepo, contentEventsProducer, logger)
	commentService := services.NewCommentService(commentRepo, videoRepo, tweetRepo, contentEventsProducer, logger)
	likeService := services.NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, logger)
	playlistService := services.NewPlaylistService(playlistRepo, videoRepo, logger)
	dashboardService := services.NewDashboardService(userRepo, videoRepo, subscriptionRepo, likeRepo, redisClient, logger)

	userHandler := handlers.NewUserHandler(userService)
	videoHandler := handlers.NewVideoHandler(videoService)
	tweetHandler := handlers.NewTweetHandler(tweetService)
	commentHandler := handlers.NewCommentHandler(commentService)
	likeHandler := handlers.NewLikeHandler(likeService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	playlistHandler := handlers.NewPlaylistHandler(playlistService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh-token", userHandler.Refresh)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(&middleware.JWTConfig{Secret: cfg.JWT.AccessSecret}))
		{
			protected.POST("/users/logout", userHandler.Logout)
			protected.GET("/users/me", userHandler.CurrentUser)
			protected.PATCH("/users/me", userHandler.UpdateProfile)
			protected.POST("/users/change-password", userHandler.ChangePassword)
			protected.PATCH("/users/avatar", userHandler.UpdateAvatar)
			protected.PATCH("/users/cover-image", userHandler.UpdateCoverImage)
			protected.GET("/users/history", userHandler.WatchHistory)
			protected.GET("/channels/:username", userHandler.GetChannelProfile)

			protected.POST("/videos", videoHandler.Publish)
			protected.GET("/videos", videoHandler.List)
			protected.GET("/videos/mine", videoHandler.ChannelVideos)
			protected.GET("/videos/:id", videoHandler.Get)
			protected.PATCH("/videos/:id", videoHandler.Update)
			protected.PATCH("/videos/:id/toggle-publish", videoHandler.TogglePublish)
			protected.DELETE("/videos/:id", videoHandler.Delete)

			protected.POST("/tweets", tweetHandler.Create)
			protected.GET("/tweets/user/:userId", tweetHandler.ListByUser)
			protected.PATCH("/tweets/:id", tweetHandler.Update)
			protected.DELETE("/tweets/:id", tweetHandler.Delete)

			protected.POST("/comments/video/:videoId", commentHandler.AddToVideo)
			protected.GET("/comments/video/:videoId", commentHandler.ListForVideo)
			protected.POST("/comments/tweet/:tweetId", commentHandler.AddToTweet)
			protected.GET("/comments/tweet/:tweetId", commentHandler.ListForTweet)
			protected.PATCH("/comments/:id", commentHandler.Update)
			protected.DELETE("/comments/:id", commentHandler.Delete)

			protected.POST("/likes/video/:videoId", likeHandler.ToggleVideo)
			protected.POST("/likes/comment/:commentId", likeHandler.ToggleComment)
			protected.POST("/likes/tweet/:tweetId", likeHandler.ToggleTweet)
			protected.GET("/likes/videos", likeHandler.LikedVideos)

			protected.POST("/subscriptions/:channelId", subscriptionHandler.Toggle)
			protected.GET("/subscriptions/:channelId/subscribers", subscriptionHandler.Subscribers)
			protected.GET("/subscriptions/subscribed", subscriptionHandler.Subscribed)

			protected.POST("/playlists", playlistHandler.Create)
			protected.GET("/playlists/:id", playlistHandler.Get)
			protected.GET("/playlists/user/:userId", playlistHandler.ListByUser)
			protected.PATCH("/playlists/:id", playlistHandler.Update)
			protected.DELETE("/playlists/:id", playlistHandler.Delete)
			protected.POST("/playlists/:id/videos/:videoId", playlistHandler.AddVideo)
			protected.DELETE("/playlists/:id/videos/:videoId", playlistHandler.RemoveVideo)

			protected.GET("/dashboard/stats", dashboardHandler.ChannelStats)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	dirs := []string{"logs", "configs"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Failed to create directory %s: %v", dir, err)
		}
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "vidtube"
  password: "vidtube"
  dbname: "vidtube"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    content_events: "content-events"

jwt:
  access_secret: "change-me-access"
  refresh_secret: "change-me-refresh"
  access_ttl: 15m
  refresh_ttl: 168h

media:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "vidtube-media"
  public_url: "http://localhost:9000"
  use_ssl: false`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
