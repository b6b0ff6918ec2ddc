package main

import (
	"context"
	"fmt"
	"log"

	"pocketchat/config"
	"pocketchat/internal/handler"
	"pocketchat/internal/middleware"
	"pocketchat/internal/redis"
	"pocketchat/internal/repository"
	"pocketchat/internal/services"
	"pocketchat/internal/storage"
	"pocketchat/internal/websocket"
	"pocketchat/pkg/database"
	"pocketchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := logger.New(mode)
	logger.SetGlobalLogger(appLogger)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cache := redis.NewCacheStore(redisClient, redis.DefaultCacheConfig())
	typing := redis.NewTypingStore(redisClient, cfg.TypingTTL)
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	publisher := redis.NewPublisher(redisClient)
	subscriber := redis.NewSubscriber(redisClient)

	var objectStore services.ObjectStore
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("Failed to initialize s3 client: %v", err)
		}
		objectStore = s3Client
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, cache)
	chatService := services.NewChatService(db, chatRepo, userRepo, messageRepo, mediaRepo, objectStore, appLogger)
	messageService := services.NewMessageService(db, messageRepo, chatRepo, userRepo, mediaRepo, publisher, objectStore, appLogger)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	bridge := websocket.NewRedisBridge(subscriber, hub)
	go func() {
		if err := bridge.Run(ctx, []string{"chat:*"}); err != nil && ctx.Err() == nil {
			appLogger.Errorf("redis bridge stopped: %v", err)
		}
	}()

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	chatHandler := handler.NewChatHandler(chatService, typing)
	messageHandler := handler.NewMessageHandler(messageService)
	wsHandler := websocket.NewHandler(authService, hub)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(appLogger))
	r.Use(middleware.ErrorHandler(appLogger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/auth/token", middleware.AuthRateLimitMiddleware(limiter), authHandler.Token)
	r.GET("/ws", wsHandler.Connect)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	{
		api.POST("/users", userHandler.Create)
		api.GET("/users/search", userHandler.Search)
		api.GET("/users/:userId", userHandler.Get)
		api.PATCH("/users/:userId", userHandler.Update)

		api.POST("/chats", chatHandler.Create)
		api.POST("/chats/get-or-create", chatHandler.GetOrCreate)
		api.GET("/chats", chatHandler.List)
		api.DELETE("/chats/:chatId", chatHandler.Delete)
		api.POST("/chats/:chatId/participants", chatHandler.AddParticipant)
		api.POST("/chats/:chatId/typing", chatHandler.SetTyping)
		api.GET("/chats/:chatId/typing", chatHandler.GetTyping)

		api.POST("/messages", middleware.MessageRateLimitMiddleware(limiter), messageHandler.Send)
		api.GET("/messages", messageHandler.List)
		api.GET("/messages/recent", messageHandler.Recent)
		api.DELETE("/messages/:messageId", messageHandler.Delete)
	}

	appLogger.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
