package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-order-service/config"
	"chat-order-service/internal/api"
	"chat-order-service/internal/broker"
	"chat-order-service/internal/catalog"
	"chat-order-service/internal/redisclient"
	"chat-order-service/internal/service"
	"chat-order-service/internal/session"
	"chat-order-service/internal/store"
	"chat-order-service/internal/util"
	"chat-order-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting chat order service",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port))

	tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint, cfg.Server.Env, cfg.Observ.TraceSampleRatio)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	sessions := session.NewStore()
	deps := service.ChatDeps{
		Sessions: sessions,
		Orders:   db,
		Replies:  service.NewReplier(cfg.Chat.ReplySeed),
	}

	readiness := []api.HandlerOption{api.WithReadinessCheck("database", db.Ping)}

	// the fence is optional; checkouts stay serialized per session without it
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, running without checkout fence", zap.Error(err))
	} else {
		defer redisClient.Close()
		deps.Fence = redisClient
		readiness = append(readiness, api.WithReadinessCheck("redis", redisClient.Ping))
		logger.Info("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	deps.Notifier = broker.NewEventPublisher(producer)

	catalogCache := catalog.NewCache(db, cfg.Chat.CatalogRefresh)
	deps.Catalog = catalogCache

	chatService, err := service.NewChatService(deps, service.ChatConfig{
		CheckoutTimeout: cfg.Chat.CheckoutTimeout,
		FenceTTL:        cfg.Chat.FenceTTL,
	})
	if err != nil {
		logger.Fatal("Failed to build chat service", zap.Error(err))
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	warmer := worker.NewCatalogWarmer(catalogCache, cfg.Chat.CatalogRefresh)
	go runWorker(workerCtx, "catalog warmer", warmer.Start)

	menuConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicMenu, cfg.Kafka.ConsumerGroup)
	catalogWorker := worker.NewCatalogWorker(menuConsumer, catalogCache)
	go runWorker(workerCtx, "catalog worker", catalogWorker.Start)

	sweeper := worker.NewSessionSweeper(sessions, cfg.Chat.SessionTTL, cfg.Chat.SessionSweep)
	go runWorker(workerCtx, "session sweeper", sweeper.Start)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, every chat is anonymous and checkout is unavailable")
	}

	limiter := api.NewRateLimiter(workerCtx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := gin.New()
	handler := api.NewHandler(chatService, db, []byte(cfg.Auth.JWTSecret),
		append(readiness, api.WithRateLimiter(limiter))...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := catalogWorker.Stop(); err != nil {
		logger.Warn("Error stopping catalog worker", zap.Error(err))
	}

	logger.Info("Server exited")
}

func runWorker(ctx context.Context, name string, start func(context.Context) error) {
	if err := start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		util.GetLogger().Error("Worker stopped", zap.String("worker", name), zap.Error(err))
	}
}
