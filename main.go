package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/medihack/competency-service/internal/auth"
	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/config"
	"github.com/medihack/competency-service/internal/events"
	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/handlers"
	"github.com/medihack/competency-service/internal/metrics"
	"github.com/medihack/competency-service/internal/repositories/postgres"
	"github.com/medihack/competency-service/internal/services"
	"github.com/medihack/competency-service/internal/utils"
	"github.com/medihack/competency-service/internal/validator"
	"github.com/medihack/competency-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := utils.NewJSONLogger(cfg)
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	publisher, err := events.NewPublisher(cfg.Events.Brokers(), cfg.Events.Topic, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	gw, err := newGateway(cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize generative gateway: %v", err)
	}

	metrics.Init()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	cacheManager := cache.NewCacheManager(redisClient)

	serviceManager := services.NewServiceManager(repoManager.GetRepository(), slogLogger, validator.New(), services.ServiceManagerConfig{
		Auth:      cfg.Auth,
		Tokens:    tokens,
		Gateway:   gw,
		Cache:     cacheManager,
		Publisher: publisher,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.AllowedOrigins())

	handlerManager := handlers.NewHandlerManager(serviceManager, tokens, cacheManager, cfg.RateLimit, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	handlerManager.Close()

	// Closes the publisher, the database and redis
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	logger.Info("Server exited")
}

func newGateway(cfg *config.Config, logger *slog.Logger) (*gateway.Gateway, error) {
	provider, err := gateway.NewGeminiProvider(context.Background(), gateway.GeminiConfig{
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		TTSModel: cfg.AI.TTSModel,
	})
	if err != nil {
		return nil, err
	}
	return gateway.New(provider, provider, logger, cfg.AI.Timeout), nil
}
