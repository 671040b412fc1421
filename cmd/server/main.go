package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/flowtrack/flowtrack-api/internal/config"
	"github.com/flowtrack/flowtrack-api/internal/database"
	"github.com/flowtrack/flowtrack-api/internal/handlers"
	"github.com/flowtrack/flowtrack-api/internal/logger"
	"github.com/flowtrack/flowtrack-api/internal/ratelimit"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/security"
	"github.com/flowtrack/flowtrack-api/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Login rate limiting is backed by Redis when configured
	var loginLimiter ratelimit.Limiter = ratelimit.NewNoopLimiter()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
		}
		cancel()

		loginLimiter = ratelimit.NewRedisLimiter(client, "login", cfg.LoginRateLimit, cfg.LoginRateWindow)
	} else {
		log.Info().Msg("REDIS_ADDR not set, login rate limiting disabled")
	}

	tokens, err := security.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.Algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid JWT configuration")
	}

	// Initialize AI service
	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Info().Msg("OPENAI_API_KEY not set, task drafting disabled")
	}

	store := repository.NewStore(db)
	router := handlers.NewRouter(handlers.Dependencies{
		Store:        store,
		AuthService:  services.NewAuthService(store.Users(), tokens, cfg.JWT.TokenTTL()),
		UserService:  services.NewUserService(store.Users()),
		TaskService:  services.NewTaskService(store, drafter),
		LoginLimiter: loginLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
