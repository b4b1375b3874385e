package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/database"
	"github.com/eventhub/eventhub-backend/internal/handler"
	"github.com/eventhub/eventhub-backend/internal/logger"
	"github.com/eventhub/eventhub-backend/internal/middleware"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/eventhub/eventhub-backend/internal/router"
	"github.com/eventhub/eventhub-backend/internal/service"
	"github.com/eventhub/eventhub-backend/internal/validator"
	"github.com/eventhub/eventhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("event_timezone", cfg.EventLocation.String()).
		Dur("token_ttl", cfg.TokenTTL).
		Msg("Starting EventHub Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(
		adminRepo, userRepo,
		service.NewPasswordHasher(cfg.BcryptCost),
		tokenService,
		service.NewRedisRevocationStore(rdb),
		log,
	)
	mediaService := service.NewMediaService(cfg.MaxUploadBytes)
	eventService := service.NewEventService(
		eventRepo, adminRepo, userRepo,
		service.NewRedisTrendingCache(rdb, cfg.TrendingCacheTTL),
		mediaService,
		cfg.EventLocation,
		log,
	)
	eventService.EnforceMinAge(cfg.EnforceMinAge)
	attendanceFeed := service.NewRedisAttendanceFeed(rdb, log)
	eventService.SetAttendanceFeed(attendanceFeed)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Admin: handler.NewAdminHandler(authService, service.NewAdminService(adminRepo, eventRepo), log),
		User:  handler.NewUserHandler(authService, service.NewUserService(userRepo, eventRepo), log),
		Event: handler.NewEventHandler(eventService, mediaService, log),
		WS:    handler.NewWSHandler(eventService, attendanceFeed, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(log,
			handler.HealthCheck{Name: "postgres", Ping: pool.Ping},
			handler.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		),
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	if _, err := eventService.RefreshTrending(ctx); err != nil {
		log.Warn().Err(err).Msg("Trending cache prewarm failed")
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	trendingWorker := worker.NewTrendingWorker(eventService, worker.NewRedisLocker(rdb), cfg.TrendingRefreshInterval, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		trendingWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewFallbackLimiter(
		middleware.NewRedisLimiter(rdb, cfg.AuthRateLimit, time.Minute),
		middleware.NewMemoryLimiter(cfg.AuthRateLimit, time.Minute),
		log,
	)
	r := router.SetupRouter(authService, limiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}
