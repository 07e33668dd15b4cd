package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/cache"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/database"
	"github.com/stemsi/stuteach-backend/internal/handler"
	"github.com/stemsi/stuteach-backend/internal/logger"
	"github.com/stemsi/stuteach-backend/internal/repository"
	"github.com/stemsi/stuteach-backend/internal/router"
	"github.com/stemsi/stuteach-backend/internal/service"
	"github.com/stemsi/stuteach-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting StuTeach Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// ─── Initialize Stores ─────────────────────────────────────────────
	var (
		userStore       service.UserStore
		assignmentStore service.AssignmentStore
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		db := repository.NewMemoryDB()
		userStore = repository.NewMemoryUserRepository(db)
		assignmentStore = repository.NewMemoryAssignmentRepository(db)
	default:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		userStore = repository.NewUserRepository(pool)
		assignmentStore = repository.NewAssignmentRepository(pool)
		checks["postgres"] = pool.Ping
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	var assignmentCache cache.AssignmentCache = cache.Nop{}
	if rdb != nil {
		defer rdb.Close()
		assignmentCache, err = newAssignmentCache(ctx, cfg, rdb, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare assignment cache")
		}
		checks["redis"] = redisCheck(rdb)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userStore, rdb)
	userService := service.NewUserService(userStore, authService, log)
	assignmentService := service.NewAssignmentService(assignmentStore, assignmentCache, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService, log),
		Assignment: handler.NewAssignmentHandler(assignmentService, log),
		Health:     handler.NewHealthHandler(checks, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

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

	// Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// newAssignmentCache builds the Redis list cache. Lists cached by a previous
// process describe a memory store that no longer exists, so they are purged
// when the memory driver is in use.
func newAssignmentCache(ctx context.Context, cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (*cache.RedisAssignmentCache, error) {
	c := cache.NewRedisAssignmentCache(rdb, cfg.CacheTTL, log)
	if cfg.StoreDriver == config.StoreDriverMemory {
		if err := c.Purge(ctx); err != nil {
			return nil, err
		}
		log.Info().Msg("Assignment cache purged for in-memory store")
	}
	return c, nil
}

func redisCheck(rdb *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
