package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/product-comparison-api/internal/api"
	"github.com/product-comparison-api/internal/config"
	"github.com/product-comparison-api/internal/database"
	"github.com/product-comparison-api/internal/generator"
	"github.com/product-comparison-api/internal/ratelimit"
	"github.com/product-comparison-api/internal/repository"
	"github.com/product-comparison-api/internal/service"
	"github.com/product-comparison-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Load .env if present (local development)
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting comparison API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize rate limiters (Redis-backed when configured, otherwise
	// process-local)
	limiters := newLimiters(cfg, log)

	// Initialize generator client
	gen := generator.NewClient(&cfg.Generator, log)

	// Initialize services
	services := service.NewServices(repos, gen, limiters, cfg, log)

	// Ensure the bootstrap admin account exists
	if err := services.Auth.EnsureAdmin(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

func newLimiters(cfg *config.Config, log zerolog.Logger) service.Limiters {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("Using in-memory rate limiters")
		return service.Limiters{
			Submit: ratelimit.NewMemoryLimiter(cfg.RateLimit.SubmitLimit, cfg.RateLimit.Window),
			Login:  ratelimit.NewMemoryLimiter(cfg.RateLimit.LoginLimit, cfg.RateLimit.Window),
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis rate limiters")
	return service.Limiters{
		Submit: ratelimit.NewRedisLimiter(client, "ratelimit:submit", cfg.RateLimit.SubmitLimit, cfg.RateLimit.Window),
		Login:  ratelimit.NewRedisLimiter(client, "ratelimit:login", cfg.RateLimit.LoginLimit, cfg.RateLimit.Window),
	}
}
