package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/snapgram/backend/internal/handlers"
	"github.com/anonto42/snapgram/backend/internal/router"
	"github.com/anonto42/snapgram/backend/internal/validators"
	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/anonto42/snapgram/backend/pkg/logger"
	"github.com/anonto42/snapgram/backend/pkg/metrics"
	"github.com/anonto42/snapgram/backend/pkg/redis"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Env)
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Error("Failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("Redis unavailable, rate limiting disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	m := metrics.New()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error("Failed to initialize object storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	store = storage.Observe(store, m.ObserveStorage)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log)

	// Setup global middleware
	config.SetupMiddleware(e, cfg, log)
	e.Use(m.Middleware())

	// Setup routes and dependencies
	if err := router.SetupRoutes(ctx, e, router.Deps{
		Config:  cfg,
		DB:      db,
		Store:   store,
		Redis:   redisClient,
		Metrics: m,
		Log:     log,
	}); err != nil {
		log.Error("Failed to set up routes", "error", err)
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsEnabled() {
		metricsServer = m.NewServer(cfg.MetricsPort)
		go func() {
			log.Info("Metrics server listening", "port", cfg.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server stopped", "error", err)
			}
		}()
	}

	// Start server
	go func() {
		log.Info("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown failed", "error", err)
		}
	}
}
