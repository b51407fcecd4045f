package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anonto42/snapgram/backend/internal/handlers"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/anonto42/snapgram/backend/pkg/metrics"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Deps are the process-wide clients the routes are built on
type Deps struct {
	Config  *config.Config
	DB      *config.DB
	Store   storage.ObjectStore
	Redis   *redis.Client    // nil disables rate limiting
	Metrics *metrics.Metrics // nil disables toggle metrics
	Log     *slog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(ctx context.Context, e *echo.Echo, d Deps) error {
	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(d.DB.Database)
	postRepo := repositories.NewMongoPostRepository(d.DB.Database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	tx := repositories.NewMongoTransactor(d.DB.Mongo, d.Config.MongoTransactions)

	var notificationService *services.NotificationService
	var notifier services.Notifier
	if d.DB.Postgres != nil {
		notificationRepo := repositories.NewPostgresNotificationRepository(d.DB.Postgres)
		if err := notificationRepo.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to auto migrate notifications: %w", err)
		}
		d.Log.Info("PostgreSQL auto-migrations completed.")
		notificationService = services.NewNotificationService(notificationRepo, userRepo)
		notifier = notificationService
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, services.AuthConfig{
		Secret: d.Config.JWTSecret,
		TTL:    d.Config.SessionTTL(),
		Secure: !d.Config.IsDevelopment(),
	}, d.Log)
	postService := services.NewPostService(postRepo, userRepo, d.Store, tx, d.Log)
	graphService := services.NewGraphService(postRepo, userRepo, tx, notifier, d.Metrics, d.Log)
	userService := services.NewUserService(userRepo, d.Store, d.Log)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck(func(ctx context.Context) error {
		return d.DB.Mongo.Ping(ctx, readpref.Primary())
	}))

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterAuthRoutes(authGroup, middleware.RateLimitMiddleware(d.Redis, d.Config.RateLimit, d.Config.RateLimitWindow, d.Log))
	d.Log.Debug("Auth routes configured.", "rate_limited", d.Redis != nil)

	// --- Protected routes (require the session cookie) ---
	requireAuth := middleware.JWTAuthMiddleware(authService, userRepo)

	posts := e.Group("/api/posts", requireAuth)
	handlers.NewPostHandler(postService).RegisterPostRoutes(posts)
	handlers.NewFeedHandler(postService).RegisterFeedRoutes(posts)
	handlers.NewLikeHandler(graphService, postService).RegisterLikeRoutes(posts)
	handlers.NewSavedPostHandler(graphService, postService).RegisterSavedPostRoutes(posts)
	d.Log.Debug("Post routes configured.")

	users := e.Group("/api/user", requireAuth)
	handlers.NewUserHandler(userService).RegisterUserRoutes(users)
	handlers.NewFollowHandler(graphService).RegisterFollowRoutes(users)
	d.Log.Debug("User routes configured.")

	if notificationService != nil {
		notifications := e.Group("/api/notifications", requireAuth)
		handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(notifications)
		d.Log.Debug("Notification routes configured.")
	}

	d.Log.Info("All routes configured.")
	return nil
}
