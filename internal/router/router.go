package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/handler"
	"github.com/stemsi/stuteach-backend/internal/middleware"
	"github.com/stemsi/stuteach-backend/internal/response"
	"github.com/stemsi/stuteach-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Assignment *handler.AssignmentHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the rate limiter's background sweep.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Health check.
	router.GET("/health", handlers.Health.Health)

	requireAuth := middleware.RequireAuth(authService, log)

	// Rate limiter for auth routes (AUTH_RATE_LIMIT requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", requireAuth, handlers.Auth.Me)
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
	}

	// ─── 2. Assignment Group (JWT) ─────────────────────────────────────
	assignments := router.Group("/api/v1/assignments")
	assignments.Use(requireAuth, middleware.NoStore())
	{
		assignments.GET("", handlers.Assignment.List)
		assignments.GET("/:id", handlers.Assignment.GetByID)

		// Teacher-only mutations; ownership is enforced by the service.
		assignments.POST("", middleware.RequireTeacher(), handlers.Assignment.Create)
		assignments.PUT("/:id", middleware.RequireTeacher(), handlers.Assignment.Update)
		assignments.DELETE("/:id", middleware.RequireTeacher(), handlers.Assignment.Delete)
	}

	return router
}
