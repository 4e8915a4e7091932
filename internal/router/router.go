package router

import (
	"net/http"

	"contactdesk/internal/common"
	"contactdesk/internal/config"
	"contactdesk/internal/domain/admin"
	"contactdesk/internal/domain/inquiry"
	"contactdesk/internal/domain/notification"
	"contactdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// New creates and configures the Gin router with all middleware and routes.
func New(
	cfg *config.Config,
	rateLimiter *middleware.RateLimiter,
	sessions middleware.SessionAuthenticator,
	inquiryHandler *inquiry.Handler,
	adminHandler *admin.Handler,
	notificationHandler *notification.Handler,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// Global middleware stack (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	r.GET("/health", healthCheck)

	// Public routes are rate limited per client IP
	public := r.Group("/api")
	public.Use(rateLimiter.Middleware())

	// Admin routes require a signed-in session
	protected := r.Group("/api")
	protected.Use(middleware.RequireSession(sessions, cfg.Session.CookieName))

	inquiryHandler.RegisterRoutes(public, protected)
	adminHandler.RegisterRoutes(public, protected)
	notificationHandler.RegisterRoutes(protected)

	return r
}

// healthCheck handles GET /health
func healthCheck(c *gin.Context) {
	common.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "contactdesk",
	})
}
