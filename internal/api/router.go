package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Project *ProjectHandler
	Issue   *IssueHandler
	Comment *CommentHandler
	Health  *HealthHandler
}

// RouterConfig configures the middleware chain.
type RouterConfig struct {
	Logger         *slog.Logger
	RateLimiter    *middleware.RateLimitManager
	Version        string
	Environment    string
	AllowedOrigins []string
	// LogFormat "text" selects the single-line access log written to AccessLog;
	// anything else logs requests through Logger.
	LogFormat string
	AccessLog io.Writer
}

// NewRouter builds the engine: global middleware, health routes at the root and the
// resource routes under /api.
func NewRouter(cfg RouterConfig, authMiddleware *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	SetErrorLogger(logger)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	if cfg.LogFormat == "text" && cfg.AccessLog != nil {
		router.Use(middleware.LoggingMiddleware(middleware.LoggingConfig{
			Output:    cfg.AccessLog,
			SkipPaths: middleware.HealthPaths,
		}))
	} else {
		router.Use(middleware.StructuredLoggingMiddleware(logger, middleware.HealthPaths...))
	}
	router.Use(middleware.DefaultRecoveryMiddleware(logger))
	router.Use(middleware.DefaultCORSMiddleware(cfg.AllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"type":    "NOT_FOUND_ERROR",
				"code":    "ROUTE_NOT_FOUND",
				"message": "No route matches " + c.Request.Method + " " + c.Request.URL.Path,
			},
		})
	})

	if h.Health != nil {
		h.Health.RegisterRoutes(router)
	}

	router.GET("/metrics", func(c *gin.Context) {
		metrics := gin.H{
			"timestamp": time.Now().Unix(),
			"system": gin.H{
				"environment": cfg.Environment,
				"version":     cfg.Version,
			},
			"rate_limiting": gin.H{"enabled": false},
		}
		if cfg.RateLimiter != nil {
			metrics["rate_limiting"] = gin.H{
				"enabled":     true,
				"cache_stats": cfg.RateLimiter.Stats(),
			}
		}
		c.JSON(http.StatusOK, metrics)
	})

	apiGroup := router.Group("/api")
	if cfg.RateLimiter != nil {
		// Resolve the caller first so limits are kept per user where possible.
		apiGroup.Use(authMiddleware.OptionalAuth(), cfg.RateLimiter.Middleware())
	}

	apiGroup.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Simple Easy Issues API",
			"version": cfg.Version,
			"status":  "operational",
			"endpoints": gin.H{
				"health":   "/health",
				"ping":     "/ping",
				"auth":     "/api/auth/*",
				"users":    "/api/users/*",
				"projects": "/api/projects/*",
				"issues":   "/api/issues",
				"comments": "/api/comments",
			},
		})
	})

	h.Auth.RegisterRoutes(apiGroup, authMiddleware)
	h.User.RegisterRoutes(apiGroup, authMiddleware)
	h.Project.RegisterRoutes(apiGroup, authMiddleware)
	h.Issue.RegisterRoutes(apiGroup, authMiddleware)
	h.Comment.RegisterRoutes(apiGroup, authMiddleware)

	return router
}
