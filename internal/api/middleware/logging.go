package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingConfig holds configuration for the logging middleware.
type LoggingConfig struct {
	Output     io.Writer
	TimeFormat string
	SkipPaths  []string
}

// HealthPaths are the health check endpoints left out of access logs.
var HealthPaths = []string{"/ping", "/health", "/health/live", "/health/ready"}

// LoggingMiddleware returns gin's access logger with a single-line format that carries
// the request ID.
func LoggingMiddleware(config LoggingConfig) gin.HandlerFunc {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.TimeFormat == "" {
		config.TimeFormat = "2006/01/02 - 15:04:05"
	}

	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			requestID := ""
			if id, ok := param.Keys[string(RequestIDKey)].(string); ok {
				requestID = " | ReqID: " + id
			}

			return fmt.Sprintf("[ISSUES] %v | %3d | %13v | %15s | %-7s %#v%s\n%s",
				param.TimeStamp.Format(config.TimeFormat),
				param.StatusCode,
				param.Latency,
				param.ClientIP,
				param.Method,
				param.Path,
				requestID,
				param.ErrorMessage,
			)
		},
		Output:    config.Output,
		SkipPaths: config.SkipPaths,
	})
}

// StructuredLoggingMiddleware logs one slog record per request. Server errors log at
// error level, client errors at warn.
func StructuredLoggingMiddleware(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if slices.Contains(skipPaths, path) {
			return
		}

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}
		if user, ok := GetUserFromContext(c); ok {
			attrs = append(attrs, "user_id", user.UserID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "request", attrs...)
		case status >= 400:
			logger.WarnContext(ctx, "request", attrs...)
		default:
			logger.InfoContext(ctx, "request", attrs...)
		}
	}
}
