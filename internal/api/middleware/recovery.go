package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	Logger *slog.Logger
	// LogStack adds the goroutine stack to the panic log record.
	LogStack bool
}

// RecoveryMiddleware turns a panic into a 500 envelope and logs it.
func RecoveryMiddleware(config RecoveryConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		attrs := []any{
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
		}
		if config.LogStack {
			attrs = append(attrs, "stack", string(debug.Stack()))
		}
		logger.ErrorContext(c.Request.Context(), "panic recovered", attrs...)

		abortWithError(c, domain.NewInternalError(
			"PANIC_RECOVERED",
			"Panic recovered",
			fmt.Errorf("panic: %v", recovered),
		))
	})
}

// DefaultRecoveryMiddleware logs panics with their stack.
func DefaultRecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return RecoveryMiddleware(RecoveryConfig{Logger: logger, LogStack: true})
}
