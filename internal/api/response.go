// Package api provides the HTTP handlers of the issue tracker.
//
// Error Handling:
// Handlers report failures through SanitizedErrorResponse, which logs the full error
// with a correlation ID and writes a client-safe envelope.
//
// Usage:
//
//	api.SanitizedErrorResponse(c, err)
package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

var (
	sanitizerMu      sync.RWMutex
	defaultSanitizer = NewErrorSanitizer(nil)
)

// SetErrorLogger replaces the logger used by SanitizedErrorResponse.
func SetErrorLogger(logger *slog.Logger) {
	sanitizerMu.Lock()
	defer sanitizerMu.Unlock()
	defaultSanitizer = NewErrorSanitizer(logger)
}

// SanitizedErrorResponse handles errors with security-focused sanitization and structured logging
func SanitizedErrorResponse(c *gin.Context, err error) {
	sanitizerMu.RLock()
	sanitizer := defaultSanitizer
	sanitizerMu.RUnlock()
	sanitizer.SanitizedErrorResponse(c, err)
}

// SuccessResponse returns a standardized success response.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse returns a standardized created response.
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// currentUser returns the authenticated user, writing a 401 when there is none.
func currentUser(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		SanitizedErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return nil, false
	}
	return user, true
}
