package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// ErrorSanitizer provides safe error handling that prevents information disclosure
type ErrorSanitizer struct {
	logger *slog.Logger
}

// NewErrorSanitizer creates a new error sanitizer with structured logging
func NewErrorSanitizer(logger *slog.Logger) *ErrorSanitizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorSanitizer{logger: logger}
}

// SanitizedErrorResponse logs err in full with a correlation ID and writes the client-safe
// envelope for it.
func (s *ErrorSanitizer) SanitizedErrorResponse(c *gin.Context, err error) {
	correlationID := s.getOrCreateCorrelationID(c)

	var domainErr *domain.Error
	errors.As(err, &domainErr)

	s.logError(c, err, correlationID, domainErr)

	statusCode, response := s.sanitizeErrorForClient(domainErr, correlationID)
	c.AbortWithStatusJSON(statusCode, response)
}

// getOrCreateCorrelationID gets existing correlation ID from context or creates new one
func (s *ErrorSanitizer) getOrCreateCorrelationID(c *gin.Context) string {
	if id, ok := c.Get("correlation_id"); ok {
		if strID, ok := id.(string); ok && strID != "" {
			return strID
		}
	}

	if id := c.GetHeader("X-Correlation-ID"); id != "" {
		c.Set("correlation_id", id)
		return id
	}

	correlationID := uuid.New().String()
	c.Set("correlation_id", correlationID)
	c.Header("X-Correlation-ID", correlationID)
	return correlationID
}

// logError logs detailed error information server-side. Expected client errors log at
// warn, everything else at error.
func (s *ErrorSanitizer) logError(c *gin.Context, err error, correlationID string, domainErr *domain.Error) {
	attrs := []any{
		"correlation_id", correlationID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
	}

	if user, ok := c.Get("user"); ok {
		if u, ok := user.(*domain.User); ok {
			attrs = append(attrs, "user_id", u.UserID)
		}
	}

	ctx := c.Request.Context()
	if domainErr == nil {
		attrs = append(attrs, "error", err.Error())
		s.logger.ErrorContext(ctx, "Unexpected system error occurred", attrs...)
		return
	}

	attrs = append(attrs,
		"error_type", string(domainErr.Type),
		"error_code", domainErr.Code,
		"error_message", domainErr.Message,
	)
	if domainErr.Cause != nil {
		attrs = append(attrs, "underlying_error", domainErr.Cause.Error())
	}
	for key, value := range domainErr.Details {
		if !isSensitiveField(key) {
			attrs = append(attrs, "detail_"+key, value)
		}
	}

	if domain.StatusCode(domainErr) >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx, "Domain error occurred", attrs...)
	} else {
		s.logger.WarnContext(ctx, "Domain error occurred", attrs...)
	}
}

// sanitizeErrorForClient returns safe error response for client consumption
func (s *ErrorSanitizer) sanitizeErrorForClient(domainErr *domain.Error, correlationID string) (int, gin.H) {
	if domainErr == nil {
		return http.StatusInternalServerError, gin.H{
			"success":        false,
			"correlation_id": correlationID,
			"error": gin.H{
				"type":    string(domain.InternalError),
				"code":    "SYSTEM_ERROR",
				"message": "An unexpected error occurred. Please try again later.",
			},
		}
	}

	body := gin.H{
		"type": string(domainErr.Type),
		"code": domainErr.Code,
	}

	switch domainErr.Type {
	case domain.ValidationError:
		body["message"] = domainErr.Message
		if field, ok := domainErr.Details["field"]; ok {
			body["field"] = field
		}
	case domain.NotFoundError:
		body["message"] = domainErr.Message
		if len(domainErr.Details) > 0 {
			body["details"] = domainErr.Details
		}
	case domain.ConflictError:
		body["message"] = domainErr.Message
	case domain.AuthenticationError:
		body["message"] = "Authentication failed"
	case domain.AuthorizationError:
		body["message"] = "Access denied"
	case domain.StoreUnavailableError:
		body["message"] = "Storage temporarily unavailable"
	default:
		body["message"] = "An error occurred while processing your request"
	}

	return domain.StatusCode(domainErr), gin.H{
		"success":        false,
		"correlation_id": correlationID,
		"error":          body,
	}
}

// isSensitiveField checks if a field contains sensitive information that shouldn't be logged
func isSensitiveField(field string) bool {
	sensitiveFields := map[string]bool{
		"password":      true,
		"passwordHash":  true,
		"token":         true,
		"secret":        true,
		"authorization": true,
		"cookie":        true,
		"access_token":  true,
		"refresh_token": true,
		"jwt":           true,
	}
	return sensitiveFields[field]
}
