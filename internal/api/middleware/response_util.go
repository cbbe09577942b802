// Package middleware provides HTTP middleware functions.
package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// abortWithError writes the error envelope for err and stops the chain. Only the type
// and code of a domain error reach the client; internal errors get a generic message.
func abortWithError(c *gin.Context, err error) {
	body := gin.H{
		"type":    string(domain.InternalError),
		"code":    "MIDDLEWARE_ERROR",
		"message": "An error occurred processing your request",
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		body["type"] = string(domainErr.Type)
		body["code"] = domainErr.Code
		if domainErr.Type != domain.InternalError {
			body["message"] = domainErr.Message
		}
	}

	if requestID := GetRequestID(c); requestID != "" {
		body["request_id"] = requestID
	}

	c.AbortWithStatusJSON(domain.StatusCode(err), gin.H{
		"success": false,
		"error":   body,
	})
}
