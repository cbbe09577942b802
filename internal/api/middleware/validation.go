package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds the request body into target and runs its binding tags. On failure it
// writes a 400 with the offending fields and returns false.
func BindJSON[T any](c *gin.Context, target *T) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}

	body := gin.H{
		"type":    "VALIDATION_ERROR",
		"code":    "INVALID_REQUEST",
		"message": "Invalid request format",
	}

	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, io.EOF):
		body["code"] = "EMPTY_BODY"
		body["message"] = "Request body is required"
	case errors.As(err, &fieldErrs):
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		body["fields"] = fields
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   body,
	})
	return false
}
