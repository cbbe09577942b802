package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

// UserHandler handles user directory and self-service requests.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user routes with the router.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	users := router.Group("/users")
	users.Use(authMiddleware.RequireAuth())
	{
		users.GET("", h.ListUsers)
		users.GET("/lookup", h.LookupUser)
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateMe)
		users.DELETE("/me", h.DeleteMe)
	}
}

// ListUsers handles GET /api/users requests.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{
		"users": users,
		"meta":  gin.H{"total": len(users)},
	})
}

// LookupUser handles GET /api/users/lookup?email= requests.
func (h *UserHandler) LookupUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		SanitizedErrorResponse(c, domain.NewValidationError(
			"MISSING_EMAIL", "Query parameter email is required",
			map[string]interface{}{"field": "email"},
		))
		return
	}

	profile, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"user": profile})
}

// GetMe handles GET /api/users/me requests.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), user.UserID)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"user": profile})
}

// UpdateMe handles PUT /api/users/me requests.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	profile, err := h.userService.UpdateSelf(c.Request.Context(), user.UserID, req)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"user": profile})
}

// DeleteMe handles DELETE /api/users/me requests.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteSelf(c.Request.Context(), user.UserID); err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"message": "Account deleted"})
}
