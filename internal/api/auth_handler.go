package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

// RefreshTokenCookie carries the refresh token for browser clients.
const RefreshTokenCookie = "refresh_token"

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(
	userService services.UserService,
	authService services.AuthService,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		refreshTTL:  refreshTTL,
	}
}

// RegisterRoutes registers authentication routes with the router.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", authMiddleware.RequireAuth(), h.Logout)
		auth.GET("/me", authMiddleware.RequireAuth(), h.GetProfile)
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterUserRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	profile, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	CreatedResponse(c, gin.H{"user": profile})
}

// Login handles user login requests.
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	h.setAuthCookies(c, result.Tokens)
	SuccessResponse(c, result)
}

// RefreshToken handles token refresh requests. The token comes from the body or,
// failing that, from the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var reqData struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.ShouldBindJSON(&reqData); err != nil || reqData.RefreshToken == "" {
		if cookie, cookieErr := c.Cookie(RefreshTokenCookie); cookieErr == nil && cookie != "" {
			reqData.RefreshToken = cookie
		} else {
			SanitizedErrorResponse(c, domain.NewValidationError(
				"MISSING_REFRESH_TOKEN", "Refresh token is required",
				map[string]interface{}{"field": "refresh_token"},
			))
			return
		}
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), reqData.RefreshToken)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	h.setAuthCookies(c, tokenPair)
	SuccessResponse(c, tokenPair)
}

// Logout revokes the presented access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.ExtractToken(c)); err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	h.clearAuthCookies(c)
	SuccessResponse(c, gin.H{"message": "Successfully logged out"})
}

// GetProfile returns the caller's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	SuccessResponse(c, gin.H{"user": user.Profile()})
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, tokenPair *domain.TokenPair) {
	c.SetCookie(
		middleware.AccessTokenCookie,
		tokenPair.AccessToken,
		int(time.Until(tokenPair.ExpiresAt.Time).Seconds()),
		"/",
		"",
		true, // Secure
		true, // HttpOnly
	)

	c.SetCookie(
		RefreshTokenCookie,
		tokenPair.RefreshToken,
		int(h.refreshTTL.Seconds()),
		"/api/auth",
		"",
		true,
		true,
	)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/api/auth", "", true, true)
}
