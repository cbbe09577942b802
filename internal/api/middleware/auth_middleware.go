package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

// UserContextKey is the key used to store user in request context.
const UserContextKey = "user"

// AccessTokenCookie is the cookie consulted when no Authorization header is sent.
const AccessTokenCookie = "access_token"

type userContextKey struct{}

// AuthMiddleware provides authentication middleware functionality.
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// RequireAuth middleware that requires valid JWT authentication. A user already
// resolved by OptionalAuth earlier in the chain is reused.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserFromContext(c); ok {
			c.Next()
			return
		}

		user, err := m.extractUser(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth middleware that extracts user if token is provided but doesn't require it.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _ := m.extractUser(c); user != nil {
			setUser(c, user)
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *domain.User) {
	c.Set(UserContextKey, user)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userContextKey{}, user))
}

// extractUser extracts and validates user from request.
func (m *AuthMiddleware) extractUser(c *gin.Context) (*domain.User, error) {
	token := ExtractToken(c)
	if token == "" {
		return nil, domain.NewAuthenticationError("MISSING_TOKEN", "Authentication token required")
	}

	return m.authService.ValidateToken(c.Request.Context(), token)
}

// ExtractToken returns the bearer token from the Authorization header, falling back
// to the access token cookie.
func ExtractToken(c *gin.Context) string {
	if token := extractTokenFromHeader(c); token != "" {
		return token
	}
	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie
}

func extractTokenFromHeader(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetUserFromContext extracts the authenticated user from Gin context.
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	if user, exists := c.Get(UserContextKey); exists {
		if u, ok := user.(*domain.User); ok {
			return u, true
		}
	}
	return nil, false
}

// GetUserFromRequestContext extracts the authenticated user from request context.
func GetUserFromRequestContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*domain.User)
	return u, ok && u != nil
}
