package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ericfisherdev/simple-easy-issues/internal/config"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
)

const (
	tokenIssuer     = "simple-easy-issues"
	accessAudience  = "simple-easy-issues-app"
	refreshAudience = "simple-easy-issues-refresh"
)

// AuthService defines the interface for authentication operations.
// Following Interface Segregation Principle.
type AuthService interface {
	// IssueTokens signs a new access and refresh token pair for user.
	IssueTokens(user *domain.User) (*domain.TokenPair, error)

	// RefreshToken exchanges a refresh token for a new pair and revokes the old one.
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// ValidateToken validates an access token and returns the user it was issued to.
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)

	// Logout revokes the access token until it expires.
	Logout(ctx context.Context, tokenString string) error
}

// TokenClaims represents JWT token claims.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// authService implements AuthService interface.
type authService struct {
	userRepo   repository.UserQueryRepository
	revocation domain.TokenRevocationStore
	config     config.SecurityConfig
	logger     *slog.Logger
	jwtSecret  []byte
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserQueryRepository,
	revocation domain.TokenRevocationStore,
	cfg config.SecurityConfig,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:   userRepo,
		revocation: revocation,
		config:     cfg,
		logger:     logger,
		jwtSecret:  []byte(cfg.GetJWTSecret()),
		now:        time.Now,
	}
}

// IssueTokens creates both access and refresh tokens.
func (s *authService) IssueTokens(user *domain.User) (*domain.TokenPair, error) {
	now := s.now()
	accessExpiry := now.Add(s.config.GetJWTExpiration())
	refreshExpiry := now.Add(s.config.GetRefreshTokenExpiration())

	accessToken, err := s.sign(user, accessAudience, now, accessExpiry)
	if err != nil {
		return nil, domain.NewInternalError("TOKEN_GENERATION_FAILED", "Failed to generate authentication tokens", err)
	}

	refreshToken, err := s.sign(user, refreshAudience, now, refreshExpiry)
	if err != nil {
		return nil, domain.NewInternalError("TOKEN_GENERATION_FAILED", "Failed to generate authentication tokens", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    domain.NewTimestamp(accessExpiry),
	}, nil
}

// RefreshToken generates new tokens using a refresh token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.parseToken(refreshToken, refreshAudience)
	if err != nil {
		return nil, domain.NewAuthenticationError("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found")
	}

	// Refresh tokens are single use: the token is spent before the new pair exists.
	first, err := s.revoke(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, domain.NewAuthenticationError("TOKEN_REVOKED", "Token has been revoked")
	}

	return s.IssueTokens(user)
}

// ValidateToken validates a JWT token and returns the user.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.parseToken(tokenString, accessAudience)
	if err != nil {
		return nil, domain.NewAuthenticationError("INVALID_TOKEN", "Invalid or expired token")
	}

	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found")
	}

	return user, nil
}

// Logout revokes the presented access token by its jti.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString, accessAudience)
	if err != nil {
		return domain.NewAuthenticationError("INVALID_TOKEN", "Invalid or expired token")
	}

	if _, err := s.revoke(ctx, claims); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user logged out", "user_id", claims.UserID, "token_id", claims.ID)
	return nil
}

func (s *authService) sign(user *domain.User, audience string, now, expiry time.Time) (string, error) {
	claims := &TokenClaims{
		UserID: user.UserID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Audience:  []string{audience},
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", audience, err)
	}
	return signed, nil
}

// parseToken parses and validates a JWT token issued for audience.
func (s *authService) parseToken(tokenString, audience string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid && claims.ID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

func (s *authService) checkNotRevoked(ctx context.Context, claims *TokenClaims) error {
	revoked, err := s.revocation.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.NewInternalError("REVOCATION_CHECK_FAILED", "Failed to check token revocation", err)
	}
	if revoked {
		return domain.NewAuthenticationError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func (s *authService) revoke(ctx context.Context, claims *TokenClaims) (bool, error) {
	expiresAt := s.now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	first, err := s.revocation.Revoke(ctx, &domain.RevokedToken{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expiresAt,
		RevokedAt: s.now(),
	})
	if err != nil {
		return false, domain.NewInternalError("TOKEN_REVOCATION_FAILED", "Failed to revoke token", err)
	}
	return first, nil
}
