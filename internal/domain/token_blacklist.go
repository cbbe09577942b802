package domain

import (
	"context"
	"time"
)

// RevokedToken records a token that was logged out before it expired.
type RevokedToken struct {
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
}

// TokenRevocationStore keeps revoked token ids until their natural expiry.
type TokenRevocationStore interface {
	// Revoke marks a token id as revoked until token.ExpiresAt. It reports false when
	// the id was already revoked, so exactly one caller wins a concurrent revoke.
	Revoke(ctx context.Context, token *RevokedToken) (bool, error)

	// IsRevoked checks if a token id has been revoked
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
