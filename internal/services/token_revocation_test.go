package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func TestMemoryTokenRevocationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryTokenRevocationStore()
	store.now = func() time.Time { return now }

	first, err := store.Revoke(ctx, &domain.RevokedToken{TokenID: "live", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, first)
	first, err = store.Revoke(ctx, &domain.RevokedToken{TokenID: "live", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, first, "a second revoke of the same id loses")
	_, err = store.Revoke(ctx, &domain.RevokedToken{TokenID: "stale", ExpiresAt: now.Add(-time.Minute)})
	require.NoError(t, err)

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked, "already expired tokens are not recorded")

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation lapses with the token")

	_, err = store.Revoke(ctx, &domain.RevokedToken{TokenID: "next", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.Len(t, store.revoked, 1, "expired entries are pruned on revoke")
}

func TestRedisTokenRevocationStore_Revoke(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewRedisTokenRevocationStore(rdb)
	store.now = func() time.Time { return now }

	mock.ExpectSetNX("revoked_token:tok-1", "user-1", time.Hour).SetVal(true)
	mock.ExpectSetNX("revoked_token:tok-1", "user-1", time.Hour).SetVal(false)

	token := &domain.RevokedToken{
		TokenID:   "tok-1",
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
	}
	first, err := store.Revoke(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first {
		t.Error("Expected the first revoke to win")
	}
	first, err = store.Revoke(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first {
		t.Error("Expected a repeated revoke to report the id as already held")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestRedisTokenRevocationStore_RevokeExpiredIsNoop(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	now := time.Now()
	store := NewRedisTokenRevocationStore(rdb)
	store.now = func() time.Time { return now }

	_, err := store.Revoke(context.Background(), &domain.RevokedToken{TokenID: "tok-1", ExpiresAt: now.Add(-time.Second)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenRevocationStore_IsRevoked(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	store := NewRedisTokenRevocationStore(rdb)

	mock.ExpectExists("revoked_token:tok-1").SetVal(1)
	mock.ExpectExists("revoked_token:tok-2").SetVal(0)
	mock.ExpectExists("revoked_token:tok-3").SetErr(errors.New("connection refused"))

	revoked, err := store.IsRevoked(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(context.Background(), "tok-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = store.IsRevoked(context.Background(), "tok-3")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RevocationStoreFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	f := newFixture(t)
	f.register(t, "ada@example.com")
	user, _ := f.users.GetByEmail(context.Background(), "ada@example.com")

	auth := NewAuthService(f.users, NewRedisTokenRevocationStore(rdb), &testConfig{
		jwtSecret:     testSecret,
		jwtExpiration: time.Hour,
	}, nil)
	tokens, err := auth.IssueTokens(user)
	require.NoError(t, err)

	mock.Regexp().ExpectExists(`revoked_token:.+`).SetErr(errors.New("connection refused"))

	_, err = auth.ValidateToken(context.Background(), tokens.AccessToken)
	assert.Equal(t, "REVOCATION_CHECK_FAILED", errorCode(err))
}
