package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// MemoryTokenRevocationStore keeps revoked token ids in process memory.
type MemoryTokenRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenRevocationStore creates an empty in-memory revocation store.
func NewMemoryTokenRevocationStore() *MemoryTokenRevocationStore {
	return &MemoryTokenRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records the token id until it expires.
func (m *MemoryTokenRevocationStore) Revoke(_ context.Context, token *domain.RevokedToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, expiresAt := range m.revoked {
		if !expiresAt.After(now) {
			delete(m.revoked, id)
		}
	}
	if _, held := m.revoked[token.TokenID]; held {
		return false, nil
	}
	if token.ExpiresAt.After(now) {
		m.revoked[token.TokenID] = token.ExpiresAt
	}
	return true, nil
}

// IsRevoked reports whether an unexpired revocation exists for tokenID.
func (m *MemoryTokenRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.revoked[tokenID]
	return ok && expiresAt.After(m.now()), nil
}

const revokedTokenPrefix = "revoked_token"

// RedisTokenRevocationStore shares revocations across server instances. Each revoked
// token id is a key that expires together with the token.
type RedisTokenRevocationStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisTokenRevocationStore creates a revocation store on client.
func NewRedisTokenRevocationStore(client redis.Cmdable) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{client: client, prefix: revokedTokenPrefix, now: time.Now}
}

func (r *RedisTokenRevocationStore) key(tokenID string) string {
	return r.prefix + ":" + tokenID
}

// Revoke stores the token id with a TTL matching the token's remaining lifetime. SETNX
// makes the first revocation of an id the only one that succeeds.
func (r *RedisTokenRevocationStore) Revoke(ctx context.Context, token *domain.RevokedToken) (bool, error) {
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return true, nil
	}
	return r.client.SetNX(ctx, r.key(token.TokenID), token.UserID, ttl).Result()
}

// IsRevoked checks for the token id key.
func (r *RedisTokenRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
