package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix   = "auth:refresh:%s"
	blacklistKeyPrefix = "auth:blacklist:%s"
)

// TokenStore keeps the active refresh-token set and the access-token
// blacklist in Redis, keyed by JWT ID. Entries expire together with the
// tokens they describe. With no Redis client the store fails open: refresh
// tokens verify and nothing is considered revoked.
type TokenStore struct {
	rdb *redis.Client
}

// NewTokenStore returns a TokenStore backed by the given client, which may
// be nil.
func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func refreshKey(jti string) string {
	return fmt.Sprintf(refreshKeyPrefix, jti)
}

func blacklistKey(jti string) string {
	return fmt.Sprintf(blacklistKeyPrefix, jti)
}

// SaveRefreshToken registers a refresh token JTI for its lifetime.
func (s *TokenStore) SaveRefreshToken(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, refreshKey(jti), 1, ttl).Err()
}

// RefreshTokenExists reports whether the refresh token JTI is still active.
func (s *TokenStore) RefreshTokenExists(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return true, nil
	}
	n, err := s.rdb.Exists(ctx, refreshKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeRefreshToken removes a refresh token JTI from the active set.
func (s *TokenStore) RevokeRefreshToken(ctx context.Context, jti string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, refreshKey(jti)).Err()
}

// BlacklistAccessToken marks an access token JTI revoked until it would have
// expired anyway.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil || ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, blacklistKey(jti), 1, ttl).Err()
}

// IsAccessTokenRevoked reports whether the access token JTI was blacklisted.
// Satisfies middleware.TokenRevoker.
func (s *TokenStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
