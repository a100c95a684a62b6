package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// TokenDenylist implements repository.TokenDenylist using Redis. Entries
// expire together with the token they revoke.
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist creates a new Redis-backed token denylist.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// tokenKey hashes the token so raw credentials never sit in Redis.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistPrefix + hex.EncodeToString(sum[:])
}

// Revoke stores the token until expiresAt. Already expired tokens are
// ignored.
func (d *TokenDenylist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, tokenKey(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token was revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := d.client.Get(ctx, tokenKey(token)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis check revoked token: %w", err)
	}
	return true, nil
}
