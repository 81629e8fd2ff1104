package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist answers revocation questions about verified tokens. The
// identity provider is the only writer; it records revocations in the shared
// Redis under the keys produced by JTIKey and UserKey.
type TokenBlacklist interface {
	// IsBlacklisted checks if a token's JTI was revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// IsUserTokenInvalidated reports whether a token issued at issuedAt
	// predates the principal's invalidation point
	IsUserTokenInvalidated(ctx context.Context, principalID string, issuedAt time.Time) (bool, error)
}

// DefaultBlacklistPrefix namespaces revocation keys in a shared Redis
const DefaultBlacklistPrefix = "reqtrace:token:blacklist:"

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisTokenBlacklist creates a token blacklist on an existing client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, keyPrefix: DefaultBlacklistPrefix}
}

// JTIKey is the key whose presence revokes one token
func (b *RedisTokenBlacklist) JTIKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

// UserKey holds the Unix time up to which a principal's tokens are invalid
func (b *RedisTokenBlacklist) UserKey(principalID string) string {
	return b.keyPrefix + "user:" + principalID
}

// IsBlacklisted checks if a token's JTI is in the blacklist
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.JTIKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// IsUserTokenInvalidated checks if a token was issued at or before the
// principal's invalidation point
func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, principalID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.UserKey(principalID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return issuedAt.Unix() <= invalidatedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)
