package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"fortress-hunt-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	identityKeyPrefix = "hunt:ident:"
	tokenKeyPrefix    = "hunt:token:"
)

// issueScript swaps the identity's token in one atomic step: drop the old
// token mapping if present, then write the fresh pair. ARGV: token, email,
// ttl seconds (0 = no expiry).
var issueScript = redis.NewScript(`
local old = redis.call("GET", KEYS[1])
if old then
  redis.call("DEL", "` + tokenKeyPrefix + `" .. old)
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call("SET", KEYS[1], ARGV[1], "EX", ttl)
  redis.call("SET", "` + tokenKeyPrefix + `" .. ARGV[1], ARGV[2], "EX", ttl)
else
  redis.call("SET", KEYS[1], ARGV[1])
  redis.call("SET", "` + tokenKeyPrefix + `" .. ARGV[1], ARGV[2])
end
return 1
`)

var revokeScript = redis.NewScript(`
local old = redis.call("GET", KEYS[1])
if old then
  redis.call("DEL", "` + tokenKeyPrefix + `" .. old)
end
redis.call("DEL", KEYS[1])
return 1
`)

// TokenStore is a Redis-backed implementation of app.TokenIssuer. The
// revoke-then-reissue sequence runs as a single server-side script, so a
// concurrent login can never leave two valid tokens for one identity.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func (s *TokenStore) Issue(ctx context.Context, email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	ttlSeconds := int64(s.ttl / time.Second)
	keys := []string{identityKeyPrefix + email}
	if err := issueScript.Run(ctx, s.client, keys, token, email, ttlSeconds).Err(); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Identity(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolve token: %w", err)
	}
	return email, nil
}

func (s *TokenStore) RevokeAll(ctx context.Context, email string) error {
	keys := []string{identityKeyPrefix + email}
	if err := revokeScript.Run(ctx, s.client, keys).Err(); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}
