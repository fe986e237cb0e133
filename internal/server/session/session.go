// Package session binds anonymous shopping carts to opaque session tokens.
// The token is an HMAC-signed random identifier handed to the browser; the
// cart key it maps to lives in redis so an unauthenticated visitor keeps the
// same cart across requests without any server-side HTTP session.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geotrade/marketplace/internal/common"
)

const cartKeyPrefix = "cart:session:"

// Store maps signed session tokens to cart keys.
type Store interface {
	// Bind issues a new signed token that resolves to cartKey.
	Bind(ctx context.Context, cartKey string) (string, error)
	// Resolve returns the cart key a token maps to. A forged, expired or
	// unknown token yields common.ErrInvalidToken.
	Resolve(ctx context.Context, token string) (string, error)
	// Rebind points an existing token at a different cart key, keeping the
	// token stable across a checkout that opens a fresh cart.
	Rebind(ctx context.Context, token, cartKey string) error
}

type RedisStore struct {
	client *redis.Client
	secret string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, secret string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, secret: secret, ttl: ttl}
}

func (s *RedisStore) Bind(ctx context.Context, cartKey string) (string, error) {
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}

	token := hex.EncodeToString(id) + "." + s.sign(hex.EncodeToString(id))

	if err := s.client.Set(ctx, cartKeyPrefix+token, cartKey, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (string, error) {
	if !s.verify(token) {
		return "", common.ErrInvalidToken
	}

	cartKey, err := s.client.Get(ctx, cartKeyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return "", common.ErrInvalidToken
		}
		return "", err
	}

	// Sliding expiry: an active cart does not vanish mid-session.
	s.client.Expire(ctx, cartKeyPrefix+token, s.ttl)

	return cartKey, nil
}

func (s *RedisStore) Rebind(ctx context.Context, token, cartKey string) error {
	if !s.verify(token) {
		return common.ErrInvalidToken
	}
	return s.client.Set(ctx, cartKeyPrefix+token, cartKey, s.ttl).Err()
}

func (s *RedisStore) sign(id string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *RedisStore) verify(token string) bool {
	id, sig, found := strings.Cut(token, ".")
	if !found {
		return false
	}
	return hmac.Equal([]byte(s.sign(id)), []byte(sig))
}
