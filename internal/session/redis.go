// Package session persists checkout state in Redis, one JSON document per
// account.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bazaarlane/storefront/internal/domain/checkout"
)

// DefaultTTL bounds how long an abandoned checkout survives.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "checkout:"

// RedisStore implements checkout.Store on a Redis client.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ checkout.Store = (*RedisStore)(nil)

// NewRedisStore creates a store with the given TTL; ttl <= 0 uses DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Load returns the account's checkout session, or
// checkout.ErrSessionNotFound.
func (s *RedisStore) Load(ctx context.Context, userID uuid.UUID) (*checkout.Session, error) {
	raw, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, checkout.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var sess checkout.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &sess, nil
}

// Save stores the session, refreshing its TTL.
func (s *RedisStore) Save(ctx context.Context, userID uuid.UUID, sess *checkout.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := s.client.Set(ctx, key(userID), raw, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Clear deletes the session. A missing key is not an error.
func (s *RedisStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}
