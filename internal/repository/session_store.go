package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "sfqs:session:revoked:"

// SessionStore records logged-out session ids until their cookies expire.
type SessionStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type redisSessionStore struct {
	client *redis.Client
}

// NewSessionStore returns a Redis-backed store.
func NewSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if s.client == nil {
		return errors.New("redis client not configured")
	}
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	return s.client.Set(ctx, revokedSessionPrefix+sessionID, 1, ttl).Err()
}

func (s *redisSessionStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if s.client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := s.client.Exists(ctx, revokedSessionPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
