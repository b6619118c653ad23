package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gridmesh/station/ports"
)

// RedisStore is a Redis implementation of the StateStore interface. Session
// state survives daemon restarts through it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis state store.
func NewRedisStore(client *redis.Client) ports.StateStore {
	return &RedisStore{
		client: client,
		prefix: "station:state:",
	}
}

// Put stores data under key without expiry; session lifetimes are enforced
// by the stored state itself, not the store.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	return nil
}

// Get retrieves the data stored under key, or nil when absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return data, nil
}

// Delete removes the data stored under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
