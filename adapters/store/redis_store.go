package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/venmo/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface. It lets
// several host processes share one consumed state registry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.Store {
	return &RedisStore{
		client: client,
		prefix: "venmo:consumed-state:",
	}
}

// ConsumeState marks a return state as used in Redis
func (s *RedisStore) ConsumeState(ctx context.Context, stateID string, expiry time.Duration) error {
	key := s.prefix + stateID

	ok, err := s.client.SetNX(ctx, key, "1", expiry).Result()
	if err != nil {
		return fmt.Errorf("failed to consume state: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrStateConsumed, stateID)
	}

	return nil
}

// IsStateConsumed checks if a return state was already used
func (s *RedisStore) IsStateConsumed(ctx context.Context, stateID string) (bool, error) {
	key := s.prefix + stateID

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check state: %w", err)
	}

	return val > 0, nil
}
