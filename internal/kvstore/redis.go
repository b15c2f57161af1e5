package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// expiryGrace keeps expired items readable for a short window so callers can
// distinguish an expired code from one that never existed.
const expiryGrace = time.Minute

// RedisStore keeps items in Redis so multiple instances share one store.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. Keys are namespaced by prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the stored item, or nil when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (*Item, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Set stores the item, replacing any prior value. Items with an expiry get a
// Redis TTL slightly past it so stale reads still classify as expired.
func (s *RedisStore) Set(ctx context.Context, key string, item Item) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !item.ExpiresAt.IsZero() {
		ttl = time.Until(item.ExpiresAt) + expiryGrace
		if ttl <= 0 {
			ttl = expiryGrace
		}
	}
	return s.client.Set(ctx, s.prefix+key, raw, ttl).Err()
}

// Delete removes the key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Sweep is a no-op; Redis drops expired keys through its own TTLs.
func (s *RedisStore) Sweep(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
