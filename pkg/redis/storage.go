package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a namespaced byte store on top of a redis client. It backs
// the admin stats cache.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// NewStorage wraps client. Every key is stored under prefix.
func NewStorage(client redis.UniversalClient, prefix string) *Storage {
	if client == nil {
		panic("redis: client is required")
	}
	return &Storage{db: client, prefix: prefix}
}

// Get returns nil, nil for a missing key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores value under key. A zero ttl keeps the key until deleted.
func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Delete removes keys. Missing keys are not an error.
func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.db.Del(ctx, full...).Err()
}

// DeleteMatching removes every key under the storage prefix that matches
// pattern, scanning in batches instead of using KEYS.
func (s *Storage) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := s.db.Scan(ctx, cursor, s.prefix+pattern, 500).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := s.db.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
