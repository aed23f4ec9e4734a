package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/havenhq/haven/internal/storage/kvstore"
)

// Store implements kvstore.Store on a Redis client.
type Store struct {
	client *redis.Client
}

type StoreDeps struct {
	Context context.Context
	URL     string
}

// New connects to Redis using a redis:// URL and verifies connectivity.
func New(deps StoreDeps) (*Store, error) {
	opts, err := redis.ParseURL(deps.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(deps.Context).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client, for callers that manage the
// connection themselves.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *Store) TTL(ctx context.Context, key string) (kvstore.KeyTTL, error) {
	remaining, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return kvstore.KeyTTL{}, fmt.Errorf("failed to probe ttl of key %s: %w", key, err)
	}

	// go-redis maps the protocol's -2 (missing key) and -1 (no expiry)
	// onto negative durations.
	switch {
	case remaining == -2*time.Second:
		return kvstore.KeyTTL{}, nil
	case remaining < 0:
		return kvstore.KeyTTL{Exists: true}, nil
	default:
		return kvstore.KeyTTL{Exists: true, HasExpiry: true, Remaining: remaining}, nil
	}
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reset expiry of key %s: %w", key, err)
	}
	return ok, nil
}

func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys matching %s: %w", pattern, err)
	}

	return keys, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
