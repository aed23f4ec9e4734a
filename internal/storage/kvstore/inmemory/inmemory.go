package inmemory

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/havenhq/haven/internal/storage/kvstore"
)

type entry struct {
	value     string
	hasExpiry bool
	expiresAt time.Time
}

// Store implements kvstore.Store in process memory. The clock is
// injectable so expiry behavior is testable without sleeping.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

type Option func(*Store)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	store := &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// get returns the live entry, lazily evicting it when expired.
func (s *Store) get(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if e.hasExpiry && !e.expiresAt.After(s.now()) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		hasExpiry: true,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value}
	return nil
}

func (s *Store) TTL(ctx context.Context, key string) (kvstore.KeyTTL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok {
		return kvstore.KeyTTL{}, nil
	}
	if !e.hasExpiry {
		return kvstore.KeyTTL{Exists: true}, nil
	}
	return kvstore.KeyTTL{
		Exists:    true,
		HasExpiry: true,
		Remaining: e.expiresAt.Sub(s.now()),
	}, nil
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok {
		return false, nil
	}

	e.hasExpiry = true
	e.expiresAt = s.now().Add(ttl)
	s.entries[key] = e
	return true, nil
}

func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key := range s.entries {
		if _, live := s.get(key); !live {
			continue
		}
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
