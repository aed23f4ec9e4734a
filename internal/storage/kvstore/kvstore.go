// Package kvstore defines the narrow TTL-capable key-value surface the
// session registry and history store are built on. The production backend
// is Redis; an in-memory backend with an injectable clock backs tests.
package kvstore

import (
	"context"
	"time"
)

// KeyTTL is the result of a TTL probe, modelling the three states a key
// can be in: absent, present without expiry, present with expiry.
type KeyTTL struct {
	Exists    bool
	HasExpiry bool
	Remaining time.Duration
}

type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL writes the value and (re)sets its expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Set writes the value without touching expiry semantics (the key
	// ends up persistent).
	Set(ctx context.Context, key, value string) error

	// TTL probes the key's remaining lifetime.
	TTL(ctx context.Context, key string) (KeyTTL, error)

	// Expire resets the key's expiry, reporting whether the key existed.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ScanKeys returns all keys matching a glob-style pattern.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Delete removes the key if present.
	Delete(ctx context.Context, key string) error
}
