// Package kv is the shared key-value store with per-key expiry that backs
// attempt counters, lockout flags, refresh token records and route limits.
// It is the only state shared between concurrent requests.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get and GetDel for absent or expired keys.
	ErrNotFound = errors.New("kv: not found")
	// ErrNotInteger is returned when IncrWithExpiry hits a non-counter value.
	ErrNotInteger = errors.New("kv: value is not an integer")
)

// Store is implemented by the Redis and in-memory drivers.
type Store interface {
	// IncrWithExpiry atomically increments the counter at key and (re)applies
	// ttl in the same step, returning the new count. Missing keys start at 0.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Set writes value under key, overwriting any existing value, expiring
	// after ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value at key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically returns and removes the value at key, or ErrNotFound.
	GetDel(ctx context.Context, key string) (string, error)

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}
