package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that no value is stored under the key.
	ErrNotFound = errors.New("key not found")

	// ErrClosed indicates that the store has been closed.
	ErrClosed = errors.New("store is closed")
)

// KV is the device-local key-value store holding the outbox snapshot and
// small UI flags. Every implementation must apply Update atomically with
// respect to other Update calls on the same key.
type KV interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Update reads the current value (nil when absent), passes it to fn and
	// stores fn's result, all in one transaction. An error from fn aborts
	// the write and is returned unchanged.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error

	Close() error
}

// Put stores value under key unconditionally.
func Put(ctx context.Context, kv KV, key string, value []byte) error {
	return kv.Update(ctx, key, func([]byte) ([]byte, error) {
		return value, nil
	})
}
