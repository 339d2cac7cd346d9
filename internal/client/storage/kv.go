// Package storage persists opaque client state (CV collections, analytics
// snapshots) under string keys.
package storage

import "context"

// KV is a durable key/value store.
type KV interface {
	// Load returns the value under key; ok is false when nothing is stored.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Save replaces the value under key.
	Save(ctx context.Context, key string, value []byte) error
	// Update atomically replaces the value under key with fn's result.
	// fn receives the current value (ok=false when absent). An error from fn
	// aborts the update and is returned as is.
	Update(ctx context.Context, key string, fn func(current []byte, ok bool) ([]byte, error)) error
}
