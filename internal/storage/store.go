// Package storage provides abstractions for persistent data storage.
package storage

import "context"

// Keys under which the stores persist their collections.
const (
	KeyEvents = "events"
	KeyGroups = "groups"
)

// Store is a flat key-value store holding one JSON document per key.
// This abstraction allows swapping storage backends (SQLite, memory, etc.)
// without changing the event and group stores.
type Store interface {
	// Get returns the value stored under key.
	// The boolean is false when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}
