// Package store holds the authoritative in-memory event and group
// collections, mirrors them to a storage.Store and announces every change
// on the notification bus.
//
// Every mutation follows the same order: change memory, persist, broadcast.
// Persistence failures are logged and counted, never returned; a payload
// that cannot be read or decoded loads as an empty collection.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmynk/teamtime/internal/storage"
)

// loadList reads and decodes the JSON array stored under key.
// found is false when the key has never been written.
func loadList[T any](ctx context.Context, kv storage.Store, key string) (list []T, found bool, err error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return list, true, nil
}

// saveList encodes list as a JSON array and writes it under key.
func saveList[T any](ctx context.Context, kv storage.Store, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
