// Package memory provides a map-backed storage.Store for ephemeral runs and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mmynk/teamtime/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps values in process memory. Values are copied on the way in
// and on the way out.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = slices.Clone(value)
	return nil
}

func (s *Store) Close() error {
	return nil
}
