package storage

import (
	"context"
	"fmt"

	"github.com/swapnilxi/grab-hack/internal/vector"
)

// SnapshotStore is a MemoryStore that loads a snapshot file on Initialize and
// writes it back on Close.
type SnapshotStore struct {
	*vector.MemoryStore
	path   string
	loaded bool
}

// NewSnapshotStore wraps store with snapshot persistence at path. An empty
// path disables persistence.
func NewSnapshotStore(store *vector.MemoryStore, path string) *SnapshotStore {
	return &SnapshotStore{MemoryStore: store, path: path}
}

// Initialize loads the snapshot if one exists.
func (s *SnapshotStore) Initialize(ctx context.Context) error {
	if err := s.MemoryStore.Load(s.path); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	s.loaded = true
	return nil
}

// Close writes the snapshot. A store whose snapshot failed to load is not
// written, so an unreadable file is never overwritten.
func (s *SnapshotStore) Close() error {
	if !s.loaded {
		return nil
	}
	if err := s.MemoryStore.Save(s.path); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
