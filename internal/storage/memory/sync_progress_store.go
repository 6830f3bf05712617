package memory

import (
	"context"
	"sync"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// SyncProgressStore is an in-memory implementation of storage.SyncProgressStore.
type SyncProgressStore struct {
	mu       sync.RWMutex
	progress map[string]storage.SyncProgress
}

// NewSyncProgressStore creates a new in-memory sync progress store.
func NewSyncProgressStore() *SyncProgressStore {
	return &SyncProgressStore{
		progress: make(map[string]storage.SyncProgress),
	}
}

// Get returns the progress of an address.
func (s *SyncProgressStore) Get(_ context.Context, chainID int64, address string) (*storage.SyncProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[recordKey(chainID, domain.NormalizeAddress(address))]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

// Set saves the progress of an address.
func (s *SyncProgressStore) Set(_ context.Context, progress *storage.SyncProgress) error {
	if progress == nil || progress.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := *progress
	p.Address = domain.NormalizeAddress(p.Address)
	s.progress[recordKey(p.ChainID, p.Address)] = p
	return nil
}

var _ storage.SyncProgressStore = (*SyncProgressStore)(nil)
