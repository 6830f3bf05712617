package memory

import (
	"context"
	"sort"
	"sync"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// TransferStore is an in-memory implementation of storage.TransferStore.
type TransferStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TransferEvent // keyed by chain and id
}

// NewTransferStore creates a new in-memory transfer store.
func NewTransferStore() *TransferStore {
	return &TransferStore{
		data: make(map[string]*domain.TransferEvent),
	}
}

// Insert adds a new transfer. Returns ErrDuplicateKey if exists.
func (s *TransferStore) Insert(_ context.Context, t *domain.TransferEvent) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	key := recordKey(t.ChainID, t.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple transfers atomically. Fails entire batch on any duplicate.
func (s *TransferStore) InsertBulk(_ context.Context, transfers []*domain.TransferEvent) error {
	if len(transfers) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(transfers))

	for _, t := range transfers {
		if t == nil || t.ID == "" {
			return storage.ErrInvalidInput
		}
		key := recordKey(t.ChainID, t.ID)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, t := range transfers {
		copy := *t
		s.data[recordKey(t.ChainID, t.ID)] = &copy
	}

	return nil
}

// Query retrieves transfers matching q, ordered by timestamp ASC, id ASC.
func (s *TransferStore) Query(_ context.Context, q domain.LedgerQuery) ([]*domain.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransferEvent
	for _, t := range s.data {
		if q.MatchesTransfer(t) {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.TransferStore = (*TransferStore)(nil)
