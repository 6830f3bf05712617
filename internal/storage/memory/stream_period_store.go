package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// StreamPeriodStore is an in-memory implementation of storage.StreamPeriodStore.
type StreamPeriodStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StreamPeriod // keyed by chain and id
}

// NewStreamPeriodStore creates a new in-memory stream period store.
func NewStreamPeriodStore() *StreamPeriodStore {
	return &StreamPeriodStore{
		data: make(map[string]*domain.StreamPeriod),
	}
}

func recordKey(chainID int64, id string) string {
	return fmt.Sprintf("%d|%s", chainID, id)
}

// Upsert inserts or replaces a stream period.
func (s *StreamPeriodStore) Upsert(_ context.Context, p *domain.StreamPeriod) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[recordKey(p.ChainID, p.ID)] = p.Clone()
	return nil
}

// GetByID retrieves a stream period. Returns ErrNotFound if not exists.
func (s *StreamPeriodStore) GetByID(_ context.Context, chainID int64, id string) (*domain.StreamPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[recordKey(chainID, id)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p.Clone(), nil
}

// Query retrieves stream periods matching q, ordered by started_at ASC, id ASC.
func (s *StreamPeriodStore) Query(_ context.Context, q domain.LedgerQuery) ([]*domain.StreamPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StreamPeriod
	for _, p := range s.data {
		if q.MatchesStream(p) {
			result = append(result, p.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAtTimestamp != result[j].StartedAtTimestamp {
			return result[i].StartedAtTimestamp < result[j].StartedAtTimestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.StreamPeriodStore = (*StreamPeriodStore)(nil)
