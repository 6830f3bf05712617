package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// PriceQuoteStore is an in-memory implementation of storage.PriceQuoteStore.
type PriceQuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceQuote // keyed by (coin_id, currency, timestamp)
}

// NewPriceQuoteStore creates a new in-memory price quote store.
func NewPriceQuoteStore() *PriceQuoteStore {
	return &PriceQuoteStore{
		data: make(map[string]*domain.PriceQuote),
	}
}

func quoteKey(coinID, currency string, ts int64) string {
	return fmt.Sprintf("%s|%s|%d", coinID, currency, ts)
}

// Upsert stores quotes, replacing existing ones with the same key.
func (s *PriceQuoteStore) Upsert(_ context.Context, quotes []*domain.PriceQuote) error {
	for _, q := range quotes {
		if q == nil || q.CoinID == "" || q.Currency == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range quotes {
		copy := *q
		s.data[quoteKey(q.CoinID, q.Currency, q.Timestamp)] = &copy
	}
	return nil
}

// GetByTimeRange retrieves quotes within [start, end] (inclusive), ordered by timestamp ASC.
func (s *PriceQuoteStore) GetByTimeRange(_ context.Context, coinID, currency string, start, end int64) ([]*domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceQuote
	for _, q := range s.data {
		if q.CoinID == coinID && q.Currency == currency && q.Timestamp >= start && q.Timestamp <= end {
			copy := *q
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

var _ storage.PriceQuoteStore = (*PriceQuoteStore)(nil)
