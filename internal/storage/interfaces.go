package storage

import (
	"context"

	"stream-accounting/internal/domain"
)

// StreamPeriodStore provides access to stream_periods storage.
type StreamPeriodStore interface {
	// Upsert inserts a stream period or replaces the stored one with the same (chain_id, id).
	// Stream periods are mutable until stopped.
	Upsert(ctx context.Context, p *domain.StreamPeriod) error

	// GetByID retrieves a stream period. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, chainID int64, id string) (*domain.StreamPeriod, error)

	// Query retrieves stream periods matching q, ordered by started_at ASC, id ASC.
	Query(ctx context.Context, q domain.LedgerQuery) ([]*domain.StreamPeriod, error)
}

// TransferStore provides access to transfer_events storage.
type TransferStore interface {
	// Insert adds a new transfer. Returns ErrDuplicateKey if (chain_id, id) exists.
	Insert(ctx context.Context, t *domain.TransferEvent) error

	// InsertBulk adds multiple transfers atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, transfers []*domain.TransferEvent) error

	// Query retrieves transfers matching q, ordered by timestamp ASC, id ASC.
	Query(ctx context.Context, q domain.LedgerQuery) ([]*domain.TransferEvent, error)
}

// PriceQuoteStore provides access to price_quotes storage.
type PriceQuoteStore interface {
	// Upsert stores quotes. A quote with the same (coin_id, currency, timestamp) replaces
	// the stored one.
	Upsert(ctx context.Context, quotes []*domain.PriceQuote) error

	// GetByTimeRange retrieves quotes within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, coinID, currency string, start, end int64) ([]*domain.PriceQuote, error)
}
