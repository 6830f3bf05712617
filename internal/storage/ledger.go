package storage

import (
	"context"
	"fmt"

	"stream-accounting/internal/domain"
)

// Ledger serves ledger queries from stored stream periods and transfers.
type Ledger struct {
	StreamPeriods StreamPeriodStore
	Transfers     TransferStore
}

// Query returns the stored records of one chain matching q.
func (l Ledger) Query(ctx context.Context, q domain.LedgerQuery) (*domain.LedgerData, error) {
	periods, err := l.StreamPeriods.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query stream periods: %w", err)
	}
	transfers, err := l.Transfers.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	return &domain.LedgerData{StreamPeriods: periods, Transfers: transfers}, nil
}
