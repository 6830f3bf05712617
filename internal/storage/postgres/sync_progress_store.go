package postgres

import (
	"context"
	"fmt"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// SyncProgressStore is a PostgreSQL implementation of storage.SyncProgressStore.
// One row per (chain_id, address) in sync_progress.
type SyncProgressStore struct {
	pool *Pool
}

// NewSyncProgressStore creates a new PostgreSQL sync progress store.
func NewSyncProgressStore(pool *Pool) *SyncProgressStore {
	return &SyncProgressStore{pool: pool}
}

var _ storage.SyncProgressStore = (*SyncProgressStore)(nil)

// Get returns the progress of an address.
func (s *SyncProgressStore) Get(ctx context.Context, chainID int64, address string) (*storage.SyncProgress, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT chain_id, address, synced_until
		FROM sync_progress
		WHERE chain_id = $1 AND address = $2
	`, chainID, domain.NormalizeAddress(address))

	var progress storage.SyncProgress
	err := row.Scan(&progress.ChainID, &progress.Address, &progress.SyncedUntil)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sync progress: %w", err)
	}

	return &progress, nil
}

// Set saves the progress of an address.
// Uses upsert to handle initial insert and subsequent updates.
func (s *SyncProgressStore) Set(ctx context.Context, progress *storage.SyncProgress) error {
	if progress == nil || progress.Address == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_progress (chain_id, address, synced_until, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (chain_id, address) DO UPDATE
		SET synced_until = EXCLUDED.synced_until,
		    updated_at = NOW()
	`, progress.ChainID, domain.NormalizeAddress(progress.Address), progress.SyncedUntil)
	if err != nil {
		return fmt.Errorf("set sync progress: %w", err)
	}
	return nil
}
