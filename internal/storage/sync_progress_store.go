package storage

import "context"

// SyncProgress records how far the ledger of one address on one chain has been copied.
type SyncProgress struct {
	ChainID     int64
	Address     string
	SyncedUntil int64 // unix seconds, inclusive
}

// SyncProgressStore provides persistence for ledger sync state.
// This enables incremental syncs without refetching the whole history.
type SyncProgressStore interface {
	// Get returns the progress of an address. Returns ErrNotFound if never synced.
	Get(ctx context.Context, chainID int64, address string) (*SyncProgress, error)

	// Set saves the progress of an address.
	Set(ctx context.Context, progress *SyncProgress) error
}
