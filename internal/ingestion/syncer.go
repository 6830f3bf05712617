package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/observability"
	"stream-accounting/internal/storage"
)

// Source supplies ledger records for one chain.
type Source interface {
	Query(ctx context.Context, q domain.LedgerQuery) (*domain.LedgerData, error)
}

// SyncerOptions contains configuration for creating a Syncer.
type SyncerOptions struct {
	Source        Source
	StreamPeriods storage.StreamPeriodStore
	Transfers     storage.TransferStore
	// Progress lets repeated syncs resume where the last one ended. Optional.
	Progress storage.SyncProgressStore
	Now      func() time.Time
	Logger   *zap.SugaredLogger
}

// Syncer copies ledger records from a remote source into local stores.
type Syncer struct {
	source        Source
	streamPeriods storage.StreamPeriodStore
	transfers     storage.TransferStore
	progress      storage.SyncProgressStore
	now           func() time.Time
	logger        *zap.SugaredLogger
}

// NewSyncer creates a new Syncer.
func NewSyncer(opts SyncerOptions) *Syncer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Syncer{
		source:        opts.Source,
		streamPeriods: opts.StreamPeriods,
		transfers:     opts.Transfers,
		progress:      opts.Progress,
		now:           now,
		logger:        logger,
	}
}

// SyncStats counts what one sync stored.
type SyncStats struct {
	From             int64
	To               int64
	StreamPeriods    int
	TransfersStored  int
	TransfersSkipped int
}

// Plan describes what a sync loop keeps up to date.
type Plan struct {
	ChainIDs  []int64
	Addresses []string
	Start     int64 // unix seconds, first sync begins here
}

// Sync stores the records of addresses on one chain within [start, end]. With a progress store
// the window starts where the least advanced address stopped last time. Stream periods are
// upserted since they change until stopped. Transfers already stored are skipped.
func (s *Syncer) Sync(ctx context.Context, chainID int64, addresses []string, start, end int64) (*SyncStats, error) {
	addrs := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = domain.NormalizeAddress(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("sync chain %d: no addresses", chainID)
	}

	from, err := s.resumePoint(ctx, chainID, addrs, start)
	if err != nil {
		return nil, err
	}
	stats := &SyncStats{From: from, To: end}
	if from > end {
		return stats, nil
	}

	data, err := s.source.Query(ctx, domain.LedgerQuery{
		ChainID:   chainID,
		Addresses: addrs,
		Start:     from,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch ledger of chain %d: %w", chainID, err)
	}

	for _, p := range data.StreamPeriods {
		if err := s.streamPeriods.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("store stream period %s: %w", p.ID, err)
		}
		stats.StreamPeriods++
	}

	for _, t := range data.Transfers {
		err := s.transfers.Insert(ctx, t)
		switch {
		case err == nil:
			stats.TransfersStored++
		case errors.Is(err, storage.ErrDuplicateKey):
			stats.TransfersSkipped++
		default:
			return nil, fmt.Errorf("store transfer %s: %w", t.ID, err)
		}
	}

	if err := s.saveProgress(ctx, chainID, addrs, end); err != nil {
		return nil, err
	}

	observability.RecordSynced("stream_period", stats.StreamPeriods)
	observability.RecordSynced("transfer", stats.TransfersStored)
	s.logger.Infow("ledger synced",
		"chainId", chainID,
		"from", from,
		"to", end,
		"streamPeriods", stats.StreamPeriods,
		"transfersStored", stats.TransfersStored,
		"transfersSkipped", stats.TransfersSkipped,
	)
	return stats, nil
}

// SyncPlan syncs every chain of p up to now. A failing chain does not stop the others; the
// joined error reports all of them.
func (s *Syncer) SyncPlan(ctx context.Context, p Plan) error {
	end := s.now().Unix()
	var errs []error
	for _, chainID := range p.ChainIDs {
		if _, err := s.Sync(ctx, chainID, p.Addresses, p.Start, end); err != nil {
			observability.RecordSyncError(strconv.FormatInt(chainID, 10))
			s.logger.Errorw("ledger sync failed", "chainId", chainID, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	observability.RecordSyncFinished(end)
	return nil
}

// Run syncs p immediately and then every interval. It blocks until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context, p Plan, interval time.Duration) error {
	s.logger.Infow("starting ledger sync", "chains", p.ChainIDs, "addresses", len(p.Addresses), "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.SyncPlan(ctx, p); err != nil && ctx.Err() == nil {
			s.logger.Warnw("sync round incomplete, retrying next interval", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("ledger sync stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Syncer) resumePoint(ctx context.Context, chainID int64, addresses []string, start int64) (int64, error) {
	if s.progress == nil {
		return start, nil
	}
	var resume int64
	for i, addr := range addresses {
		at := start
		progress, err := s.progress.Get(ctx, chainID, addr)
		switch {
		case err == nil:
			at = max(start, progress.SyncedUntil)
		case errors.Is(err, storage.ErrNotFound):
		default:
			return 0, fmt.Errorf("read sync progress of %s: %w", addr, err)
		}
		if i == 0 || at < resume {
			resume = at
		}
	}
	return resume, nil
}

func (s *Syncer) saveProgress(ctx context.Context, chainID int64, addresses []string, end int64) error {
	if s.progress == nil {
		return nil
	}
	for _, addr := range addresses {
		err := s.progress.Set(ctx, &storage.SyncProgress{ChainID: chainID, Address: addr, SyncedUntil: end})
		if err != nil {
			return fmt.Errorf("save sync progress of %s: %w", addr, err)
		}
	}
	return nil
}
