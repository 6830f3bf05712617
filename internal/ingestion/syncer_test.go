package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
	"stream-accounting/internal/storage/memory"
)

type fakeSource struct {
	mu      sync.Mutex
	data    map[int64]*domain.LedgerData
	errs    map[int64]error
	queries []domain.LedgerQuery
}

func (f *fakeSource) Query(_ context.Context, q domain.LedgerQuery) (*domain.LedgerData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.errs[q.ChainID]; err != nil {
		return nil, err
	}
	if d, ok := f.data[q.ChainID]; ok {
		return d, nil
	}
	return &domain.LedgerData{}, nil
}

func (f *fakeSource) lastQuery() domain.LedgerQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

var usdcx = domain.Token{ID: "0x07b24bbd834c1c546ece89ff95f71d9f13a2ebd1", Symbol: "USDCx", Decimals: 18}

func sampleLedger() *domain.LedgerData {
	return &domain.LedgerData{
		StreamPeriods: []*domain.StreamPeriod{
			{
				ID:                 "s1",
				Token:              usdcx,
				ChainID:            137,
				Sender:             "0xabc",
				Receiver:           "0xdef",
				FlowRate:           decimal.NewFromInt(100),
				StartedAtTimestamp: 1000,
			},
		},
		Transfers: []*domain.TransferEvent{
			{ID: "t1", Token: usdcx, ChainID: 137, From: "0xabc", To: "0x123", Value: decimal.NewFromInt(5), Timestamp: 1500},
			{ID: "t2", Token: usdcx, ChainID: 137, From: "0x123", To: "0xabc", Value: decimal.NewFromInt(7), Timestamp: 1600},
		},
	}
}

type syncFixture struct {
	source    *fakeSource
	streams   *memory.StreamPeriodStore
	transfers *memory.TransferStore
	progress  *memory.SyncProgressStore
	syncer    *Syncer
}

func newSyncFixture(now time.Time) *syncFixture {
	f := &syncFixture{
		source:    &fakeSource{data: map[int64]*domain.LedgerData{137: sampleLedger()}, errs: map[int64]error{}},
		streams:   memory.NewStreamPeriodStore(),
		transfers: memory.NewTransferStore(),
		progress:  memory.NewSyncProgressStore(),
	}
	f.syncer = NewSyncer(SyncerOptions{
		Source:        f.source,
		StreamPeriods: f.streams,
		Transfers:     f.transfers,
		Progress:      f.progress,
		Now:           func() time.Time { return now },
	})
	return f
}

func TestSyncer_StoresLedger(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	ctx := context.Background()

	stats, err := f.syncer.Sync(ctx, 137, []string{"0xABC"}, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, &SyncStats{From: 0, To: 2000, StreamPeriods: 1, TransfersStored: 2}, stats)

	q := f.source.lastQuery()
	assert.Equal(t, []string{"0xabc"}, q.Addresses)
	assert.Equal(t, int64(0), q.Start)
	assert.Equal(t, int64(2000), q.End)

	stored, err := f.streams.GetByID(ctx, 137, "s1")
	require.NoError(t, err)
	assert.True(t, stored.FlowRate.Equal(decimal.NewFromInt(100)))

	ledger := storage.Ledger{StreamPeriods: f.streams, Transfers: f.transfers}
	data, err := ledger.Query(ctx, domain.LedgerQuery{ChainID: 137, Addresses: []string{"0xabc"}, Start: 0, End: 2000})
	require.NoError(t, err)
	assert.Len(t, data.StreamPeriods, 1)
	assert.Len(t, data.Transfers, 2)

	progress, err := f.progress.Get(ctx, 137, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), progress.SyncedUntil)
}

func TestSyncer_ResumesAndSkipsStoredTransfers(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	ctx := context.Background()

	_, err := f.syncer.Sync(ctx, 137, []string{"0xabc"}, 0, 2000)
	require.NoError(t, err)

	// The stream stopped since the last sync.
	stopped := int64(2500)
	f.source.data[137].StreamPeriods[0].StoppedAtTimestamp = &stopped

	stats, err := f.syncer.Sync(ctx, 137, []string{"0xabc"}, 0, 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stats.From)
	assert.Equal(t, 1, stats.StreamPeriods)
	assert.Equal(t, 0, stats.TransfersStored)
	assert.Equal(t, 2, stats.TransfersSkipped)
	assert.Equal(t, int64(2000), f.source.lastQuery().Start)

	stored, err := f.streams.GetByID(ctx, 137, "s1")
	require.NoError(t, err)
	require.NotNil(t, stored.StoppedAtTimestamp)
	assert.Equal(t, stopped, *stored.StoppedAtTimestamp)
}

func TestSyncer_ResumeUsesLeastAdvancedAddress(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	ctx := context.Background()

	_, err := f.syncer.Sync(ctx, 137, []string{"0xabc"}, 0, 2000)
	require.NoError(t, err)

	stats, err := f.syncer.Sync(ctx, 137, []string{"0xabc", "0xnew"}, 100, 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.From)
}

func TestSyncer_AlreadySynced(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	ctx := context.Background()

	_, err := f.syncer.Sync(ctx, 137, []string{"0xabc"}, 0, 2000)
	require.NoError(t, err)
	calls := len(f.source.queries)

	stats, err := f.syncer.Sync(ctx, 137, []string{"0xabc"}, 0, 1500)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.StreamPeriods)
	assert.Len(t, f.source.queries, calls, "nothing left to fetch")
}

func TestSyncer_NoAddresses(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))

	_, err := f.syncer.Sync(context.Background(), 137, []string{" ", ""}, 0, 2000)
	require.Error(t, err)
	assert.Empty(t, f.source.queries)
}

func TestSyncer_SourceFailureKeepsProgress(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	f.source.errs[137] = errors.New("subgraph unavailable")
	ctx := context.Background()

	_, err := f.syncer.Sync(ctx, 137, []string{"0xabc"}, 0, 2000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subgraph unavailable")

	_, err = f.progress.Get(ctx, 137, "0xabc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSyncer_SyncPlanContinuesPastFailedChain(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	f.source.errs[10] = errors.New("optimism down")
	ctx := context.Background()

	err := f.syncer.SyncPlan(ctx, Plan{ChainIDs: []int64{10, 137}, Addresses: []string{"0xabc"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "optimism down")

	progress, err := f.progress.Get(ctx, 137, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), progress.SyncedUntil)
}

func TestSyncer_RunStopsOnCancel(t *testing.T) {
	f := newSyncFixture(time.Unix(5000, 0))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- f.syncer.Run(ctx, Plan{ChainIDs: []int64{137}, Addresses: []string{"0xabc"}}, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		f.source.mu.Lock()
		defer f.source.mu.Unlock()
		return len(f.source.queries) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
