// Package orchestrator assembles an accounting run.
// It coordinates: ledger fetch → price fetch → virtualization → merge
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/observability"
	"stream-accounting/internal/virtualization"
)

// LedgerSource returns the raw stream periods and transfers of one chain.
type LedgerSource interface {
	Query(ctx context.Context, q domain.LedgerQuery) (*domain.LedgerData, error)
}

// PriceSource returns price series for tokens. Unresolvable tokens are omitted.
type PriceSource interface {
	GetTokenPrices(
		ctx context.Context,
		tokens []domain.NetworkToken,
		currency string,
		g domain.Granularity,
		start, end int64,
	) ([]domain.TokenPrices, error)
}

// Query is a validated accounting request.
type Query struct {
	Addresses        []string
	Counterparties   []string
	ChainIDs         []int64
	Start            int64 // unix seconds
	End              int64 // unix seconds
	Virtualization   domain.Granularity
	PriceGranularity domain.Granularity
	Currency         string
}

// Result contains the records of a run.
type Result struct {
	Records        []domain.StreamPeriodResult
	StreamPeriods  int
	Transfers      int
	Merged         int
	VirtualPeriods int
}

// Options for creating Orchestrator.
type Options struct {
	Ledger LedgerSource
	Prices PriceSource
	// Now returns the instant ongoing streams are valued up to. Defaults to time.Now.
	Now    func() time.Time
	Logger *zap.SugaredLogger
}

// Orchestrator runs accounting queries.
type Orchestrator struct {
	ledger LedgerSource
	prices PriceSource
	now    func() time.Time
	logger *zap.SugaredLogger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		ledger: opts.Ledger,
		prices: opts.Prices,
		now:    now,
		logger: logger,
	}
}

// Run executes a query. Either every chain and price fetch succeeds or the run fails.
// Phases:
//  1. Fetch ledger records per chain, concurrently
//  2. Fetch prices for every distinct token
//  3. Virtualize stream periods and normalize transfers
//  4. Merge transfers into matching stream buckets and sort
func (o *Orchestrator) Run(ctx context.Context, q Query) (res *Result, err error) {
	started := o.now()
	defer func() {
		var stats observability.RunStats
		if res != nil {
			stats = observability.RunStats{
				StreamPeriods:  res.StreamPeriods,
				Transfers:      res.Transfers,
				Merged:         res.Merged,
				VirtualPeriods: res.VirtualPeriods,
			}
		}
		finished := o.now()
		observability.RecordRun(stats, finished.Sub(started).Seconds(), finished.Unix(), err)
	}()

	// Phase 1: ledger
	ledgers, err := o.fetchLedgers(ctx, q)
	if err != nil {
		return nil, err
	}

	// Phase 2: prices
	index, err := o.fetchPrices(ctx, q, ledgers)
	if err != nil {
		return nil, err
	}

	// Phase 3: virtualization
	now := o.now().Unix()
	addresses := domain.NewAddressSet(q.Addresses...)

	var streams, transfers []domain.StreamPeriodResult
	for _, data := range ledgers {
		for _, p := range data.StreamPeriods {
			prices := index.Lookup(p.ChainID, p.Token.ID)
			streams = append(streams, virtualization.Virtualize(
				addresses, p, q.Start, q.End, q.Virtualization, prices, now))
		}
		for _, t := range data.Transfers {
			prices := index.Lookup(t.ChainID, t.Token.ID)
			transfers = append(transfers, virtualization.NormalizeTransfer(addresses, t, prices))
		}
	}

	// Phase 4: merge
	merged, unmerged := virtualization.Merge(streams, transfers)

	records := make([]domain.StreamPeriodResult, 0, len(merged)+len(unmerged))
	records = append(records, merged...)
	records = append(records, unmerged...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAtTimestamp < records[j].StartedAtTimestamp
	})

	res = &Result{
		Records:       records,
		StreamPeriods: len(streams),
		Transfers:     len(transfers),
		Merged:        len(transfers) - len(unmerged),
	}
	for _, r := range records {
		res.VirtualPeriods += len(r.VirtualPeriods)
	}

	o.logger.Infow("accounting run completed",
		"chains", len(q.ChainIDs),
		"streamPeriods", res.StreamPeriods,
		"transfers", res.Transfers,
		"merged", res.Merged,
		"virtualPeriods", res.VirtualPeriods,
	)
	return res, nil
}

// fetchLedgers queries every chain concurrently. Results keep the order of q.ChainIDs.
func (o *Orchestrator) fetchLedgers(ctx context.Context, q Query) ([]*domain.LedgerData, error) {
	addresses := normalizeAll(q.Addresses)
	counterparties := normalizeAll(q.Counterparties)
	ledgers := make([]*domain.LedgerData, len(q.ChainIDs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, chainID := range q.ChainIDs {
		eg.Go(func() error {
			data, err := o.ledger.Query(egCtx, domain.LedgerQuery{
				ChainID:        chainID,
				Addresses:      addresses,
				Counterparties: counterparties,
				Start:          q.Start,
				End:            q.End,
			})
			if err != nil {
				return fmt.Errorf("query ledger of chain %d: %w", chainID, err)
			}
			if data == nil {
				data = &domain.LedgerData{}
			}
			o.logger.Debugw("ledger fetched",
				"chainId", chainID,
				"streamPeriods", len(data.StreamPeriods),
				"transfers", len(data.Transfers),
			)
			ledgers[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (o *Orchestrator) fetchPrices(ctx context.Context, q Query, ledgers []*domain.LedgerData) (domain.PriceIndex, error) {
	tokens := domain.UniqueNetworkTokens(ledgers)
	if len(tokens) == 0 {
		return domain.PriceIndex{}, nil
	}

	prices, err := o.prices.GetTokenPrices(ctx, tokens, q.Currency, q.PriceGranularity, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("fetch token prices: %w", err)
	}
	if len(prices) < len(tokens) {
		o.logger.Infow("tokens without price data are valued at zero",
			"tokens", len(tokens), "priced", len(prices))
	}
	return domain.NewPriceIndex(prices), nil
}

func normalizeAll(addrs []string) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = domain.NormalizeAddress(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
