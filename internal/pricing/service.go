// Package pricing serves fiat price series for network tokens.
package pricing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stream-accounting/internal/calendar"
	"stream-accounting/internal/coingecko"
	"stream-accounting/internal/domain"
	"stream-accounting/internal/observability"
	"stream-accounting/internal/resolver"
	"stream-accounting/internal/storage"
)

// DefaultCoinListTTL is how long a loaded coin list is reused.
const DefaultCoinListTTL = 6 * time.Hour

const coinListKey = "coins"

// Provider is the upstream price API.
type Provider interface {
	Coins(ctx context.Context) ([]coingecko.Coin, error)
	MarketChartRange(ctx context.Context, coinID, currency string, from, to int64) ([]coingecko.Quote, error)
}

var _ Provider = (*coingecko.Client)(nil)

// Options configures a Service.
type Options struct {
	Provider Provider
	// Archive stores fetched quotes and serves them when the provider fails. Optional.
	Archive     storage.PriceQuoteStore
	CoinListTTL time.Duration
	Logger      *zap.SugaredLogger
}

// Service resolves tokens to coin ids and fetches their price series.
type Service struct {
	provider Provider
	archive  storage.PriceQuoteStore
	logger   *zap.SugaredLogger

	coins     *ttlcache.Cache[string, *resolver.Resolver]
	coinsLock sync.Mutex
}

// New creates a Service.
func New(opts Options) *Service {
	ttl := opts.CoinListTTL
	if ttl <= 0 {
		ttl = DefaultCoinListTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Service{
		provider: opts.Provider,
		archive:  opts.Archive,
		logger:   logger,
		coins: ttlcache.New[string, *resolver.Resolver](
			ttlcache.WithTTL[string, *resolver.Resolver](ttl),
			ttlcache.WithDisableTouchOnHit[string, *resolver.Resolver](),
		),
	}
}

// GetTokenPrices returns one price series per resolvable token, in input order. Series start
// at the price-granularity bucket containing start so the quote in effect at start is present.
// Tokens that resolve to no coin id are omitted.
func (s *Service) GetTokenPrices(
	ctx context.Context,
	tokens []domain.NetworkToken,
	currency string,
	g domain.Granularity,
	start, end int64,
) ([]domain.TokenPrices, error) {
	currency = strings.ToLower(currency)
	r := s.coinResolver(ctx)

	type resolvedToken struct {
		token  domain.NetworkToken
		coinID string
	}
	var (
		resolved   []resolvedToken
		coinIDs    []string
		seen       = make(map[string]struct{})
		unresolved int
	)
	for _, t := range tokens {
		id, ok := r.Resolve(t)
		if !ok {
			unresolved++
			s.logger.Debugw("no coin id for token", "chainId", t.ChainID, "token", t.Token)
			continue
		}
		resolved = append(resolved, resolvedToken{token: t, coinID: id})
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			coinIDs = append(coinIDs, id)
		}
	}
	if unresolved > 0 {
		observability.RecordUnresolvedTokens(unresolved)
	}

	from := calendar.StartOf(start, g)
	series := make([][]domain.TimespanPrice, len(coinIDs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, coinID := range coinIDs {
		eg.Go(func() error {
			prices, err := s.coinPrices(egCtx, coinID, currency, g, from, end)
			if err != nil {
				return fmt.Errorf("prices for %s: %w", coinID, err)
			}
			series[i] = prices
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byCoin := make(map[string][]domain.TimespanPrice, len(coinIDs))
	for i, coinID := range coinIDs {
		byCoin[coinID] = series[i]
	}

	result := make([]domain.TokenPrices, 0, len(resolved))
	for _, rt := range resolved {
		result = append(result, domain.TokenPrices{
			NetworkToken: rt.token,
			CoinID:       rt.coinID,
			Prices:       byCoin[rt.coinID],
		})
	}
	return result, nil
}

// coinResolver returns the cached coin list index, loading it when expired. A failed load is not
// cached and leaves only the hardcoded table usable.
func (s *Service) coinResolver(ctx context.Context) *resolver.Resolver {
	s.coinsLock.Lock() // one load at a time
	defer s.coinsLock.Unlock()

	if item := s.coins.Get(coinListKey); item != nil {
		return item.Value()
	}

	started := time.Now()
	coins, err := s.provider.Coins(ctx)
	observability.RecordProviderLatency("coins", time.Since(started).Seconds())
	observability.RecordCoinListRefresh(err)
	if err != nil {
		s.logger.Warnw("loading coin list, resolving hardcoded tokens only", "error", err)
		return resolver.New(nil)
	}

	r := resolver.New(coins)
	s.coins.Set(coinListKey, r, ttlcache.DefaultTTL)
	s.logger.Infow("coin list loaded", "coins", len(coins))
	return r
}

func (s *Service) coinPrices(
	ctx context.Context,
	coinID, currency string,
	g domain.Granularity,
	from, to int64,
) ([]domain.TimespanPrice, error) {
	started := time.Now()
	quotes, err := s.provider.MarketChartRange(ctx, coinID, currency, from, to)
	observability.RecordProviderLatency("market_chart_range", time.Since(started).Seconds())
	if err != nil {
		archived, archErr := s.archived(ctx, coinID, currency, from, to)
		if archErr != nil {
			s.logger.Warnw("reading price archive", "coinId", coinID, "error", archErr)
		}
		if len(archived) == 0 {
			observability.RecordPriceFetch("none")
			return nil, err
		}
		s.logger.Warnw("price provider failed, using archived quotes",
			"coinId", coinID, "quotes", len(archived), "error", err)
		observability.RecordPriceFetch("archive")
		return Downsample(archived, g), nil
	}

	observability.RecordPriceFetch("provider")
	s.store(ctx, coinID, currency, quotes)
	return Downsample(quotes, g), nil
}

func (s *Service) store(ctx context.Context, coinID, currency string, quotes []coingecko.Quote) {
	if s.archive == nil || len(quotes) == 0 {
		return
	}
	records := make([]*domain.PriceQuote, 0, len(quotes))
	for _, q := range quotes {
		records = append(records, &domain.PriceQuote{
			CoinID:    coinID,
			Currency:  currency,
			Timestamp: q.Timestamp,
			Price:     q.Price,
		})
	}
	if err := s.archive.Upsert(ctx, records); err != nil {
		s.logger.Warnw("archiving quotes", "coinId", coinID, "error", err)
		return
	}
	observability.RecordArchivedQuotes(len(records))
}

func (s *Service) archived(ctx context.Context, coinID, currency string, from, to int64) ([]coingecko.Quote, error) {
	if s.archive == nil {
		return nil, nil
	}
	records, err := s.archive.GetByTimeRange(ctx, coinID, currency, from, to)
	if err != nil {
		return nil, err
	}
	quotes := make([]coingecko.Quote, 0, len(records))
	for _, r := range records {
		quotes = append(quotes, coingecko.Quote{Timestamp: r.Timestamp, Price: r.Price})
	}
	return quotes, nil
}

// Downsample keeps the earliest quote of every granularity bucket. Each kept quote takes
// effect at its own timestamp.
func Downsample(quotes []coingecko.Quote, g domain.Granularity) []domain.TimespanPrice {
	sorted := make([]coingecko.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	prices := make([]domain.TimespanPrice, 0, len(sorted))
	var lastBucket int64
	for _, q := range sorted {
		bucket := calendar.StartOf(q.Timestamp, g)
		if len(prices) > 0 && bucket == lastBucket {
			continue
		}
		lastBucket = bucket
		prices = append(prices, domain.TimespanPrice{Start: q.Timestamp, Price: q.Price})
	}
	return prices
}
