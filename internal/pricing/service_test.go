package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-accounting/internal/coingecko"
	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage/memory"
)

const (
	polygonUSDCx  = "0x07b24bbd834c1c546ece89ff95f71d9f13a2ebd1" // hardcoded as usd-coin
	optimismUSDCx = "0x35adeb0638eb192755b6e52544650603fe65a006" // hardcoded as usd-coin
	wrappedTest   = "0x1111111111111111111111111111111111111111"
	underlying    = "0x2222222222222222222222222222222222222222"
	unknownToken  = "0x3333333333333333333333333333333333333333"
)

type fakeProvider struct {
	mu         sync.Mutex
	coins      []coingecko.Coin
	coinsErr   error
	quotes     map[string][]coingecko.Quote
	chartErr   error
	coinCalls  int
	chartCalls map[string]int
	lastFrom   int64
	currencies []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		coins: []coingecko.Coin{
			{ID: "test-coin", Symbol: "tst", Name: "Test", Platforms: map[string]string{"ethereum": underlying}},
		},
		quotes:     make(map[string][]coingecko.Quote),
		chartCalls: make(map[string]int),
	}
}

func (f *fakeProvider) Coins(context.Context) ([]coingecko.Coin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coinCalls++
	if f.coinsErr != nil {
		return nil, f.coinsErr
	}
	return f.coins, nil
}

func (f *fakeProvider) MarketChartRange(_ context.Context, coinID, currency string, from, _ int64) ([]coingecko.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chartCalls[coinID]++
	f.lastFrom = from
	f.currencies = append(f.currencies, currency)
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	return f.quotes[coinID], nil
}

func ts(t *testing.T, s string) int64 {
	t.Helper()
	parsed, err := time.Parse(time.DateTime, s)
	require.NoError(t, err)
	return parsed.Unix()
}

func quote(t *testing.T, at, price string) coingecko.Quote {
	t.Helper()
	return coingecko.Quote{Timestamp: ts(t, at), Price: decimal.RequireFromString(price)}
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestGetTokenPrices_ResolvesAndDownsamples(t *testing.T) {
	provider := newFakeProvider()
	provider.quotes["usd-coin"] = []coingecko.Quote{
		quote(t, "2024-01-02 00:30:00", "0.99"),
		quote(t, "2024-01-01 00:00:00", "1.00"),
		quote(t, "2024-01-01 06:00:00", "1.01"),
	}
	provider.quotes["test-coin"] = []coingecko.Quote{
		quote(t, "2024-01-01 00:00:00", "42"),
	}
	svc := New(Options{Provider: provider})

	tokens := []domain.NetworkToken{
		{ChainID: 137, Token: polygonUSDCx},
		{ChainID: 1, Token: unknownToken},
		{ChainID: 1, Token: wrappedTest, UnderlyingAddress: underlying},
		{ChainID: 10, Token: optimismUSDCx},
	}

	got, err := svc.GetTokenPrices(context.Background(), tokens, "USD", domain.GranularityDay,
		ts(t, "2024-01-01 12:00:00"), ts(t, "2024-01-02 12:00:00"))
	require.NoError(t, err)
	require.Len(t, got, 3, "unresolvable token is omitted")

	assert.Equal(t, polygonUSDCx, got[0].Token)
	assert.Equal(t, "usd-coin", got[0].CoinID)
	assert.Equal(t, wrappedTest, got[1].Token)
	assert.Equal(t, "test-coin", got[1].CoinID)
	assert.Equal(t, optimismUSDCx, got[2].Token)

	wantUSDC := []domain.TimespanPrice{
		{Start: ts(t, "2024-01-01 00:00:00"), Price: decimal.RequireFromString("1.00")},
		{Start: ts(t, "2024-01-02 00:30:00"), Price: decimal.RequireFromString("0.99")},
	}
	if diff := cmp.Diff(wantUSDC, got[0].Prices, decimalEqual); diff != "" {
		t.Errorf("usd-coin prices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantUSDC, got[2].Prices, decimalEqual); diff != "" {
		t.Errorf("shared coin prices mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, provider.chartCalls["usd-coin"], "one fetch per distinct coin")
	assert.Equal(t, 1, provider.chartCalls["test-coin"])
	assert.Equal(t, ts(t, "2024-01-01 00:00:00"), provider.lastFrom, "fetch starts at bucket start")
	for _, c := range provider.currencies {
		assert.Equal(t, "usd", c)
	}
}

func TestGetTokenPrices_CoinListCached(t *testing.T) {
	provider := newFakeProvider()
	svc := New(Options{Provider: provider, CoinListTTL: time.Hour})
	tokens := []domain.NetworkToken{{ChainID: 1, Token: wrappedTest, UnderlyingAddress: underlying}}

	for i := 0; i < 3; i++ {
		_, err := svc.GetTokenPrices(context.Background(), tokens, "usd", domain.GranularityHour, 0, 3600)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, provider.coinCalls)
}

func TestGetTokenPrices_CoinListFailureKeepsHardcoded(t *testing.T) {
	provider := newFakeProvider()
	provider.coinsErr = errors.New("coin list down")
	provider.quotes["usd-coin"] = []coingecko.Quote{quote(t, "2024-01-01 00:00:00", "1")}
	svc := New(Options{Provider: provider})

	tokens := []domain.NetworkToken{
		{ChainID: 137, Token: polygonUSDCx},
		{ChainID: 1, Token: wrappedTest, UnderlyingAddress: underlying},
	}
	got, err := svc.GetTokenPrices(context.Background(), tokens, "usd", domain.GranularityDay,
		ts(t, "2024-01-01 00:00:00"), ts(t, "2024-01-01 12:00:00"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "usd-coin", got[0].CoinID)

	_, err = svc.GetTokenPrices(context.Background(), tokens, "usd", domain.GranularityDay,
		ts(t, "2024-01-01 00:00:00"), ts(t, "2024-01-01 12:00:00"))
	require.NoError(t, err)
	assert.Equal(t, 2, provider.coinCalls, "failed loads are not cached")
}

func TestGetTokenPrices_ArchiveFallback(t *testing.T) {
	provider := newFakeProvider()
	provider.quotes["usd-coin"] = []coingecko.Quote{
		quote(t, "2024-01-01 00:00:00", "1.00"),
		quote(t, "2024-01-01 01:00:00", "1.02"),
	}
	archive := memory.NewPriceQuoteStore()
	svc := New(Options{Provider: provider, Archive: archive})
	tokens := []domain.NetworkToken{{ChainID: 137, Token: polygonUSDCx}}
	start, end := ts(t, "2024-01-01 00:00:00"), ts(t, "2024-01-01 02:00:00")

	first, err := svc.GetTokenPrices(context.Background(), tokens, "usd", domain.GranularityHour, start, end)
	require.NoError(t, err)

	archived, err := archive.GetByTimeRange(context.Background(), "usd-coin", "usd", start, end)
	require.NoError(t, err)
	assert.Len(t, archived, 2)

	provider.chartErr = coingecko.ErrRateLimited
	second, err := svc.GetTokenPrices(context.Background(), tokens, "usd", domain.GranularityHour, start, end)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, decimalEqual); diff != "" {
		t.Errorf("archived prices mismatch (-provider +archive):\n%s", diff)
	}
}

func TestGetTokenPrices_ProviderErrorWithoutArchive(t *testing.T) {
	provider := newFakeProvider()
	provider.chartErr = coingecko.ErrRateLimited
	svc := New(Options{Provider: provider, Archive: memory.NewPriceQuoteStore()})

	_, err := svc.GetTokenPrices(context.Background(),
		[]domain.NetworkToken{{ChainID: 137, Token: polygonUSDCx}}, "usd", domain.GranularityDay, 0, 86400)
	require.Error(t, err)
	assert.ErrorIs(t, err, coingecko.ErrRateLimited)
}

func TestGetTokenPrices_NoTokens(t *testing.T) {
	provider := newFakeProvider()
	svc := New(Options{Provider: provider})

	got, err := svc.GetTokenPrices(context.Background(), nil, "usd", domain.GranularityDay, 0, 86400)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, provider.chartCalls)
}

func TestDownsample(t *testing.T) {
	quotes := []coingecko.Quote{
		quote(t, "2024-01-01 10:05:00", "3"),
		quote(t, "2024-01-01 09:59:59", "2"),
		quote(t, "2024-01-01 09:00:00", "1"),
		quote(t, "2024-01-01 10:00:00", "4"),
	}

	tests := []struct {
		name string
		g    domain.Granularity
		want []domain.TimespanPrice
	}{
		{
			name: "hourly keeps first quote of each hour",
			g:    domain.GranularityHour,
			want: []domain.TimespanPrice{
				{Start: ts(t, "2024-01-01 09:00:00"), Price: decimal.NewFromInt(1)},
				{Start: ts(t, "2024-01-01 10:00:00"), Price: decimal.NewFromInt(4)},
			},
		},
		{
			name: "daily keeps one quote",
			g:    domain.GranularityDay,
			want: []domain.TimespanPrice{
				{Start: ts(t, "2024-01-01 09:00:00"), Price: decimal.NewFromInt(1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downsample(quotes, tt.g)
			if diff := cmp.Diff(tt.want, got, decimalEqual); diff != "" {
				t.Errorf("Downsample() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	assert.Equal(t, "3", quotes[0].Price.String(), "input is not reordered")
	assert.Empty(t, Downsample(nil, domain.GranularityDay))
}
