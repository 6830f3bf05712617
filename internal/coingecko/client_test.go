package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Coins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/list", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_platform"))
		assert.Equal(t, "secret", r.Header.Get(apiKeyHeader))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"usd-coin","symbol":"usdc","name":"USDC","platforms":{"ethereum":"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48","polygon-pos":"0x3c499c542cef5e3811e1192ce70d8cc03d5c3359"}},
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","platforms":{}}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithAPIKey("secret"))
	coins, err := client.Coins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 2)

	assert.Equal(t, "usd-coin", coins[0].ID)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", coins[0].Platforms["ethereum"])
	assert.Empty(t, coins[1].Platforms)
}

func TestClient_MarketChartRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/usd-coin/market_chart/range", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "eur", q.Get("vs_currency"))
		assert.Equal(t, "1700000000", q.Get("from"))
		assert.Equal(t, "1700086400", q.Get("to"))

		w.Write([]byte(`{"prices":[[1700000000000,0.9213456789012345678],[1700003600123,0.92]],"market_caps":[],"total_volumes":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quotes, err := client.MarketChartRange(context.Background(), "usd-coin", "EUR", 1700000000, 1700086400)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, int64(1700000000), quotes[0].Timestamp)
	assert.True(t, quotes[0].Price.Equal(decimal.RequireFromString("0.9213456789012345678")), "price kept exact: %s", quotes[0].Price)
	assert.Equal(t, int64(1700003600), quotes[1].Timestamp)
}

func TestClient_RetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetryDelay(time.Millisecond))
	_, err := client.Coins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_RateLimited(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetryDelay(time.Millisecond), WithMaxRetries(2))
	_, err := client.MarketChartRange(context.Background(), "usd-coin", "usd", 0, 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"coin not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetryDelay(time.Millisecond))
	_, err := client.MarketChartRange(context.Background(), "nope", "usd", 0, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, WithRetryDelay(time.Second))
	_, err := client.Coins(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
