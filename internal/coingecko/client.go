package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.coingecko.com/api/v3"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0

	apiKeyHeader = "x-cg-pro-api-key"
)

// ErrRateLimited is returned when the provider keeps answering 429 after all retries.
var ErrRateLimited = errors.New("coingecko: rate limited")

// Coin is an entry of the provider coin list.
type Coin struct {
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Platforms map[string]string `json:"platforms"` // platform id -> contract address
}

// Quote is a single price point.
type Quote struct {
	Timestamp int64 // unix seconds
	Price     decimal.Decimal
}

// Client is a CoinGecko REST API client.
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a client for the API rooted at baseURL.
// An empty baseURL selects the public API.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Coins returns the full coin list including platform contract addresses.
func (c *Client) Coins(ctx context.Context) ([]Coin, error) {
	var coins []Coin
	if err := c.get(ctx, "/coins/list", url.Values{"include_platform": {"true"}}, &coins); err != nil {
		return nil, fmt.Errorf("coins list: %w", err)
	}
	for i := range coins {
		for platform, addr := range coins[i].Platforms {
			coins[i].Platforms[platform] = strings.ToLower(addr)
		}
	}
	return coins, nil
}

type marketChartResponse struct {
	Prices [][]decimal.Decimal `json:"prices"` // [ms timestamp, price]
}

// MarketChartRange returns the price history of a coin in currency between from and to
// (unix seconds), ordered by timestamp.
func (c *Client) MarketChartRange(ctx context.Context, coinID, currency string, from, to int64) ([]Quote, error) {
	query := url.Values{
		"vs_currency": {strings.ToLower(currency)},
		"from":        {strconv.FormatInt(from, 10)},
		"to":          {strconv.FormatInt(to, 10)},
	}

	var resp marketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart/range", query, &resp); err != nil {
		return nil, fmt.Errorf("market chart %s: %w", coinID, err)
	}

	quotes := make([]Quote, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		if len(p) != 2 {
			continue
		}
		quotes = append(quotes, Quote{
			Timestamp: p[0].IntPart() / 1000,
			Price:     p[1],
		})
	}
	return quotes, nil
}

// get performs a GET request with retries and exponential backoff.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = ErrRateLimited
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		case resp.StatusCode != http.StatusOK:
			// client errors are not retried
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
