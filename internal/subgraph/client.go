// Package subgraph reads stream periods and transfers from the Superfluid protocol subgraph.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stream-accounting/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultPageSize    = 1000
)

// ErrUnknownNetwork is returned for chain ids without a subgraph endpoint.
var ErrUnknownNetwork = errors.New("subgraph: unknown network")

// Client is a GraphQL client for the protocol subgraphs of all supported networks.
type Client struct {
	endpoints   map[int64]string
	client      *http.Client
	pageSize    int
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithEndpoint overrides the subgraph URL of a chain.
func WithEndpoint(chainID int64, url string) ClientOption {
	return func(c *Client) {
		c.endpoints[chainID] = url
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

// WithPageSize sets the number of entities requested per page.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a client using the endpoints of the network table.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		endpoints:   make(map[int64]string),
		client:      &http.Client{Timeout: DefaultTimeout},
		pageSize:    DefaultPageSize,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, n := range domain.Networks() {
		c.endpoints[n.ChainID] = n.SubgraphURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(chainID int64) (string, error) {
	url, ok := c.endpoints[chainID]
	if !ok {
		return "", fmt.Errorf("%w: chain %d", ErrUnknownNetwork, chainID)
	}
	return url, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// GraphQLError is returned when the subgraph rejects a query.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// do performs a GraphQL query with retries and exponential backoff.
func (c *Client) do(ctx context.Context, endpoint, query string, variables map[string]any, result interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
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

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var gqlResp graphqlResponse
		if err := json.Unmarshal(respBody, &gqlResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if len(gqlResp.Errors) > 0 {
			// query errors are not retried
			gqlErr := &GraphQLError{}
			for _, e := range gqlResp.Errors {
				gqlErr.Messages = append(gqlErr.Messages, e.Message)
			}
			return gqlErr
		}

		if result != nil && gqlResp.Data != nil {
			if err := json.Unmarshal(gqlResp.Data, result); err != nil {
				return fmt.Errorf("unmarshal data: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// fetchAll pages through a collection ordered by id. The where clause is combined with an
// id_gt cursor on every page.
func fetchAll[T any](ctx context.Context, c *Client, endpoint, query, field string, where []map[string]any, idOf func(T) string) ([]T, error) {
	var all []T
	cursor := ""

	for {
		and := append(append([]map[string]any(nil), where...), map[string]any{"id_gt": cursor})
		variables := map[string]any{
			"first": c.pageSize,
			"where": map[string]any{"and": and},
		}

		var data map[string][]T
		if err := c.do(ctx, endpoint, query, variables, &data); err != nil {
			return nil, err
		}

		items := data[field]
		all = append(all, items...)
		if len(items) < c.pageSize {
			return all, nil
		}
		cursor = idOf(items[len(items)-1])
	}
}
