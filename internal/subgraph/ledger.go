package subgraph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"stream-accounting/internal/domain"
)

// superTokenDecimals is the scale of every Super Token amount.
const superTokenDecimals = 18

const streamPeriodsQuery = `query StreamPeriods($first: Int!, $where: StreamPeriod_filter!) {
  streamPeriods(first: $first, where: $where, orderBy: id, orderDirection: asc) {
    id
    flowRate
    token { id symbol name underlyingAddress decimals }
    sender { id }
    receiver { id }
    startedAtTimestamp
    startedAtBlockNumber
    startedAtEvent { transactionHash }
    stoppedAtTimestamp
    stoppedAtBlockNumber
    stoppedAtEvent { transactionHash }
    totalAmountStreamed
  }
}`

const transferEventsQuery = `query TransferEvents($first: Int!, $where: TransferEvent_filter!) {
  transferEvents(first: $first, where: $where, orderBy: id, orderDirection: asc) {
    id
    token
    from { id }
    to { id }
    value
    timestamp
    blockNumber
    transactionHash
  }
}`

const tokensQuery = `query Tokens($first: Int!, $where: Token_filter!) {
  tokens(first: $first, where: $where, orderBy: id, orderDirection: asc) {
    id symbol name underlyingAddress decimals
  }
}`

type rawToken struct {
	ID                string `json:"id"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	UnderlyingAddress string `json:"underlyingAddress"`
	Decimals          int32  `json:"decimals"`
}

func (t rawToken) toDomain() domain.Token {
	return domain.Token{
		ID:                domain.NormalizeAddress(t.ID),
		Symbol:            t.Symbol,
		Name:              t.Name,
		UnderlyingAddress: domain.NormalizeAddress(t.UnderlyingAddress),
		Decimals:          t.Decimals,
	}
}

type rawAccount struct {
	ID string `json:"id"`
}

type rawEvent struct {
	TransactionHash string `json:"transactionHash"`
}

type rawStreamPeriod struct {
	ID                   string     `json:"id"`
	FlowRate             string     `json:"flowRate"`
	Token                rawToken   `json:"token"`
	Sender               rawAccount `json:"sender"`
	Receiver             rawAccount `json:"receiver"`
	StartedAtTimestamp   string     `json:"startedAtTimestamp"`
	StartedAtBlockNumber string     `json:"startedAtBlockNumber"`
	StartedAtEvent       rawEvent   `json:"startedAtEvent"`
	StoppedAtTimestamp   *string    `json:"stoppedAtTimestamp"`
	StoppedAtBlockNumber *string    `json:"stoppedAtBlockNumber"`
	StoppedAtEvent       *rawEvent  `json:"stoppedAtEvent"`
	TotalAmountStreamed  string     `json:"totalAmountStreamed"`
}

type rawTransfer struct {
	ID              string     `json:"id"`
	Token           string     `json:"token"`
	From            rawAccount `json:"from"`
	To              rawAccount `json:"to"`
	Value           string     `json:"value"`
	Timestamp       string     `json:"timestamp"`
	BlockNumber     string     `json:"blockNumber"`
	TransactionHash string     `json:"transactionHash"`
}

// Query returns the stream periods and transfers of one chain matching q.
func (c *Client) Query(ctx context.Context, q domain.LedgerQuery) (*domain.LedgerData, error) {
	endpoint, err := c.endpoint(q.ChainID)
	if err != nil {
		return nil, err
	}

	rawPeriods, err := fetchAll(ctx, c, endpoint, streamPeriodsQuery, "streamPeriods",
		streamPeriodFilter(q), func(p rawStreamPeriod) string { return p.ID })
	if err != nil {
		return nil, fmt.Errorf("stream periods chain %d: %w", q.ChainID, err)
	}

	rawTransfers, err := fetchAll(ctx, c, endpoint, transferEventsQuery, "transferEvents",
		transferFilter(q), func(t rawTransfer) string { return t.ID })
	if err != nil {
		return nil, fmt.Errorf("transfer events chain %d: %w", q.ChainID, err)
	}

	tokens, err := c.transferTokens(ctx, endpoint, rawTransfers)
	if err != nil {
		return nil, fmt.Errorf("tokens chain %d: %w", q.ChainID, err)
	}

	data := &domain.LedgerData{
		StreamPeriods: make([]*domain.StreamPeriod, 0, len(rawPeriods)),
		Transfers:     make([]*domain.TransferEvent, 0, len(rawTransfers)),
	}
	for _, raw := range rawPeriods {
		p, err := raw.toDomain(q.ChainID)
		if err != nil {
			return nil, fmt.Errorf("stream period %s: %w", raw.ID, err)
		}
		data.StreamPeriods = append(data.StreamPeriods, p)
	}
	for _, raw := range rawTransfers {
		t, err := raw.toDomain(q.ChainID, tokens)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: %w", raw.ID, err)
		}
		data.Transfers = append(data.Transfers, t)
	}
	return data, nil
}

// transferTokens loads metadata of every token referenced by the transfers.
func (c *Client) transferTokens(ctx context.Context, endpoint string, transfers []rawTransfer) (map[string]domain.Token, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range transfers {
		id := domain.NormalizeAddress(t.Token)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := fetchAll(ctx, c, endpoint, tokensQuery, "tokens",
		[]map[string]any{{"id_in": ids}}, func(t rawToken) string { return t.ID })
	if err != nil {
		return nil, err
	}

	tokens := make(map[string]domain.Token, len(raw))
	for _, t := range raw {
		tok := t.toDomain()
		tokens[tok.ID] = tok
	}
	return tokens, nil
}

func partiesFilter(fromField, toField string, q domain.LedgerQuery) map[string]any {
	if len(q.Counterparties) == 0 {
		return map[string]any{"or": []map[string]any{
			{fromField + "_in": q.Addresses},
			{toField + "_in": q.Addresses},
		}}
	}
	return map[string]any{"or": []map[string]any{
		{fromField + "_in": q.Addresses, toField + "_in": q.Counterparties},
		{fromField + "_in": q.Counterparties, toField + "_in": q.Addresses},
	}}
}

func streamPeriodFilter(q domain.LedgerQuery) []map[string]any {
	return []map[string]any{
		partiesFilter("sender", "receiver", q),
		{"startedAtTimestamp_lte": strconv.FormatInt(q.End, 10)},
		{"or": []map[string]any{
			{"stoppedAtTimestamp": nil},
			{"stoppedAtTimestamp_gte": strconv.FormatInt(q.Start, 10)},
		}},
	}
}

func transferFilter(q domain.LedgerQuery) []map[string]any {
	return []map[string]any{
		partiesFilter("from", "to", q),
		{
			"timestamp_gte": strconv.FormatInt(q.Start, 10),
			"timestamp_lte": strconv.FormatInt(q.End, 10),
		},
	}
}

func (p rawStreamPeriod) toDomain(chainID int64) (*domain.StreamPeriod, error) {
	flowRate, err := decimal.NewFromString(p.FlowRate)
	if err != nil {
		return nil, fmt.Errorf("flow rate: %w", err)
	}
	total := decimal.Zero
	if p.TotalAmountStreamed != "" {
		if total, err = decimal.NewFromString(p.TotalAmountStreamed); err != nil {
			return nil, fmt.Errorf("total amount streamed: %w", err)
		}
	}
	started, err := parseInt(p.StartedAtTimestamp)
	if err != nil {
		return nil, fmt.Errorf("started at: %w", err)
	}
	startedBlock, err := parseInt(p.StartedAtBlockNumber)
	if err != nil {
		return nil, fmt.Errorf("started at block: %w", err)
	}

	sp := &domain.StreamPeriod{
		ID:                   p.ID,
		Token:                p.Token.toDomain(),
		ChainID:              chainID,
		Sender:               domain.NormalizeAddress(p.Sender.ID),
		Receiver:             domain.NormalizeAddress(p.Receiver.ID),
		FlowRate:             flowRate,
		StartedAtTimestamp:   started,
		StartedAtBlockNumber: startedBlock,
		StartedAtTxHash:      p.StartedAtEvent.TransactionHash,
		TotalAmountStreamed:  total,
	}
	if p.StoppedAtTimestamp != nil {
		stopped, err := parseInt(*p.StoppedAtTimestamp)
		if err != nil {
			return nil, fmt.Errorf("stopped at: %w", err)
		}
		sp.StoppedAtTimestamp = &stopped
	}
	if p.StoppedAtBlockNumber != nil {
		block, err := parseInt(*p.StoppedAtBlockNumber)
		if err != nil {
			return nil, fmt.Errorf("stopped at block: %w", err)
		}
		sp.StoppedAtBlockNumber = &block
	}
	if p.StoppedAtEvent != nil {
		hash := p.StoppedAtEvent.TransactionHash
		sp.StoppedAtTxHash = &hash
	}
	return sp, nil
}

func (t rawTransfer) toDomain(chainID int64, tokens map[string]domain.Token) (*domain.TransferEvent, error) {
	value, err := decimal.NewFromString(t.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	ts, err := parseInt(t.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	block, err := parseInt(t.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}

	tokenID := domain.NormalizeAddress(t.Token)
	token, ok := tokens[tokenID]
	if !ok {
		token = domain.Token{ID: tokenID, Decimals: superTokenDecimals}
	}

	return &domain.TransferEvent{
		ID:              t.ID,
		Token:           token,
		ChainID:         chainID,
		From:            domain.NormalizeAddress(t.From.ID),
		To:              domain.NormalizeAddress(t.To.ID),
		Value:           value,
		Timestamp:       ts,
		BlockNumber:     block,
		TransactionHash: t.TransactionHash,
	}, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
