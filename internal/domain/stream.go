package domain

import "github.com/shopspring/decimal"

// Token describes a Super Token as reported by the ledger.
type Token struct {
	ID                string `json:"id"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	UnderlyingAddress string `json:"underlyingAddress"`
	Decimals          int32  `json:"-"` // scale of raw amounts; 0 means amounts are already human units
}

// StreamPeriod is a constant-rate stream between a start and an optional stop.
// Corresponds to stream_periods table in PostgreSQL.
type StreamPeriod struct {
	ID                   string
	Token                Token
	ChainID              int64
	Sender               string
	Receiver             string
	FlowRate             decimal.Decimal // smallest unit per second
	StartedAtTimestamp   int64           // unix seconds
	StartedAtBlockNumber int64
	StartedAtTxHash      string
	StoppedAtTimestamp   *int64 // nil while the stream is ongoing
	StoppedAtBlockNumber *int64
	StoppedAtTxHash      *string
	TotalAmountStreamed  decimal.Decimal
}

// EndTimestamp returns the stop timestamp, or now for an ongoing stream.
func (p *StreamPeriod) EndTimestamp(now int64) int64 {
	if p.StoppedAtTimestamp != nil {
		return *p.StoppedAtTimestamp
	}
	return now
}

// TransferEvent is a discrete token transfer.
// Corresponds to transfer_events table in PostgreSQL.
type TransferEvent struct {
	ID              string
	Token           Token
	ChainID         int64
	From            string
	To              string
	Value           decimal.Decimal // smallest unit
	Timestamp       int64           // unix seconds
	BlockNumber     int64
	TransactionHash string
}

// LedgerQuery selects the raw records of one chain.
type LedgerQuery struct {
	ChainID        int64
	Addresses      []string // lowercase
	Counterparties []string // lowercase, empty means any
	Start          int64    // unix seconds, inclusive
	End            int64    // unix seconds, inclusive
}

// LedgerData holds raw stream periods and transfers returned for one chain.
type LedgerData struct {
	StreamPeriods []*StreamPeriod
	Transfers     []*TransferEvent
}

// MatchesStream reports whether a stream period satisfies the query filters.
func (q LedgerQuery) MatchesStream(p *StreamPeriod) bool {
	if p.ChainID != q.ChainID {
		return false
	}
	if p.StartedAtTimestamp > q.End {
		return false
	}
	if p.StoppedAtTimestamp != nil && *p.StoppedAtTimestamp < q.Start {
		return false
	}
	return q.matchesParties(p.Sender, p.Receiver)
}

// MatchesTransfer reports whether a transfer satisfies the query filters.
func (q LedgerQuery) MatchesTransfer(t *TransferEvent) bool {
	if t.ChainID != q.ChainID {
		return false
	}
	if t.Timestamp < q.Start || t.Timestamp > q.End {
		return false
	}
	return q.matchesParties(t.From, t.To)
}

func (q LedgerQuery) matchesParties(from, to string) bool {
	addresses := NewAddressSet(q.Addresses...)
	if len(q.Counterparties) == 0 {
		return addresses.Contains(from) || addresses.Contains(to)
	}
	counterparties := NewAddressSet(q.Counterparties...)
	return (addresses.Contains(from) && counterparties.Contains(to)) ||
		(addresses.Contains(to) && counterparties.Contains(from))
}

// Clone returns a copy of p that shares no pointers with it.
func (p *StreamPeriod) Clone() *StreamPeriod {
	c := *p
	c.StoppedAtTimestamp = clonePtr(p.StoppedAtTimestamp)
	c.StoppedAtBlockNumber = clonePtr(p.StoppedAtBlockNumber)
	c.StoppedAtTxHash = clonePtr(p.StoppedAtTxHash)
	return &c
}
