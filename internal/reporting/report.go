package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report summarizes the records of one accounting run.
type Report struct {
	// Metadata
	GeneratedAt    time.Time
	Start          int64 // unix seconds
	End            int64 // unix seconds
	Currency       string
	Virtualization string
	Addresses      []string

	// Counts
	Records        int
	StreamPeriods  int
	Transfers      int
	VirtualPeriods int

	// Totals per token and direction, sorted by chain, token, direction
	Totals []TokenTotalRow
}

// Direction of value relative to the queried addresses.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// TokenTotalRow sums the virtual periods of one token flowing in one direction.
type TokenTotalRow struct {
	ChainID    int64
	Token      string
	Symbol     string
	Direction  string
	Records    int
	Amount     decimal.Decimal // signed, human units
	AmountFiat decimal.Decimal // signed
}
