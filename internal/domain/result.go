package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FiatDecimals is the number of fractional digits rendered for fiat amounts.
const FiatDecimals = 18

// RecordKind tells stream-derived records apart from transfer-derived ones.
type RecordKind int

const (
	KindStream RecordKind = iota
	KindTransfer
)

func (k RecordKind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// VirtualPeriod is a calendar-aligned slice of a stream period or transfer.
type VirtualPeriod struct {
	StartTime  int64           `json:"startTime"`
	EndTime    int64           `json:"endTime"`
	Amount     decimal.Decimal `json:"amount"`     // human units, negative when outgoing
	AmountFiat decimal.Decimal `json:"amountFiat"` // negative when outgoing
}

type virtualPeriodJSON struct {
	StartTime  int64  `json:"startTime"`
	EndTime    int64  `json:"endTime"`
	Amount     string `json:"amount"`
	AmountFiat string `json:"amountFiat"`
}

// MarshalJSON renders amounts as strings, fiat with a fixed number of fractional digits.
func (vp VirtualPeriod) MarshalJSON() ([]byte, error) {
	return json.Marshal(virtualPeriodJSON{
		StartTime:  vp.StartTime,
		EndTime:    vp.EndTime,
		Amount:     vp.Amount.String(),
		AmountFiat: vp.AmountFiat.StringFixed(FiatDecimals),
	})
}

// UnmarshalJSON parses the representation produced by MarshalJSON.
func (vp *VirtualPeriod) UnmarshalJSON(data []byte) error {
	var raw virtualPeriodJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return err
	}
	fiat, err := decimal.NewFromString(raw.AmountFiat)
	if err != nil {
		return err
	}
	*vp = VirtualPeriod{StartTime: raw.StartTime, EndTime: raw.EndTime, Amount: amount, AmountFiat: fiat}
	return nil
}

// StreamPeriodResult is the output record for both stream periods and transfers.
type StreamPeriodResult struct {
	ID                   string          `json:"id"`
	Kind                 RecordKind      `json:"-"`
	FlowRate             decimal.Decimal `json:"flowRate"`
	Token                Token           `json:"token"`
	ChainID              int64           `json:"chainId"`
	Sender               string          `json:"sender"`
	Receiver             string          `json:"receiver"`
	StartedAtTimestamp   int64           `json:"startedAtTimestamp"`
	StartedAtBlockNumber int64           `json:"startedAtBlockNumber"`
	StartedAtEvent       string          `json:"startedAtEvent"`
	StoppedAtTimestamp   *int64          `json:"stoppedAtTimestamp,omitempty"`
	StoppedAtBlockNumber *int64          `json:"stoppedAtBlockNumber,omitempty"`
	StoppedAtEvent       *string         `json:"stoppedAtEvent,omitempty"`
	TotalAmountStreamed  decimal.Decimal `json:"totalAmountStreamed"`
	VirtualPeriods       []VirtualPeriod `json:"virtualPeriods"`
}

// Clone returns a deep copy that shares no mutable state with r.
func (r StreamPeriodResult) Clone() StreamPeriodResult {
	c := r
	c.StoppedAtTimestamp = clonePtr(r.StoppedAtTimestamp)
	c.StoppedAtBlockNumber = clonePtr(r.StoppedAtBlockNumber)
	c.StoppedAtEvent = clonePtr(r.StoppedAtEvent)
	if r.VirtualPeriods != nil {
		c.VirtualPeriods = make([]VirtualPeriod, len(r.VirtualPeriods))
		copy(c.VirtualPeriods, r.VirtualPeriods)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
