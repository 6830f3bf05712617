package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/orchestrator"
)

// Generator produces reports from accounting results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate summarizes res, the result of running q.
func (g *Generator) Generate(q orchestrator.Query, res *orchestrator.Result) *Report {
	r := &Report{
		GeneratedAt:    g.now(),
		Start:          q.Start,
		End:            q.End,
		Currency:       q.Currency,
		Virtualization: q.Virtualization.String(),
		Addresses:      q.Addresses,
	}
	if res == nil {
		return r
	}

	r.Records = len(res.Records)
	r.StreamPeriods = res.StreamPeriods
	r.Transfers = res.Transfers
	r.VirtualPeriods = res.VirtualPeriods
	r.Totals = tokenTotals(domain.NewAddressSet(q.Addresses...), res.Records)
	return r
}

// Direction returns whether a record moves value away from or towards the addresses.
func Direction(addresses domain.AddressSet, rec *domain.StreamPeriodResult) string {
	if addresses.Contains(rec.Sender) {
		return DirectionOutgoing
	}
	return DirectionIncoming
}

func tokenTotals(addresses domain.AddressSet, records []domain.StreamPeriodResult) []TokenTotalRow {
	type key struct {
		chainID   int64
		token     string
		direction string
	}
	totals := make(map[key]*TokenTotalRow)

	for i := range records {
		rec := &records[i]
		k := key{
			chainID:   rec.ChainID,
			token:     domain.NormalizeAddress(rec.Token.ID),
			direction: Direction(addresses, rec),
		}
		row, ok := totals[k]
		if !ok {
			row = &TokenTotalRow{
				ChainID:    k.chainID,
				Token:      k.token,
				Symbol:     rec.Token.Symbol,
				Direction:  k.direction,
				Amount:     decimal.Zero,
				AmountFiat: decimal.Zero,
			}
			totals[k] = row
		}
		row.Records++
		for _, vp := range rec.VirtualPeriods {
			row.Amount = row.Amount.Add(vp.Amount)
			row.AmountFiat = row.AmountFiat.Add(vp.AmountFiat)
		}
	}

	rows := make([]TokenTotalRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ChainID != rows[j].ChainID {
			return rows[i].ChainID < rows[j].ChainID
		}
		if rows[i].Token != rows[j].Token {
			return rows[i].Token < rows[j].Token
		}
		return rows[i].Direction < rows[j].Direction
	})
	return rows
}
