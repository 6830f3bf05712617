package virtualization

import (
	"github.com/shopspring/decimal"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/lookup"
)

// ValueStream returns the fiat value of streaming at flowRate over [start, end].
//
// The window is cut at every quote boundary: the quote in effect at start prices the first
// segment, each quote starting inside the window prices the segment up to the next quote
// (or end). Without any of those, the closest quote prices the whole window. An empty
// series values to zero. The result is unsigned with respect to direction and unrounded.
func ValueStream(flowRate decimal.Decimal, decimals int32, start, end int64, prices []domain.TimespanPrice) decimal.Decimal {
	relevant := lookup.Relevant(start, end, prices)

	total := decimal.Zero
	segStart := start
	for i, q := range relevant {
		segEnd := end
		if i+1 < len(relevant) {
			segEnd = min(relevant[i+1].Start, end)
		}

		raw := flowRate.Mul(decimal.NewFromInt(segEnd - segStart))
		total = total.Add(toHuman(raw, decimals).Mul(q.Price))
		segStart = segEnd
	}
	return total
}

// ValueTransfer returns the fiat value of a single-instant transfer of value at ts.
func ValueTransfer(value decimal.Decimal, decimals int32, ts int64, prices []domain.TimespanPrice) decimal.Decimal {
	relevant := lookup.Relevant(ts, ts, prices)
	if len(relevant) == 0 {
		return decimal.Zero
	}
	return toHuman(value, decimals).Mul(relevant[0].Price)
}
