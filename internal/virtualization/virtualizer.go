package virtualization

import (
	"iter"

	"github.com/shopspring/decimal"

	"stream-accounting/internal/calendar"
	"stream-accounting/internal/domain"
)

// Window is a closed interval of unix seconds.
type Window struct {
	Start int64
	End   int64
}

// Duration returns End - Start in seconds.
func (w Window) Duration() int64 { return w.End - w.Start }

// Buckets yields the calendar-aligned windows partitioning [start, end]. Every window
// except the last ends on a bucket boundary, and the next window starts at that boundary.
// A single instant yields one degenerate window; start > end yields nothing.
func Buckets(start, end int64, g domain.Granularity) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if start > end {
			return
		}
		for cur := start; ; {
			bucketEnd := calendar.EndOf(cur, g)
			clipped := min(bucketEnd, end)
			if !yield(Window{Start: cur, End: clipped}) {
				return
			}
			if clipped >= end {
				return
			}
			cur = bucketEnd
		}
	}
}

// StreamWindow clips a stream period to the query window. The returned window may be
// empty (Start > End) when the stream does not overlap the query window.
func StreamWindow(p *domain.StreamPeriod, windowStart, windowEnd, now int64) Window {
	return Window{
		Start: max(windowStart, p.StartedAtTimestamp),
		End:   min(windowEnd, p.EndTimestamp(now)),
	}
}

// VirtualizeStream splits a stream period into virtual periods of granularity g over the
// query window. Amounts are signed negative when the queried addresses contain the sender.
func VirtualizeStream(
	addresses domain.AddressSet,
	p *domain.StreamPeriod,
	windowStart, windowEnd int64,
	g domain.Granularity,
	prices []domain.TimespanPrice,
	now int64,
) []domain.VirtualPeriod {
	outgoing := addresses.Contains(p.Sender)
	w := StreamWindow(p, windowStart, windowEnd, now)

	var periods []domain.VirtualPeriod
	for b := range Buckets(w.Start, w.End, g) {
		raw := p.FlowRate.Mul(decimal.NewFromInt(b.Duration()))
		fiat := ValueStream(p.FlowRate, p.Token.Decimals, b.Start, b.End, prices)

		periods = append(periods, domain.VirtualPeriod{
			StartTime:  b.Start,
			EndTime:    b.End,
			Amount:     directed(toHuman(raw, p.Token.Decimals), outgoing),
			AmountFiat: directed(fiat, outgoing),
		})
	}
	return periods
}

// Virtualize maps a stream period to its output record with virtual periods attached.
func Virtualize(
	addresses domain.AddressSet,
	p *domain.StreamPeriod,
	windowStart, windowEnd int64,
	g domain.Granularity,
	prices []domain.TimespanPrice,
	now int64,
) domain.StreamPeriodResult {
	r := StreamToResult(p)
	r.VirtualPeriods = VirtualizeStream(addresses, p, windowStart, windowEnd, g, prices, now)
	if r.VirtualPeriods == nil {
		r.VirtualPeriods = []domain.VirtualPeriod{}
	}
	return r
}

// directed returns |d| signed by direction: negative for outgoing, positive otherwise.
func directed(d decimal.Decimal, outgoing bool) decimal.Decimal {
	if outgoing {
		return d.Abs().Neg()
	}
	return d.Abs()
}

// toHuman rescales a smallest-unit amount by the token decimals.
func toHuman(raw decimal.Decimal, decimals int32) decimal.Decimal {
	if decimals == 0 {
		return raw
	}
	return raw.Shift(-decimals)
}
