package lookup

import (
	"errors"
	"sort"

	"stream-accounting/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoPriceData = errors.New("no price data available")
)

// sorted returns the quotes ordered by start, leaving the input untouched.
func sorted(prices []domain.TimespanPrice) []domain.TimespanPrice {
	out := make([]domain.TimespanPrice, len(prices))
	copy(out, prices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// PriceInEffect returns the quote with the latest start at or before target.
// The boolean is false when no quote starts at or before target.
func PriceInEffect(target int64, prices []domain.TimespanPrice) (domain.TimespanPrice, bool) {
	var (
		best  domain.TimespanPrice
		found bool
	)
	for _, p := range prices {
		if p.Start <= target && (!found || p.Start > best.Start) {
			best = p
			found = true
		}
	}
	return best, found
}

// QuotesDuring returns quotes with start in (start, end], ordered by start ASC.
func QuotesDuring(start, end int64, prices []domain.TimespanPrice) []domain.TimespanPrice {
	var during []domain.TimespanPrice
	for _, p := range sorted(prices) {
		if p.Start > start && p.Start <= end {
			during = append(during, p)
		}
	}
	return during
}

// Closest returns the quote whose start is nearest to target.
// Ties go to the earlier quote. Returns ErrNoPriceData if prices is empty.
func Closest(target int64, prices []domain.TimespanPrice) (domain.TimespanPrice, error) {
	if len(prices) == 0 {
		return domain.TimespanPrice{}, ErrNoPriceData
	}

	ordered := sorted(prices)
	best := ordered[0]
	bestDist := distance(best.Start, target)
	for _, p := range ordered[1:] {
		if d := distance(p.Start, target); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, nil
}

// Relevant returns the quotes that price the window [start, end]: the quote in effect at
// start (if any) followed by the quotes starting inside the window. When neither exists,
// the single closest quote is returned. Returns nil only when prices is empty.
func Relevant(start, end int64, prices []domain.TimespanPrice) []domain.TimespanPrice {
	inEffect, ok := PriceInEffect(start, prices)
	during := QuotesDuring(start, end, prices)

	if !ok && len(during) == 0 {
		closest, err := Closest(start, prices)
		if err != nil {
			return nil
		}
		return []domain.TimespanPrice{closest}
	}

	if !ok {
		return during
	}
	return append([]domain.TimespanPrice{inEffect}, during...)
}

func distance(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
