package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"stream-accounting/internal/calendar"
	"stream-accounting/internal/domain"
	"stream-accounting/internal/orchestrator"
)

// hourlyPriceHorizon bounds how far back hourly prices are served by the price provider.
const hourlyPriceHorizon = 89*24*time.Hour + 23*time.Hour + 59*time.Minute

// cryptoCurrencies are the non-ISO quote currencies the price provider accepts.
var cryptoCurrencies = map[string]struct{}{
	"BTC": {}, "ETH": {}, "LTC": {}, "BCH": {}, "BNB": {}, "EOS": {}, "XRP": {},
	"XLM": {}, "LINK": {}, "DOT": {}, "YFI": {}, "BITS": {}, "SATS": {},
}

// FieldError describes one rejected query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a query is rejected before any work is done.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ParseQuery validates request parameters into an accounting query. A missing start defaults
// to the first second of the current UTC month and a missing end to now.
func ParseQuery(values url.Values, now time.Time) (orchestrator.Query, error) {
	var (
		q    orchestrator.Query
		verr ValidationError
	)

	q.ChainIDs = parseChains(values.Get("chains"), &verr)

	q.Addresses = parseAddresses(values.Get("addresses"))
	if len(q.Addresses) == 0 {
		verr.add("addresses", "At least one address is required!")
	}
	q.Counterparties = parseAddresses(values.Get("counterparties"))

	before := len(verr.Errors)
	q.Start = parseTimestamp(values.Get("start"), "start", calendar.StartOfMonth(now), &verr)
	q.End = parseTimestamp(values.Get("end"), "end", now.Unix(), &verr)
	if len(verr.Errors) == before && q.Start > q.End {
		verr.add("start", "must not be after end")
	}

	q.Virtualization = parseGranularity(values.Get("virtualization"), "virtualization", &verr)
	q.PriceGranularity = parseGranularity(values.Get("priceGranularity"), "priceGranularity", &verr)

	q.Currency = strings.ToUpper(strings.TrimSpace(values.Get("currency")))
	if !knownCurrency(q.Currency) {
		verr.add("currency", "unknown currency %q", values.Get("currency"))
	}

	if q.PriceGranularity == domain.GranularityHour && q.Start < now.Add(-hourlyPriceHorizon).Unix() {
		verr.add("priceGranularity", "Hourly price granularity can not be used with data older than 90 days.")
	}

	if len(verr.Errors) > 0 {
		return orchestrator.Query{}, &verr
	}
	return q, nil
}

func parseChains(raw string, verr *ValidationError) []int64 {
	if strings.TrimSpace(raw) == "" {
		verr.add("chains", "at least one chain is required")
		return nil
	}
	var chains []int64
	seen := make(map[int64]struct{})
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			verr.add("chains", "invalid chain id %q", part)
			continue
		}
		if _, ok := domain.NetworkByChainID(id); !ok {
			verr.add("chains", "unsupported chain %d", id)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		chains = append(chains, id)
	}
	return chains
}

func parseAddresses(raw string) []string {
	var addrs []string
	for _, part := range strings.Split(raw, ",") {
		if a := domain.NormalizeAddress(part); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

func parseTimestamp(raw, field string, fallback int64, verr *ValidationError) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		verr.add(field, "must be a unix timestamp in seconds")
		return fallback
	}
	return ts
}

func parseGranularity(raw, field string, verr *ValidationError) domain.Granularity {
	g, err := domain.ParseGranularity(raw)
	if err != nil {
		verr.add(field, "must be one of hour, day, week, month, year")
		return ""
	}
	return g
}

func knownCurrency(code string) bool {
	if code == "" {
		return false
	}
	if _, ok := cryptoCurrencies[code]; ok {
		return true
	}
	return money.GetCurrency(code) != nil
}
