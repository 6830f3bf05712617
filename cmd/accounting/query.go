package main

import (
	"flag"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stream-accounting/internal/api"
	"stream-accounting/internal/orchestrator"
)

// queryFlags are the accounting query parameters shared by periods and report.
type queryFlags struct {
	chains           string
	addresses        string
	counterparties   string
	start            string
	end              string
	virtualization   string
	priceGranularity string
	currency         string
}

func (q *queryFlags) register(f *flag.FlagSet) {
	f.StringVar(&q.chains, "chains", "", "Comma-separated chain ids")
	f.StringVar(&q.addresses, "addresses", "", "Comma-separated account addresses")
	f.StringVar(&q.counterparties, "counterparties", "", "Comma-separated counterparty addresses (default any)")
	f.StringVar(&q.start, "start", "", "Window start, unix seconds or YYYY-MM-DD (default start of month)")
	f.StringVar(&q.end, "end", "", "Window end, unix seconds or YYYY-MM-DD (default now)")
	f.StringVar(&q.virtualization, "virtualization", "month", "Period granularity (hour, day, week, month, year)")
	f.StringVar(&q.priceGranularity, "price-granularity", "day", "Price granularity (hour, day, week, month, year)")
	f.StringVar(&q.currency, "currency", "usd", "Fiat or crypto currency to value in")
}

// parse validates the flags exactly like the HTTP endpoint does.
func (q *queryFlags) parse(now time.Time) (orchestrator.Query, error) {
	start, err := toUnix(q.start)
	if err != nil {
		return orchestrator.Query{}, fmt.Errorf("-start: %w", err)
	}
	end, err := toUnix(q.end)
	if err != nil {
		return orchestrator.Query{}, fmt.Errorf("-end: %w", err)
	}

	values := url.Values{}
	values.Set("chains", q.chains)
	values.Set("addresses", q.addresses)
	values.Set("counterparties", q.counterparties)
	values.Set("start", start)
	values.Set("end", end)
	values.Set("virtualization", q.virtualization)
	values.Set("priceGranularity", q.priceGranularity)
	values.Set("currency", q.currency)
	return api.ParseQuery(values, now)
}

// toUnix accepts unix seconds or a UTC date and returns unix seconds as text.
func toUnix(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("want unix seconds or YYYY-MM-DD, got %q", s)
	}
	return strconv.FormatInt(t.Unix(), 10), nil
}
