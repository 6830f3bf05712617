package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
)

type syncCmd struct {
	chains    string
	addresses string
	start     string
	end       string
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "copy the subgraph ledger of accounts into postgres" }
func (*syncCmd) Usage() string {
	return `accounting sync -chains <ids> -addresses <addrs> [-start <date>] [-end <date>]

  Requires STREAM_ACCOUNTING_STORAGE_MODE=postgres. Later runs resume where the previous one
  stopped.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.chains, "chains", "", "Comma-separated chain ids")
	f.StringVar(&c.addresses, "addresses", "", "Comma-separated account addresses")
	f.StringVar(&c.start, "start", "0", "First sync starts here, unix seconds or YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "Sync up to here, unix seconds or YYYY-MM-DD (default now)")
}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	chains, err := parseChainIDs(c.chains)
	if err != nil {
		return fail("-chains: %v", err)
	}
	addresses := splitList(c.addresses)
	if len(addresses) == 0 {
		return fail("-addresses: at least one address is required")
	}
	start, err := unixFlag(c.start, 0)
	if err != nil {
		return fail("-start: %v", err)
	}
	end, err := unixFlag(c.end, time.Now().Unix())
	if err != nil {
		return fail("-end: %v", err)
	}

	env, err := loadEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.close()

	if env.components.Syncer == nil {
		return fail("sync needs postgres storage")
	}

	var errs []error
	for _, chainID := range chains {
		stats, err := env.components.Syncer.Sync(ctx, chainID, addresses, start, end)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Printf("chain %d: %d stream periods, %d new transfers (%d already stored), %d..%d\n",
			chainID, stats.StreamPeriods, stats.TransfersStored, stats.TransfersSkipped, stats.From, stats.To)
	}
	if len(errs) > 0 {
		return fail("%v", errors.Join(errs...))
	}
	return subcommands.ExitSuccess
}

func parseChainIDs(s string) ([]int64, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, errors.New("at least one chain is required")
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func unixFlag(s string, fallback int64) (int64, error) {
	text, err := toUnix(s)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return fallback, nil
	}
	return strconv.ParseInt(text, 10, 64)
}
