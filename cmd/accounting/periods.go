package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/google/subcommands"

	"stream-accounting/internal/domain"
)

type periodsCmd struct {
	query  queryFlags
	indent bool
}

func (*periodsCmd) Name() string     { return "periods" }
func (*periodsCmd) Synopsis() string { return "print valued stream periods and transfers as JSON" }
func (*periodsCmd) Usage() string {
	return `accounting periods -chains <ids> -addresses <addrs> [-start <date>] [-end <date>] [-virtualization <g>] [-price-granularity <g>] [-currency <c>]

  Prints the same records the stream-periods endpoint returns.
`
}

func (c *periodsCmd) SetFlags(f *flag.FlagSet) {
	c.query.register(f)
	f.BoolVar(&c.indent, "indent", true, "Indent the JSON output")
}

func (c *periodsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := c.query.parse(time.Now())
	if err != nil {
		return fail("%v", err)
	}

	env, err := loadEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.close()

	res, err := env.components.Orchestrator.Run(ctx, q)
	if err != nil {
		return fail("%v", err)
	}

	records := res.Records
	if records == nil {
		records = []domain.StreamPeriodResult{}
	}

	enc := json.NewEncoder(os.Stdout)
	if c.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}
