package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"stream-accounting/internal/reporting"
)

type reportCmd struct {
	query    queryFlags
	csvPath  string
	mdPath   string
	plain    bool
	wordWrap int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "summarize accounting records per token" }
func (*reportCmd) Usage() string {
	return `accounting report -chains <ids> -addresses <addrs> [-csv <file>] [-o <file>] [-plain]

  Renders a markdown summary of the window to the terminal, and optionally writes the
  records as CSV and the summary as a markdown file.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.query.register(f)
	f.StringVar(&c.csvPath, "csv", "", "Write the records as CSV to this file")
	f.StringVar(&c.mdPath, "o", "", "Write the markdown summary to this file instead of the terminal")
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown instead of rendering it")
	f.IntVar(&c.wordWrap, "wrap", 120, "Word wrap width of the rendered summary")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.csvPath != "" {
		csv, err := reporting.RenderCSV(q.Addresses, res.Records)
		if err != nil {
			return fail("render csv: %v", err)
		}
		if err := os.WriteFile(c.csvPath, []byte(csv), 0o644); err != nil {
			return fail("write csv: %v", err)
		}
	}

	md := reporting.RenderMarkdown(reporting.NewGenerator().Generate(q, res))

	if c.mdPath != "" {
		if err := os.WriteFile(c.mdPath, []byte(md), 0o644); err != nil {
			return fail("write markdown: %v", err)
		}
		return subcommands.ExitSuccess
	}

	if err := c.print(md); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

func (c *reportCmd) print(md string) error {
	if c.plain {
		fmt.Print(md)
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(c.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}
