// Command accounting values stream periods from the command line.
//
//	accounting periods -chains 137 -addresses 0x... -start 2024-01-01
//	accounting report -chains 137,10 -addresses 0x... -csv out.csv
//	accounting sync -chains 137 -addresses 0x...
//
// Storage and provider settings come from STREAM_ACCOUNTING_* environment variables (or .env).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stream-accounting/internal/app"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&periodsCmd{}, "accounting")
	commander.Register(&reportCmd{}, "accounting")
	commander.Register(&syncCmd{}, "ledger")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// environment is what every subcommand needs before it runs.
type environment struct {
	components *app.Components
	logger     *zap.Logger
}

func (e *environment) close() {
	e.components.Close()
	_ = e.logger.Sync()
}

func loadEnvironment(ctx context.Context) (*environment, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg app.Config
	if err := conf.Parse(nil, app.EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	logger, err := app.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	components, err := app.Build(ctx, cfg, logger.Sugar())
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &environment{components: components, logger: logger}, nil
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
