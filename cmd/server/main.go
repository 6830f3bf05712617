// Package main runs the accounting HTTP service:
// - REST and websocket endpoints for valued stream periods
// - optional background sync of the subgraph ledger into postgres
// - Prometheus metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"

	"stream-accounting/internal/api"
	"stream-accounting/internal/app"
	"stream-accounting/internal/ingestion"
	"stream-accounting/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	logger, err := app.NewLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()
	sLogger := logger.Sugar()

	var cfg struct {
		app.Config
		Server struct {
			HttpHost        string        `conf:"default:0.0.0.0:8000"`
			MetricsHttpHost string        `conf:"optional"`
			RequestTimeout  time.Duration `conf:"default:60s"`
			LiveInterval    time.Duration `conf:"default:30s"`
			ShutdownTimeout time.Duration `conf:"default:30s"`
		}
		Sync struct {
			Chains    []int64       `conf:"optional"`
			Addresses []string      `conf:"optional"`
			Start     int64         `conf:"optional"`
			Interval  time.Duration `conf:"default:5m"`
		}
	}

	if err := conf.Parse(os.Args[1:], app.EnvPrefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(app.EnvPrefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(app.EnvPrefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	sLogger.Infof("main: Config :\n%v\n", out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg.Config, sLogger)
	if err != nil {
		return fmt.Errorf("building components: %w", err)
	}
	defer components.Close()

	if components.Syncer != nil && len(cfg.Sync.Chains) > 0 && len(cfg.Sync.Addresses) > 0 {
		plan := ingestion.Plan{ChainIDs: cfg.Sync.Chains, Addresses: cfg.Sync.Addresses, Start: cfg.Sync.Start}
		go func() {
			if err := components.Syncer.Run(ctx, plan, cfg.Sync.Interval); err != nil && !errors.Is(err, context.Canceled) {
				sLogger.Errorw("ledger sync stopped", "error", err)
			}
		}()
	} else {
		sLogger.Warn("main: ledger sync disabled")
	}

	server := api.NewServer(api.Options{
		Runner:         components.Orchestrator,
		RequestTimeout: cfg.Server.RequestTimeout,
		LiveInterval:   cfg.Server.LiveInterval,
		Logger:         sLogger.Named("api"),
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.HttpHost,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverError := make(chan error, 1)
	go func() {
		sLogger.Infof("main: Starting http server on addr [%s].", cfg.Server.HttpHost)
		serverError <- httpServer.ListenAndServe()
	}()

	metricsServerError := make(chan error, 1)
	if cfg.Server.MetricsHttpHost != "" {
		go func() {
			sLogger.Infof("main: Starting metrics server on addr [%s].", cfg.Server.MetricsHttpHost)
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			metricsServerError <- http.ListenAndServe(cfg.Server.MetricsHttpHost, mux)
		}()
	}

	sLogger.Info("main: Service started.")

	select {
	case <-ctx.Done():
		sLogger.Info("main: Received shutdown signal, shutting down...")
	case err := <-serverError:
		return fmt.Errorf("http server: %w", err)
	case err := <-metricsServerError:
		return fmt.Errorf("metrics server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	sLogger.Info("main: Shutdown complete")
	return nil
}
