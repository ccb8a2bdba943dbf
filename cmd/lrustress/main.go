// Command lrustress hammers a thread-safe LRU cache from many goroutines
// and checks that it stays consistent.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/venkatsvpr/lrucache/internal/logger"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(&cfg).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newApp binds every flag to cfg, so values loaded from the environment act
// as defaults that flags override.
func newApp(cfg *Config) *cli.App {
	app := cli.NewApp()
	app.Name = "lrustress"
	app.Usage = "run a concurrent workload against an LRU cache and verify its invariants"
	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:        "capacity",
			Value:       cfg.Capacity,
			Usage:       "cache capacity",
			Destination: &cfg.Capacity,
		},
		&cli.IntFlag{
			Name:        "workers",
			Value:       cfg.Workers,
			Usage:       "number of concurrent workers",
			Destination: &cfg.Workers,
		},
		&cli.IntFlag{
			Name:        "ops",
			Value:       cfg.Ops,
			Usage:       "operations per worker",
			Destination: &cfg.Ops,
		},
		&cli.IntFlag{
			Name:        "keyspace",
			Value:       cfg.Keyspace,
			Usage:       "keys are drawn from [0, keyspace)",
			Destination: &cfg.Keyspace,
		},
		&cli.Float64Flag{
			Name:        "read-ratio",
			Value:       cfg.ReadRatio,
			Usage:       "share of operations that are lookups",
			Destination: &cfg.ReadRatio,
		},
		&cli.Float64Flag{
			Name:        "remove-ratio",
			Value:       cfg.RemoveRatio,
			Usage:       "share of operations that are removals",
			Destination: &cfg.RemoveRatio,
		},
		&cli.IntFlag{
			Name:        "resize-every",
			Value:       cfg.ResizeEvery,
			Usage:       "toggle capacity between full and half every N operations of worker 0 (0 disables)",
			Destination: &cfg.ResizeEvery,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Value:       cfg.Seed,
			Usage:       "random seed",
			Destination: &cfg.Seed,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Value:       cfg.LogLevel,
			Usage:       "debug, info, warn or error",
			Destination: &cfg.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Value:       cfg.LogFormat,
			Usage:       "text or json",
			Destination: &cfg.LogFormat,
		},
	}
	app.Action = func(c *cli.Context) error {
		log, err := newLogger(*cfg, c.App.ErrWriter)
		if err != nil {
			return err
		}

		rep, err := Run(c.Context, *cfg, log)
		if err != nil {
			log.Error("stress run failed", slog.Any("report", rep), slog.Any("error", err))
			return err
		}
		log.Info("stress run passed", slog.Any("report", rep))
		return nil
	}
	return app
}

func newLogger(cfg Config, w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(w),
		logger.WithAttr(slog.String("cmd", "lrustress")),
	), nil
}
