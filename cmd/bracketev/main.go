// Command bracketev scores a bracket pool entry against a forecast and
// searches for pick swaps that raise its expected score.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/bracketev/internal/adapters/forecast"
	"github.com/okian/bracketev/internal/adapters/picks"
	"github.com/okian/bracketev/internal/adapters/report"
	"github.com/okian/bracketev/internal/adapters/repository"
	app "github.com/okian/bracketev/internal/app"
	"github.com/okian/bracketev/internal/config"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/pkg/logger"
	"github.com/okian/bracketev/pkg/metrics"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bracketev", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (overrides BRACKETEV_CONFIG)")
	noOptimize := fs.Bool("no-optimize", false, "only score the input picks")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		// logger isn't available yet
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitError
	}
	if *noOptimize {
		cfg.Optimize = false
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Named("main")

	if err := execute(ctx, cfg, stdout); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		return exitError
	}
	return exitOK
}

func execute(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	log := logger.Named("main")

	table, err := forecast.LoadFile(ctx, cfg.ForecastPath)
	if err != nil {
		return err
	}
	input, err := picks.LoadFile(ctx, cfg.PicksPath)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithStore(repository.NewFileStore(cfg.CacheDir)),
		app.WithCacheKey(cfg.CacheKey),
		app.WithCacheEnabled(cfg.CacheEnabled),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithOptimize(cfg.Optimize),
	)
	res, err := svc.Run(ctx, table, input)
	if err != nil {
		return err
	}

	if err := render(stdout, table, res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.OutputPath != "" {
		if err := picks.WriteFile(ctx, cfg.OutputPath, res.Picks); err != nil {
			return err
		}
		log.Info(ctx, "wrote picks", logger.String("path", cfg.OutputPath))
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			// metrics are best effort
			log.Warn(ctx, "metrics export failed", logger.String("path", cfg.MetricsTextfile), logger.Error(err))
		}
	}
	return nil
}

func render(out io.Writer, table *model.Table, res *app.Result) error {
	w := report.New(out)
	if err := w.Summary(res.Initial); err != nil {
		return err
	}
	if res.Optimized != nil {
		if err := w.Optimization(res.Swaps, res.Initial.Total, res.Optimized.Total); err != nil {
			return err
		}
		if err := w.Summary(*res.Optimized); err != nil {
			return err
		}
	}
	rows, err := report.Rows(table, res.Vectors, res.Picks)
	if err != nil {
		return err
	}
	return w.Picks(rows)
}
