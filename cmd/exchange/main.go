package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/rickgao/ticket-exchange/internal/config"
	"github.com/rickgao/ticket-exchange/internal/exchange"
	"github.com/rickgao/ticket-exchange/internal/inventory"
	"github.com/rickgao/ticket-exchange/internal/journal"
	"github.com/rickgao/ticket-exchange/internal/logging"
	"github.com/rickgao/ticket-exchange/internal/monitor"
	"github.com/rickgao/ticket-exchange/internal/router"
	"github.com/rickgao/ticket-exchange/internal/snapshot"
	"github.com/rickgao/ticket-exchange/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "exchange: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("exchange", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "configs/exchange.yaml", "path to config file")
	port := flagSet.IntP("port", "p", 0, "override exchange.port")
	seed := flagSet.Int64("seed", 0, "override inventory.seed")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	help := flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *help {
		fmt.Fprintf(os.Stdout, "Usage: %s [flags]\n\n", flagSet.Name())
		flagSet.SetOutput(os.Stdout)
		flagSet.PrintDefaults()
		return nil
	}
	if *showVersion {
		fmt.Println("exchange", version.String())
		return nil
	}

	cfg, err := config.LoadExchange(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Exchange.Port = *port
	}
	if *seed != 0 {
		cfg.Inventory.Seed = *seed
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting exchange",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	store, err := inventory.NewGeneratedStore(inventory.GenerateConfig{
		Count:    cfg.Inventory.Count,
		FirstID:  cfg.Inventory.FirstID,
		MinPrice: cfg.Inventory.MinPrice,
		MaxPrice: cfg.Inventory.MaxPrice,
		Seed:     cfg.Inventory.Seed,
	})
	if err != nil {
		return fmt.Errorf("generate inventory: %w", err)
	}

	sink, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	routerCfg := router.Config{}
	if sink != nil {
		routerCfg.JournalBufferSize = cfg.Journal.BufferSize
	}
	if cfg.Monitor.Enabled {
		routerCfg.FeedBufferSize = router.DefaultConfig().FeedBufferSize
	}
	events := router.New(routerCfg, logger)

	var writer *journal.Writer
	if sink != nil {
		logger.Info("journal enabled", "driver", cfg.Journal.Driver)
		writerCfg := journal.DefaultConfig()
		writerCfg.BatchSize = cfg.Journal.BatchSize
		writerCfg.FlushInterval = cfg.Journal.FlushInterval
		writer = journal.NewWriter(writerCfg, events.Outputs().Journal, sink, logger)
		if err := writer.Start(ctx); err != nil {
			sink.Close()
			return fmt.Errorf("start journal writer: %w", err)
		}
	}

	srv := exchange.New(exchange.Config{
		Host:           cfg.Exchange.Host,
		Port:           cfg.Exchange.Port,
		ExpectedAgents: cfg.Exchange.ExpectedAgents,
		Barrier:        cfg.Exchange.Barrier,
		BarrierTimeout: cfg.Exchange.BarrierTimeout,
		WriteTimeout:   cfg.Exchange.WriteTimeout,
	}, store, events, logger)

	var mon *monitor.Server
	if cfg.Monitor.Enabled {
		monCfg := monitor.DefaultConfig()
		monCfg.Addr = fmt.Sprintf(":%d", cfg.Monitor.Port)
		monCfg.PingInterval = cfg.Monitor.PingInterval
		mon = monitor.New(monCfg, store, srv, events.Outputs().Feed, logger)
		if err := mon.Start(ctx); err != nil {
			logger.Error("failed to start monitor", "error", err)
			mon = nil
		}
	}

	report, runErr := srv.Run(ctx)
	if runErr != nil {
		logger.Error("exchange stopped with error", "error", runErr)
	}

	logger.Info("shutting down...")

	// Closing the router ends both queues; the writer drains what is left.
	events.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if writer != nil {
		if err := writer.Stop(shutdownCtx); err != nil {
			logger.Error("journal writer stop", "error", err)
		}
		stats := writer.Stats()
		logger.Info("journal flushed",
			"received", stats.Received,
			"inserts", stats.Inserts,
			"conflicts", stats.Conflicts,
			"errors", stats.Errors,
		)
		if err := sink.Close(); err != nil {
			logger.Error("journal close", "error", err)
		}
	}
	if mon != nil {
		if err := mon.Stop(shutdownCtx); err != nil {
			logger.Error("monitor stop", "error", err)
		}
	}

	if cfg.Snapshot.Path != "" {
		if err := snapshot.WriteExchange(cfg.Snapshot.Path, report); err != nil {
			logger.Error("failed to write snapshot", "path", cfg.Snapshot.Path, "error", err)
		} else {
			logger.Info("snapshot written", "path", cfg.Snapshot.Path)
		}
	}

	routed := events.Stats()
	logger.Info("exchange stopped",
		"sessions", report.Sessions,
		"sold", report.Sold,
		"remaining", len(report.Tickets)-report.Sold,
		"events", routed.Published,
		"dropped_events", routed.Dropped,
		"duration", report.Duration,
	)
	return runErr
}
