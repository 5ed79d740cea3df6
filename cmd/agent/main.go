package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/rickgao/ticket-exchange/internal/agent"
	"github.com/rickgao/ticket-exchange/internal/config"
	"github.com/rickgao/ticket-exchange/internal/connection"
	"github.com/rickgao/ticket-exchange/internal/logging"
	"github.com/rickgao/ticket-exchange/internal/peer"
	"github.com/rickgao/ticket-exchange/internal/snapshot"
	"github.com/rickgao/ticket-exchange/internal/version"
	"github.com/rickgao/ticket-exchange/internal/wallet"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "agent: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("agent", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "configs/agent-1.yaml", "path to config file")
	id := flagSet.String("id", "", "override agent.id")
	exchangeAddr := flagSet.String("exchange", "", "override exchange.addr")
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
		fmt.Println("agent", version.String())
		return nil
	}

	cfg, err := config.LoadAgent(*configPath)
	if err != nil {
		return err
	}
	// Overrides go in before defaults so derived peer addresses follow them.
	if *id != "" {
		cfg.Agent.ID = *id
	}
	if *exchangeAddr != "" {
		cfg.Exchange.Addr = *exchangeAddr
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

	logger.Info("starting agent",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"id", cfg.Agent.ID,
		"peer_id", cfg.Agent.PeerID,
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

	w := wallet.New(cfg.Trading.Balance)

	ch, err := peer.New(peer.Config{
		ID:          cfg.Agent.ID,
		ListenAddr:  cfg.Peer.Listen,
		PeerAddr:    cfg.Peer.PeerAddr,
		ReadTimeout: cfg.Peer.ReadTimeout,
		IdleTimeout: cfg.Peer.IdleTimeout,
	}, w, logger)
	if err != nil {
		return fmt.Errorf("open peer channel: %w", err)
	}

	logger.Info("peer channel ready",
		"listen", ch.LocalAddr().String(),
		"peer", cfg.Peer.PeerAddr,
	)

	client := connection.NewClient(connection.ClientConfig{
		Addr:         cfg.Exchange.Addr,
		DialTimeout:  cfg.Exchange.DialTimeout,
		WriteTimeout: cfg.Exchange.WriteTimeout,
		ReadTimeout:  cfg.Exchange.ReadTimeout,
	}, logger)

	a := agent.New(agent.Config{
		ID: cfg.Agent.ID,
		Engine: agent.EngineConfig{
			Rounds:       cfg.Trading.Rounds,
			ScalpTimeout: cfg.Trading.ScalpTimeout,
		},
		Linger: cfg.Trading.Linger,
	}, client, ch, w, logger)

	report, runErr := a.Run(ctx)

	if cfg.Snapshot.Path != "" {
		if err := snapshot.WriteAgent(cfg.Snapshot.Path, report); err != nil {
			logger.Error("failed to write snapshot", "path", cfg.Snapshot.Path, "error", err)
		} else {
			logger.Info("snapshot written", "path", cfg.Snapshot.Path)
		}
	}

	stats := a.Engine().Stats()
	peerStats := ch.Stats()
	logger.Info("agent stopped",
		"balance", report.Balance,
		"holdings", len(report.Holdings),
		"holdings_value", report.HoldingsValue(),
		"bought", stats.Bought,
		"sold_back", stats.SoldBack,
		"scalped", stats.Scalped,
		"peer_reason", string(ch.Reason()),
		"peer_processed", peerStats.Processed,
		"peer_malformed", peerStats.Malformed,
		"scalps_sold", peerStats.ScalpsSold,
		"scalps_bought", peerStats.ScalpsBought,
	)
	return runErr
}
