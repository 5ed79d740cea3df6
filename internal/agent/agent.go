package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/ticket-exchange/internal/connection"
	"github.com/rickgao/ticket-exchange/internal/model"
	"github.com/rickgao/ticket-exchange/internal/peer"
	"github.com/rickgao/ticket-exchange/internal/wallet"
)

var (
	_ Exchange    = connection.Client(nil)
	_ PeerChannel = (*peer.Channel)(nil)
)

// Exchange is the agent's connection to the exchange.
type Exchange interface {
	ExchangeClient
	Connect(ctx context.Context) error
	Close() error
}

// PeerChannel is the agent's scalping channel, including its listener loop.
type PeerChannel interface {
	ScalpChannel
	Run(ctx context.Context) error
	Close() error
}

// Config configures an Agent.
type Config struct {
	ID     string
	Engine EngineConfig
	Linger time.Duration // Wait for late peer traffic after the rounds, 0 = stop at once
}

// Agent runs an Engine and its peer channel side by side.
type Agent struct {
	cfg    Config
	exch   Exchange
	peer   PeerChannel
	wallet *wallet.Wallet
	engine *Engine
	logger *slog.Logger
}

// New creates an Agent. The wallet must be the one the peer channel was
// built with.
func New(cfg Config, exch Exchange, ch PeerChannel, w *wallet.Wallet, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("agent", cfg.ID)

	return &Agent{
		cfg:    cfg,
		exch:   exch,
		peer:   ch,
		wallet: w,
		engine: NewEngine(cfg.Engine, exch, ch, w, logger),
		logger: logger,
	}
}

// Engine returns the agent's engine.
func (a *Agent) Engine() *Engine {
	return a.engine
}

// Run connects to the exchange, trades, lingers, and returns the final
// report. The report is filled in even when an error is returned.
func (a *Agent) Run(ctx context.Context) (model.AgentReport, error) {
	if err := a.exch.Connect(ctx); err != nil {
		// The listener never starts; release the endpoint so Done closes.
		if cerr := a.peer.Close(); cerr != nil {
			a.logger.Debug("closing peer channel", "error", cerr)
		}
		return a.report(err), err
	}
	a.logger.Info("connected to exchange", "balance", a.wallet.Balance())

	peerCtx, stopPeer := context.WithCancel(ctx)
	defer stopPeer()

	g, gctx := errgroup.WithContext(peerCtx)

	g.Go(func() error {
		return a.peer.Run(gctx)
	})

	g.Go(func() error {
		defer stopPeer()

		err := a.engine.Run(gctx)
		if cerr := a.exch.Close(); cerr != nil {
			a.logger.Debug("closing exchange connection", "error", cerr)
		}
		if err != nil {
			return err
		}

		a.linger(gctx)
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// Our own stopPeer, not the caller.
		err = nil
	}

	report := a.report(err)
	a.logger.Info("final balance", "balance", report.Balance, "holdings", len(report.Holdings), "holdings_value", report.HoldingsValue())
	for _, h := range report.Holdings {
		a.logger.Info("final holding", "ticket", h.TicketID, "price", h.Price)
	}
	return report, err
}

// linger keeps the peer listener up after the rounds so the counterpart
// can still scalp from us.
func (a *Agent) linger(ctx context.Context) {
	if a.cfg.Linger <= 0 {
		return
	}
	a.logger.Info("rounds done, waiting for peer traffic", "linger", a.cfg.Linger)

	timer := time.NewTimer(a.cfg.Linger)
	defer timer.Stop()

	select {
	case <-a.peer.Done():
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (a *Agent) report(err error) model.AgentReport {
	stats := a.engine.Stats()
	r := model.AgentReport{
		AgentID:  a.cfg.ID,
		Balance:  a.wallet.Balance(),
		Holdings: a.wallet.Holdings(),
		Rounds:   stats.Rounds,
		Scalps:   stats.Scalped,
	}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}
