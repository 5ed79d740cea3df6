package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/ticket-exchange/internal/peer"
	"github.com/rickgao/ticket-exchange/internal/protocol"
	"github.com/rickgao/ticket-exchange/internal/wallet"
)

// Engine runs an agent's trading rounds against the exchange.
type Engine struct {
	cfg    EngineConfig
	exch   ExchangeClient
	scalp  ScalpChannel
	wallet *wallet.Wallet
	logger *slog.Logger

	state atomic.Int32

	statsMu sync.Mutex
	stats   EngineStats
}

// NewEngine creates an Engine. The wallet is shared with the peer channel.
func NewEngine(cfg EngineConfig, exch ExchangeClient, scalp ScalpChannel, w *wallet.Wallet, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Rounds < 0 {
		cfg.Rounds = 0
	}

	return &Engine{
		cfg:    cfg,
		exch:   exch,
		scalp:  scalp,
		wallet: w,
		logger: logger.With("component", "engine"),
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats returns a copy of the round counters.
func (e *Engine) Stats() EngineStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// Run performs the configured rounds. It returns early with an error on an
// exchange I/O failure or when ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	defer e.setState(StateDone)

	for round := 1; round <= e.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.logger.Debug("round start", "round", round, "balance", e.wallet.Balance(), "holdings", e.wallet.Len())
		if err := e.round(ctx); err != nil {
			e.logger.Error("round failed", "round", round, "error", err)
			return err
		}
		e.setState(StateIdle)
		e.count(func(s *EngineStats) { s.Rounds++ })
	}

	e.logger.Info("rounds complete",
		"rounds", e.cfg.Rounds,
		"balance", e.wallet.Balance(),
		"holdings", e.wallet.Len(),
	)
	return nil
}

// round performs one BUY and whatever follow-up its response calls for.
func (e *Engine) round(ctx context.Context) error {
	e.setState(StateAwaitingExchange)

	balance := e.wallet.Balance()
	resp, err := e.exch.Buy(ctx, balance)
	if err != nil {
		if errors.Is(err, protocol.ErrMalformed) {
			e.logger.Warn("ignoring malformed buy response", "error", err)
			e.noop()
			return nil
		}
		return fmt.Errorf("buy: %w", err)
	}

	switch resp.Kind {
	case protocol.ResponseTicket:
		e.setState(StateHolding)
		if err := e.wallet.Acquire(resp.TicketID, resp.Price); err != nil {
			e.logger.Error("could not record purchase", "ticket", resp.TicketID, "price", resp.Price, "error", err)
			e.noop()
			return nil
		}
		e.count(func(s *EngineStats) { s.Bought++ })
		e.logger.Info("bought ticket", "ticket", resp.TicketID, "price", resp.Price, "balance", e.wallet.Balance())
		return nil

	case protocol.ResponseNoFunds:
		e.logger.Info("insufficient funds", "balance", balance)
		return e.sellOldest(ctx)

	case protocol.ResponseSoldOut:
		e.logger.Info("exchange sold out, asking peer")
		return e.scalpFromPeer(ctx)

	default:
		e.logger.Warn("unexpected buy response", "response", resp.String())
		e.noop()
		return nil
	}
}

// sellOldest resells the oldest holding to the exchange. The holding is
// taken out of the wallet for the duration so the peer cannot scalp it.
func (e *Engine) sellOldest(ctx context.Context) error {
	h, ok := e.wallet.TakeOldest()
	if !ok {
		e.logger.Info("no tickets to sell")
		e.noop()
		return nil
	}

	e.setState(StateSelling)
	resp, err := e.exch.Sell(ctx, h.TicketID)
	if err != nil {
		e.wallet.Restore(h)
		if errors.Is(err, protocol.ErrMalformed) {
			e.logger.Warn("ignoring malformed sell response", "ticket", h.TicketID, "error", err)
			e.noop()
			return nil
		}
		return fmt.Errorf("sell %s: %w", h.TicketID, err)
	}

	if resp.Kind != protocol.ResponseTicket {
		e.wallet.Restore(h)
		e.logger.Warn("exchange rejected resale", "ticket", h.TicketID, "response", resp.String())
		e.noop()
		return nil
	}
	if resp.TicketID != h.TicketID {
		e.logger.Warn("resale confirmed a different ticket", "sent", h.TicketID, "got", resp.TicketID)
	}

	e.wallet.Settle(h, resp.Price)
	e.count(func(s *EngineStats) { s.SoldBack++ })
	e.logger.Info("sold ticket", "ticket", h.TicketID, "price", resp.Price, "balance", e.wallet.Balance())
	return nil
}

// scalpFromPeer asks the peer for a ticket and blocks until the request
// resolves. The next BUY never starts while a scalp is outstanding.
func (e *Engine) scalpFromPeer(ctx context.Context) error {
	e.setState(StateScalping)

	if err := e.scalp.RequestScalp(e.wallet.Balance()); err != nil {
		if errors.Is(err, peer.ErrStopped) {
			e.logger.Warn("cannot scalp", "error", ErrPeerStopped)
		} else {
			e.logger.Error("scalp request failed", "error", err)
		}
		e.noop()
		return nil
	}

	var timeout <-chan time.Time
	if e.cfg.ScalpTimeout > 0 {
		timer := time.NewTimer(e.cfg.ScalpTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case c := <-e.scalp.Completions():
		switch c.Kind {
		case peer.Acquired:
			e.count(func(s *EngineStats) { s.Scalped++ })
			return nil
		case peer.Refused:
			e.count(func(s *EngineStats) { s.ScalpRefused++ })
			return e.sellOldest(ctx)
		case peer.AcquireFailed:
			// Nothing to liquidate: the refusal came from our own wallet.
			e.count(func(s *EngineStats) { s.ScalpLost++ })
			e.logger.Error("scalped ticket was not recorded", "ticket", c.TicketID, "price", c.Price)
			return nil
		default:
			e.noop()
			return nil
		}

	case <-timeout:
		e.scalp.CancelScalp()
		e.count(func(s *EngineStats) { s.ScalpTimeouts++ })
		e.logger.Warn("peer did not answer scalp request", "timeout", e.cfg.ScalpTimeout)
		return nil

	case <-e.scalp.Done():
		e.logger.Warn("abandoning scalp request", "error", ErrPeerStopped)
		e.noop()
		return nil

	case <-ctx.Done():
		e.scalp.CancelScalp()
		return ctx.Err()
	}
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

func (e *Engine) noop() {
	e.count(func(s *EngineStats) { s.NoOps++ })
}

func (e *Engine) count(fn func(*EngineStats)) {
	e.statsMu.Lock()
	fn(&e.stats)
	e.statsMu.Unlock()
}
