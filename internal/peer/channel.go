package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/ticket-exchange/internal/protocol"
	"github.com/rickgao/ticket-exchange/internal/wallet"
)

const (
	maxDatagram = 1024

	// Consecutive non-timeout read failures before the listener gives up.
	maxReadFailures = 10
)

// Channel is one agent's peer scalping endpoint.
type Channel struct {
	cfg    Config
	wallet *wallet.Wallet
	logger *slog.Logger

	conn net.PacketConn
	peer net.Addr

	outstanding atomic.Bool
	completions chan Completion

	runOnce sync.Once
	done    chan struct{}
	reason  StopReason

	processed    atomic.Int64
	malformed    atomic.Int64
	ignored      atomic.Int64
	scalpsSold   atomic.Int64
	scalpsBought atomic.Int64
}

// New binds the local endpoint and resolves the peer address.
func New(cfg Config, w *wallet.Wallet, logger *slog.Logger) (*Channel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultConfig().ReadTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}

	peerAddr, err := net.ResolveUDPAddr("udp", cfg.PeerAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve peer %s: %w", cfg.PeerAddr, err)
	}
	conn, err := net.ListenPacket("udp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.ListenAddr, err)
	}

	logger.Debug("peer channel bound", "local", conn.LocalAddr().String(), "peer", peerAddr.String())

	return &Channel{
		cfg:         cfg,
		wallet:      w,
		logger:      logger,
		conn:        conn,
		peer:        peerAddr,
		completions: make(chan Completion, 1),
		done:        make(chan struct{}),
	}, nil
}

// LocalAddr returns the bound UDP address.
func (c *Channel) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Completions delivers one value per resolved scalp request.
func (c *Channel) Completions() <-chan Completion {
	return c.completions
}

// Done is closed once the listener loop has ended.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Reason reports why the listener stopped. Valid after Done is closed.
func (c *Channel) Reason() StopReason {
	<-c.done
	return c.reason
}

// Stats returns listener counters.
func (c *Channel) Stats() Stats {
	return Stats{
		Processed:    c.processed.Load(),
		Malformed:    c.malformed.Load(),
		Ignored:      c.ignored.Load(),
		ScalpsSold:   c.scalpsSold.Load(),
		ScalpsBought: c.scalpsBought.Load(),
	}
}

// RequestScalp asks the peer for its cheapest ticket, quoting balance.
// Any stale completion is discarded before the request is armed.
func (c *Channel) RequestScalp(balance int) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}

	select {
	case stale := <-c.completions:
		c.logger.Debug("discarded stale scalp completion", "kind", stale.Kind)
	default:
	}
	c.outstanding.Store(true)

	msg := protocol.Datagram{Sender: c.cfg.ID, Body: protocol.ScalpBody(balance)}
	if _, err := c.conn.WriteTo(msg.Encode(), c.peer); err != nil {
		c.outstanding.Store(false)
		return fmt.Errorf("send scalp request: %w", err)
	}

	c.logger.Info("scalp request sent", "peer", c.peer.String(), "balance", balance)
	return nil
}

// CancelScalp abandons the outstanding request, if any. A late answer is
// still applied to the wallet but no longer posts a completion.
func (c *Channel) CancelScalp() {
	c.outstanding.Store(false)
}

// Run is the listener loop. It returns when ctx is cancelled, the idle
// timeout elapses or the endpoint fails, closing the endpoint on the way
// out. Only the first call runs the loop; later calls, and calls after
// Close, return ErrAlreadyRunning.
func (c *Channel) Run(ctx context.Context) error {
	err := ErrAlreadyRunning
	c.runOnce.Do(func() {
		err = nil
		c.reason = c.listen(ctx)
		c.conn.Close()
		close(c.done)
		c.logger.Info("peer channel closed", "reason", c.reason)
	})
	return err
}

// Close releases the endpoint. A running listener ends with StopClosed; a
// channel that never ran is marked done without starting. Close blocks
// until Done is closed and is safe to call more than once.
func (c *Channel) Close() error {
	err := c.conn.Close()
	c.runOnce.Do(func() {
		c.reason = StopClosed
		close(c.done)
		c.logger.Info("peer channel closed before running")
	})
	<-c.done

	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// listen reads datagrams until a stop condition holds.
func (c *Channel) listen(ctx context.Context) StopReason {
	// Wake the pending read as soon as the context ends.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, maxDatagram)
	lastProcessed := time.Now()
	failures := 0

	for {
		if ctx.Err() != nil {
			return StopCancelled
		}

		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				failures = 0
			case errors.Is(err, net.ErrClosed):
				return StopClosed
			default:
				failures++
				c.logger.Error("peer read failed", "error", err, "consecutive", failures)
				if failures >= maxReadFailures {
					return StopFailed
				}
			}
			if ctx.Err() != nil {
				return StopCancelled
			}
			if idle := time.Since(lastProcessed); idle >= c.cfg.IdleTimeout {
				c.logger.Debug("no peer activity, stopping", "idle", idle.Round(time.Millisecond))
				return StopIdle
			}
			continue
		}
		failures = 0

		if c.handleDatagram(buf[:n], from) {
			lastProcessed = time.Now()
		}
	}
}

// handleDatagram decodes and applies one datagram. It reports whether the
// datagram counts as processed for the idle timer.
func (c *Channel) handleDatagram(payload []byte, from net.Addr) bool {
	msg, err := protocol.ParseDatagram(payload)
	if err != nil {
		c.malformed.Add(1)
		c.logger.Error("malformed peer message", "from", from.String(), "payload", string(payload))
		return false
	}
	if msg.Sender == c.cfg.ID {
		c.ignored.Add(1)
		c.logger.Debug("ignored own message", "from", from.String())
		return false
	}

	c.logger.Debug("peer message", "sender", msg.Sender, "from", from.String(), "body", msg.Body)
	c.processed.Add(1)

	body := protocol.ParsePeerBody(msg.Body)
	switch body.Kind {
	case protocol.PeerScalp:
		c.answerScalp(body.Balance, from)

	case protocol.PeerOffer:
		if err := c.wallet.Acquire(body.TicketID, body.Price); err != nil {
			// The peer has already given the ticket up and been credited.
			c.logger.Error("scalped ticket lost, could not record it",
				"ticket", body.TicketID,
				"price", body.Price,
				"error", err,
			)
			c.complete(Completion{Kind: AcquireFailed, TicketID: body.TicketID, Price: body.Price})
			return true
		}
		c.scalpsBought.Add(1)
		c.logger.Info("bought scalped ticket", "ticket", body.TicketID, "price", body.Price, "balance", c.wallet.Balance())
		c.complete(Completion{Kind: Acquired, TicketID: body.TicketID, Price: body.Price})

	case protocol.PeerNoMoney:
		c.logger.Info("peer refused scalp: offer exceeds balance")
		c.complete(Completion{Kind: Refused})

	case protocol.PeerSoldOut:
		c.logger.Info("peer has nothing to scalp")
		c.complete(Completion{Kind: PeerSoldOut})

	default:
		c.logger.Warn("unexpected peer message", "sender", msg.Sender, "body", msg.Body)
	}
	return true
}

// answerScalp serves a scalp request from the agent's own holdings.
func (c *Channel) answerScalp(buyerBalance int, to net.Addr) {
	offer, result := c.wallet.SellCheapest(buyerBalance)

	var body string
	switch result {
	case wallet.ScalpSold:
		body = protocol.OfferBody(offer.Holding.TicketID, offer.Price)
		c.scalpsSold.Add(1)
		c.logger.Info("scalped ticket",
			"ticket", offer.Holding.TicketID,
			"cost", offer.Holding.Price,
			"price", offer.Price,
			"balance", c.wallet.Balance(),
		)
	case wallet.ScalpTooExpensive:
		body = protocol.RespNoMoney
		c.logger.Debug("buyer cannot afford offer", "price", offer.Price, "buyer_balance", buyerBalance)
	default:
		body = protocol.SoldOutText
		c.logger.Debug("no tickets available to scalp")
	}

	reply := protocol.Datagram{Sender: c.cfg.ID, Body: body}
	if _, err := c.conn.WriteTo(reply.Encode(), to); err != nil {
		c.logger.Error("scalp reply failed", "to", to.String(), "error", err)
	}
}

// complete posts a completion if a request is outstanding.
func (c *Channel) complete(comp Completion) {
	if !c.outstanding.CompareAndSwap(true, false) {
		c.logger.Debug("scalp answer with no outstanding request", "kind", comp.Kind)
		return
	}
	select {
	case c.completions <- comp:
	default:
		c.logger.Warn("completion slot full, dropping", "kind", comp.Kind)
	}
}
