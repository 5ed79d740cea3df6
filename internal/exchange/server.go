package exchange

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/ticket-exchange/internal/inventory"
	"github.com/rickgao/ticket-exchange/internal/model"
	"github.com/rickgao/ticket-exchange/internal/protocol"
)

// session is one agent connection.
type session struct {
	id     uuid.UUID
	conn   net.Conn
	reader *bufio.Reader
	remote string
	log    []txEntry
}

// Server is the exchange's session manager.
type Server struct {
	cfg    Config
	store  *inventory.Store
	sink   EventSink
	logger *slog.Logger

	ready chan struct{}
	addr  net.Addr

	barrier *barrier

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// New creates a Server over store. sink may be nil.
func New(cfg Config, store *inventory.Store, sink EventSink, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExpectedAgents < 1 {
		cfg.ExpectedAgents = DefaultConfig().ExpectedAgents
	}

	return &Server{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		logger:   logger,
		ready:    make(chan struct{}),
		barrier:  newBarrier(cfg.ExpectedAgents),
		sessions: make(map[uuid.UUID]*session),
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address. Valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.addr
}

// ActiveSessions returns the number of connected agents.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run accepts ExpectedAgents connections, serves them until they all end,
// and returns the final inventory. Cancelling ctx stops accepting and
// closes live sessions; the report is still returned.
func (s *Server) Run(ctx context.Context) (model.ExchangeReport, error) {
	startedAt := time.Now()

	listenAddr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return model.ExchangeReport{}, fmt.Errorf("listen %s: %w", listenAddr, err)
	}
	s.addr = ln.Addr()
	close(s.ready)

	s.logger.Info("exchange ready, waiting for agents",
		"addr", s.addr.String(),
		"expected_agents", s.cfg.ExpectedAgents,
		"barrier", s.cfg.Barrier,
	)
	s.logInventory("initial inventory")

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeSessions()
	})
	defer stop()

	var g errgroup.Group
	accepted := 0
	for accepted < s.cfg.ExpectedAgents {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error("accept failed", "error", err)
			}
			break
		}
		accepted++

		sess := s.register(conn)
		s.barrier.arrive()
		s.logger.Info("agent connected",
			"session", sess.id,
			"remote", sess.remote,
			"connected", accepted,
		)

		g.Go(func() error {
			s.serve(ctx, sess)
			return nil
		})
	}
	ln.Close()

	if accepted < s.cfg.ExpectedAgents {
		// Nobody else is coming; release anyone parked at the barrier.
		s.barrier.breakBarrier()
	}

	g.Wait()

	report := model.ExchangeReport{
		Tickets:   s.store.Snapshot(),
		Sessions:  accepted,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	for _, t := range report.Tickets {
		if t.Sold {
			report.Sold++
		}
	}

	s.logger.Info("all agents disconnected", "sessions", accepted, "sold", report.Sold, "tickets", len(report.Tickets))
	s.logInventory("final inventory")
	s.logger.Info("exchange has shut down")

	return report, nil
}

// register tracks a new connection.
func (s *Server) register(conn net.Conn) *session {
	sess := &session{
		id:     uuid.New(),
		conn:   conn,
		reader: bufio.NewReader(conn),
		remote: conn.RemoteAddr().String(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.conn.Close()
	}
}

// serve runs one session to completion.
func (s *Server) serve(ctx context.Context, sess *session) {
	logger := s.logger.With("session", sess.id, "remote", sess.remote)

	defer func() {
		sess.conn.Close()
		s.unregister(sess)
		logger.Info("agent disconnected", "transactions", len(sess.log))
		if len(sess.log) > 0 {
			logger.Info("transaction log", "entries", formatLog(sess.log))
		}
	}()

	if s.cfg.Barrier {
		if err := s.awaitAgents(ctx, sess); err != nil {
			logger.Error("aborting session at startup barrier", "error", err)
			return
		}
		logger.Debug("startup barrier released")
	}

	for {
		line, err := sess.reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if werr := s.respond(sess, logger, line); werr != nil {
				logger.Error("write failed", "error", werr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				logger.Error("read failed", "error", err)
			}
			return
		}
	}
}

// respond handles one request line and writes exactly one response.
func (s *Server) respond(sess *session, logger *slog.Logger, line string) error {
	logger.Debug("received", "request", line)

	var resp protocol.Response
	req, err := protocol.ParseRequest(line)
	if err != nil {
		logger.Warn("rejected request", "request", line, "error", err)
		resp = protocol.Response{Kind: protocol.ResponseError}
		s.publish(model.NewTradeEvent(sess.id, model.KindRejected, "", 0, 0))
	} else {
		resp = s.dispatch(sess, req)
	}

	if s.cfg.WriteTimeout > 0 {
		sess.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if _, err := io.WriteString(sess.conn, resp.String()+"\n"); err != nil {
		return err
	}
	logger.Debug("sent", "response", resp.String())
	return nil
}

// dispatch applies a request to the store.
func (s *Server) dispatch(sess *session, req protocol.Request) protocol.Response {
	switch req.Kind {
	case protocol.RequestBuy:
		out := s.store.Buy(req.Balance)
		switch out.Kind {
		case inventory.Purchased:
			sess.log = append(sess.log, txEntry{TicketID: out.TicketID, Kind: model.KindBuy})
			s.publish(model.NewTradeEvent(sess.id, model.KindBuy, out.TicketID, out.Price, req.Balance))
			return protocol.TicketResponse(out.TicketID, out.Price)
		case inventory.InsufficientFunds:
			s.publish(model.NewTradeEvent(sess.id, model.KindNoFunds, "", 0, req.Balance))
			return protocol.Response{Kind: protocol.ResponseNoFunds}
		default:
			s.publish(model.NewTradeEvent(sess.id, model.KindSoldOut, "", 0, req.Balance))
			return protocol.Response{Kind: protocol.ResponseSoldOut}
		}

	case protocol.RequestSell:
		out := s.store.Sell(req.TicketID)
		if out.Kind != inventory.Resold {
			s.logger.Warn("invalid ticket on resale", "session", sess.id, "ticket", req.TicketID)
			s.publish(model.NewTradeEvent(sess.id, model.KindRejected, req.TicketID, 0, 0))
			return protocol.Response{Kind: protocol.ResponseError}
		}
		sess.log = append(sess.log, txEntry{TicketID: out.TicketID, Kind: model.KindSell})
		s.publish(model.NewTradeEvent(sess.id, model.KindSell, out.TicketID, out.Price, 0))
		return protocol.TicketResponse(out.TicketID, out.Price)
	}

	return protocol.Response{Kind: protocol.ResponseError}
}

func (s *Server) publish(e model.TradeEvent) {
	if s.sink != nil {
		s.sink.Publish(e)
	}
}

// awaitAgents parks a session until the barrier releases. The session's
// own connection is watched so an agent that leaves early breaks the
// barrier instead of stranding the others.
func (s *Server) awaitAgents(ctx context.Context, sess *session) error {
	probe := make(chan error, 1)
	go func() {
		// Peek leaves any early request in the buffer for the serve loop.
		_, err := sess.reader.Peek(1)
		probe <- err
	}()
	probing := true
	defer func() {
		if probing {
			sess.conn.SetReadDeadline(time.Now())
			<-probe
			sess.conn.SetReadDeadline(time.Time{})
		}
	}()

	var timeout <-chan time.Time
	if s.cfg.BarrierTimeout > 0 {
		timer := time.NewTimer(s.cfg.BarrierTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	probeCh := probe
	for {
		select {
		case <-s.barrier.released:
			return nil
		case <-s.barrier.broken:
			return ErrBarrierBroken
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			s.barrier.breakBarrier()
			return ErrBarrierTimeout
		case err := <-probeCh:
			probing = false
			probeCh = nil
			if err != nil {
				s.barrier.breakBarrier()
				return fmt.Errorf("%w: %v", ErrAgentLeft, err)
			}
			// Data arrived early; it waits in the buffer.
		}
	}
}

func (s *Server) logInventory(msg string) {
	for _, t := range s.store.Snapshot() {
		s.logger.Info(msg, "ticket", t.ID, "price", t.Price, "sold", t.Sold)
	}
}

func formatLog(entries []txEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.TicketID + ":" + strings.ToUpper(string(e.Kind))
	}
	return strings.Join(parts, ",")
}
