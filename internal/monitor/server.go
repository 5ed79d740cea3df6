package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/ticket-exchange/internal/model"
	"github.com/rickgao/ticket-exchange/internal/router"
)

// Server is the monitor HTTP server.
type Server struct {
	cfg      Config
	inv      Inventory
	sessions Sessions
	feed     *router.Queue[model.TradeEvent]
	logger   *slog.Logger

	upgrader websocket.Upgrader
	http     *http.Server
	ln       net.Listener

	mu      sync.Mutex
	clients map[*feedClient]struct{}

	wg sync.WaitGroup
}

// New creates a monitor. feed may be nil, in which case /ws accepts
// connections but never sends events. sessions may be nil.
func New(cfg Config, inv Inventory, sessions Sessions, feed *router.Queue[model.TradeEvent], logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}

	return &Server{
		cfg:      cfg,
		inv:      inv,
		sessions: sessions,
		feed:     feed,
		logger:   logger.With("component", "monitor"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*feedClient]struct{}),
	}
}

// Handler returns the monitor's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /inventory", s.handleInventory)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Start binds the listener and begins serving and broadcasting.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("monitor server error", "error", err)
		}
	}()

	if s.feed != nil {
		s.wg.Add(1)
		go s.broadcastLoop()
	}

	s.logger.Info("monitor started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address. Valid after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Stop shuts down the HTTP server and disconnects feed clients. The
// broadcast loop ends once the feed queue is closed.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping monitor")

	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	s.mu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("monitor stopped")
	case <-ctx.Done():
		s.logger.Warn("monitor stop timed out")
	}
	return err
}

// ClientCount returns the number of connected feed clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	remaining := s.inv.Remaining()
	health.Components["inventory"] = map[string]int{
		"tickets":   len(s.inv.Snapshot()),
		"remaining": remaining,
	}
	if remaining == 0 {
		health.Status = "sold_out"
	}
	if s.sessions != nil {
		health.Components["sessions"] = s.sessions.ActiveSessions()
	}
	health.Components["feed_clients"] = s.ClientCount()

	writeJSON(w, health)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, InventoryView{
		Tickets:   s.inv.Snapshot(),
		Remaining: s.inv.Remaining(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := newFeedClient(conn, s.cfg, s.logger)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("feed client connected", "remote", conn.RemoteAddr().String())

	go func() {
		c.run()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		s.logger.Debug("feed client disconnected", "remote", conn.RemoteAddr().String())
	}()
}

// broadcastLoop copies feed events to every client.
func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		events, ok := s.feed.PopBatch(0)
		if !ok {
			return
		}
		for _, e := range events {
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Warn("failed to encode event", "error", err)
				continue
			}
			s.broadcast(data)
		}
	}
}

func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if !c.enqueue(data) {
			s.logger.Warn("dropping slow feed client", "remote", c.conn.RemoteAddr().String())
			c.close()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
