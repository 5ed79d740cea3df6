package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rickgao/ticket-exchange/internal/protocol"
)

// Client is an agent's request/response connection to the exchange.
type Client interface {
	// Connect establishes the TCP connection.
	Connect(ctx context.Context) error

	// Close closes the connection. Safe to call more than once.
	Close() error

	// Do sends one request and waits for its response.
	Do(ctx context.Context, req protocol.Request) (protocol.Response, error)

	// Buy sends BUY <balance>.
	Buy(ctx context.Context, balance int) (protocol.Response, error)

	// Sell sends SELL <ticketID>.
	Sell(ctx context.Context, ticketID string) (protocol.Response, error)

	// IsConnected returns current connection state.
	IsConnected() bool
}

// client implements the Client interface.
type client struct {
	cfg    ClientConfig
	logger *slog.Logger

	conn   net.Conn
	reader *bufio.Reader

	// Round-trip serialization
	rtMu sync.Mutex

	// State
	mu        sync.RWMutex
	connected bool
	closed    bool
}

// NewClient creates a new exchange client.
func NewClient(cfg ClientConfig, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &client{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect establishes the TCP connection.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial exchange %s: %w", c.cfg.Addr, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.connected = true
	c.mu.Unlock()

	c.logger.Debug("exchange connected", "addr", c.cfg.Addr, "local", conn.LocalAddr().String())

	return nil
}

// Close closes the connection.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected returns the current connection state.
func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Buy sends BUY <balance>.
func (c *client) Buy(ctx context.Context, balance int) (protocol.Response, error) {
	return c.Do(ctx, protocol.BuyRequest(balance))
}

// Sell sends SELL <ticketID>.
func (c *client) Sell(ctx context.Context, ticketID string) (protocol.Response, error) {
	return c.Do(ctx, protocol.SellRequest(ticketID))
}

// Do performs one round trip. A response that fails to parse is returned
// as an error wrapping protocol.ErrMalformed; the connection stays usable.
// Any other error means the connection is no longer usable.
func (c *client) Do(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	c.mu.RLock()
	if !c.connected {
		c.mu.RUnlock()
		return protocol.Response{}, ErrNotConnected
	}
	conn, reader := c.conn, c.reader
	c.mu.RUnlock()

	c.rtMu.Lock()
	defer c.rtMu.Unlock()

	// Unblock the read or write below if the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	conn.SetWriteDeadline(deadline(c.cfg.WriteTimeout))
	if _, err := io.WriteString(conn, req.String()+"\n"); err != nil {
		c.markDisconnected()
		return protocol.Response{}, c.wrapErr(ctx, "write request", err)
	}

	conn.SetReadDeadline(deadline(c.cfg.ReadTimeout))
	line, err := reader.ReadString('\n')
	if err != nil {
		c.markDisconnected()
		if errors.Is(err, io.EOF) && ctx.Err() == nil {
			return protocol.Response{}, ErrClosedByExchange
		}
		return protocol.Response{}, c.wrapErr(ctx, "read response", err)
	}

	line = strings.TrimSpace(line)
	c.logger.Debug("exchange round trip", "request", req.String(), "response", line)

	resp, err := protocol.ParseResponse(line)
	if err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}

func (c *client) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *client) wrapErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}
