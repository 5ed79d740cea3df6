package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// feedClient is one WebSocket subscriber.
type feedClient struct {
	conn   *websocket.Conn
	cfg    Config
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newFeedClient(conn *websocket.Conn, cfg Config, logger *slog.Logger) *feedClient {
	return &feedClient{
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		send:   make(chan []byte, cfg.ClientBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue queues a message without blocking. It reports false when the
// client's buffer is full.
func (c *feedClient) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *feedClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// run serves the client until it disconnects or is closed.
func (c *feedClient) run() {
	defer c.conn.Close()

	// A client that misses two pings in a row is gone.
	stale := 2 * c.cfg.PingInterval
	c.conn.SetReadDeadline(time.Now().Add(stale))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(stale))
	})

	go c.readLoop()
	c.writeLoop()
}

// readLoop discards client messages; it exists to process control frames
// and notice disconnects.
func (c *feedClient) readLoop() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *feedClient) writeLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("feed write failed", "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				c.close()
				return
			}
		}
	}
}
