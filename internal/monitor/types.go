package monitor

import (
	"time"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// Config configures the monitor server.
type Config struct {
	Addr         string        // Listen address (e.g., ":8080")
	PingInterval time.Duration // WebSocket keepalive (default: 30s)
	WriteTimeout time.Duration // Per-message write deadline (default: 5s)
	ClientBuffer int           // Events queued per client before it is dropped (default: 64)
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		PingInterval: 30 * time.Second,
		WriteTimeout: 5 * time.Second,
		ClientBuffer: 64,
	}
}

// Inventory is the read side of the inventory store.
type Inventory interface {
	Snapshot() []model.Ticket
	Remaining() int
}

// Sessions reports connected agents.
type Sessions interface {
	ActiveSessions() int
}

// Health is the /health response body.
type Health struct {
	Status     string         `json:"status"`
	Components map[string]any `json:"components"`
}

// InventoryView is the /inventory response body.
type InventoryView struct {
	Tickets   []model.Ticket `json:"tickets"`
	Remaining int            `json:"remaining"`
}
