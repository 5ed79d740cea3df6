package exchange

import (
	"errors"
	"time"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// Errors
var (
	ErrBarrierBroken  = errors.New("startup barrier broken")
	ErrBarrierTimeout = errors.New("startup barrier timed out")
	ErrAgentLeft      = errors.New("agent disconnected at startup barrier")
)

// Config configures the session manager.
type Config struct {
	Host           string        // Listen host (default: localhost)
	Port           int           // Listen port, 0 picks a free port
	ExpectedAgents int           // Connections to accept before shutdown (default: 2)
	Barrier        bool          // Hold every session until all agents connect
	BarrierTimeout time.Duration // 0 = no limit
	WriteTimeout   time.Duration // Per-response write deadline
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           12345,
		ExpectedAgents: 2,
		WriteTimeout:   5 * time.Second,
	}
}

// EventSink receives an event for every request the exchange handles.
// Publish must not block.
type EventSink interface {
	Publish(event model.TradeEvent)
}

// EventSinkFunc is a function adapter for EventSink.
type EventSinkFunc func(model.TradeEvent)

func (f EventSinkFunc) Publish(e model.TradeEvent) {
	f(e)
}

// txEntry is one line of a session's transaction log.
type txEntry struct {
	TicketID string
	Kind     model.TradeKind
}
