package agent

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/ticket-exchange/internal/peer"
	"github.com/rickgao/ticket-exchange/internal/protocol"
)

// Errors
var (
	ErrPeerStopped = errors.New("peer channel stopped")
)

// ExchangeClient is the part of connection.Client the Engine uses.
type ExchangeClient interface {
	Buy(ctx context.Context, balance int) (protocol.Response, error)
	Sell(ctx context.Context, ticketID string) (protocol.Response, error)
}

// ScalpChannel is the part of peer.Channel the Engine uses.
type ScalpChannel interface {
	RequestScalp(balance int) error
	CancelScalp()
	Completions() <-chan peer.Completion
	Done() <-chan struct{}
}

// State is the Engine's position within a round.
type State int32

const (
	StateIdle State = iota
	StateAwaitingExchange
	StateHolding
	StateSelling
	StateScalping
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingExchange:
		return "awaiting_exchange"
	case StateHolding:
		return "holding"
	case StateSelling:
		return "selling"
	case StateScalping:
		return "scalping"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// EngineConfig configures the Engine.
type EngineConfig struct {
	Rounds       int           // BUY rounds to perform (default: 15)
	ScalpTimeout time.Duration // Max wait for a peer answer, 0 = wait for the peer to stop
}

// DefaultEngineConfig returns the reference configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Rounds:       15,
		ScalpTimeout: 10 * time.Second,
	}
}

// EngineStats counts round outcomes.
type EngineStats struct {
	Rounds        int // Completed rounds
	Bought        int // Tickets bought from the exchange
	SoldBack      int // Tickets resold to the exchange
	Scalped       int // Tickets bought from the peer
	ScalpRefused  int // Peer offers above our balance
	ScalpLost     int // Peer deliveries the wallet rejected
	ScalpTimeouts int
	NoOps         int // Rounds that changed nothing
}
