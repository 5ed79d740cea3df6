package peer

import (
	"errors"
	"time"
)

// Errors
var (
	ErrStopped        = errors.New("peer channel stopped")
	ErrAlreadyRunning = errors.New("peer channel already running")
)

// CompletionKind describes how an outstanding scalp request resolved.
type CompletionKind int

const (
	// Acquired: the peer delivered a ticket, already recorded in the wallet.
	Acquired CompletionKind = iota + 1
	// Refused: the peer's offer was more than the quoted balance.
	Refused
	// PeerSoldOut: the peer holds nothing to sell.
	PeerSoldOut
	// AcquireFailed: the peer delivered a ticket the wallet could not record.
	AcquireFailed
)

func (k CompletionKind) String() string {
	switch k {
	case Acquired:
		return "acquired"
	case Refused:
		return "refused"
	case PeerSoldOut:
		return "peer_sold_out"
	case AcquireFailed:
		return "acquire_failed"
	default:
		return "unknown"
	}
}

// Completion resolves one scalp request.
type Completion struct {
	Kind     CompletionKind
	TicketID string // Acquired and AcquireFailed only
	Price    int    // Acquired and AcquireFailed only
}

// Config configures a peer channel.
type Config struct {
	ID          string        // Own sender identifier
	ListenAddr  string        // Local UDP address
	PeerAddr    string        // Peer's UDP address, target of scalp requests
	ReadTimeout time.Duration // Per-read deadline, bounds stop latency
	IdleTimeout time.Duration // Stop after this long without a processed message
}

// DefaultConfig returns the reference timings.
func DefaultConfig() Config {
	return Config{
		ReadTimeout: 1 * time.Second,
		IdleTimeout: 180 * time.Second,
	}
}

// Stats counts listener activity.
type Stats struct {
	Processed    int64
	Malformed    int64
	Ignored      int64 // Own datagrams
	ScalpsSold   int64
	ScalpsBought int64
}

// StopReason records why the listener loop ended.
type StopReason string

const (
	StopCancelled StopReason = "cancelled"
	StopIdle      StopReason = "idle"
	StopClosed    StopReason = "closed"
	StopFailed    StopReason = "failed"
)
