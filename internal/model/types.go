package model

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Inventory Types
// -----------------------------------------------------------------------------

// Ticket is a single ticket held by the exchange.
type Ticket struct {
	ID    string `json:"id"`    // Issued identifier, unique for the inventory lifetime
	Price int    `json:"price"` // Fixed at creation
	Sold  bool   `json:"sold"`
}

// Holding is a ticket owned by an agent.
type Holding struct {
	TicketID string `json:"ticket_id"`
	Price    int    `json:"price"` // Price the agent paid
}

// -----------------------------------------------------------------------------
// Trade Events
// -----------------------------------------------------------------------------

// TradeKind classifies an exchange dispatch.
type TradeKind string

const (
	KindBuy      TradeKind = "buy"
	KindSell     TradeKind = "sell"
	KindNoFunds  TradeKind = "nofunds"
	KindSoldOut  TradeKind = "soldout"
	KindRejected TradeKind = "error"
)

// TradeEvent records the outcome of one request handled by the exchange.
type TradeEvent struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Kind      TradeKind `json:"kind"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Price     int       `json:"price,omitempty"`
	Balance   int       `json:"balance,omitempty"` // Buyer balance quoted in a BUY
	At        time.Time `json:"at"`
}

// NewTradeEvent stamps an event with a fresh ID and the current time.
func NewTradeEvent(session uuid.UUID, kind TradeKind, ticketID string, price, balance int) TradeEvent {
	return TradeEvent{
		ID:        uuid.New(),
		SessionID: session,
		Kind:      kind,
		TicketID:  ticketID,
		Price:     price,
		Balance:   balance,
		At:        time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Reports
// -----------------------------------------------------------------------------

// ExchangeReport is the exchange's state at shutdown.
type ExchangeReport struct {
	Tickets   []Ticket      `json:"tickets"`
	Sessions  int           `json:"sessions"`
	Sold      int           `json:"sold"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// AgentReport is an agent's state at shutdown.
type AgentReport struct {
	AgentID  string    `json:"agent_id"`
	Balance  int       `json:"balance"`
	Holdings []Holding `json:"holdings"`
	Rounds   int       `json:"rounds"`
	Scalps   int       `json:"scalps"` // Tickets bought from the peer
	Err      string    `json:"error,omitempty"`
}

// HoldingsValue returns the summed purchase price of all holdings.
func (r AgentReport) HoldingsValue() int {
	total := 0
	for _, h := range r.Holdings {
		total += h.Price
	}
	return total
}
