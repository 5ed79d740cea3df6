package inventory

import (
	"fmt"
	"sync"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// OutcomeKind identifies the result of a Buy or Sell.
type OutcomeKind int

const (
	Purchased OutcomeKind = iota + 1
	InsufficientFunds
	SoldOut
	Resold
	InvalidTicket
)

func (k OutcomeKind) String() string {
	switch k {
	case Purchased:
		return "purchased"
	case InsufficientFunds:
		return "insufficient_funds"
	case SoldOut:
		return "sold_out"
	case Resold:
		return "resold"
	case InvalidTicket:
		return "invalid_ticket"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of a store operation. TicketID and Price are set
// for Purchased and Resold only.
type Outcome struct {
	Kind     OutcomeKind
	TicketID string
	Price    int
}

// OK reports whether the operation moved a ticket.
func (o Outcome) OK() bool {
	return o.Kind == Purchased || o.Kind == Resold
}

// Store holds the exchange inventory.
type Store struct {
	mu      sync.Mutex
	order   []string // issuance order
	tickets map[string]*model.Ticket
}

// NewStore builds a store from tickets in issuance order. Duplicate IDs and
// non-positive prices are rejected.
func NewStore(tickets []model.Ticket) (*Store, error) {
	s := &Store{
		order:   make([]string, 0, len(tickets)),
		tickets: make(map[string]*model.Ticket, len(tickets)),
	}
	for _, t := range tickets {
		if t.ID == "" {
			return nil, fmt.Errorf("ticket with empty id")
		}
		if t.Price <= 0 {
			return nil, fmt.Errorf("ticket %s: price must be positive, got %d", t.ID, t.Price)
		}
		if _, dup := s.tickets[t.ID]; dup {
			return nil, fmt.Errorf("duplicate ticket id %s", t.ID)
		}
		tc := t
		s.tickets[t.ID] = &tc
		s.order = append(s.order, t.ID)
	}
	return s, nil
}

// Buy sells the first unsold ticket in issuance order to a buyer holding
// balance, if the buyer can afford it.
func (s *Store) Buy(balance int) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		t := s.tickets[id]
		if t.Sold {
			continue
		}
		if t.Price > balance {
			return Outcome{Kind: InsufficientFunds}
		}
		t.Sold = true
		return Outcome{Kind: Purchased, TicketID: t.ID, Price: t.Price}
	}
	return Outcome{Kind: SoldOut}
}

// Sell returns a sold ticket to the inventory and reports its price.
func (s *Store) Sell(id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok || !t.Sold {
		return Outcome{Kind: InvalidTicket}
	}
	t.Sold = false
	return Outcome{Kind: Resold, TicketID: t.ID, Price: t.Price}
}

// Snapshot returns a copy of every ticket in issuance order.
func (s *Store) Snapshot() []model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tickets[id])
	}
	return out
}

// Len returns the number of tickets, which never changes.
func (s *Store) Len() int {
	return len(s.order)
}

// Remaining returns the number of unsold tickets.
func (s *Store) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tickets {
		if !t.Sold {
			n++
		}
	}
	return n
}
