// Package wallet holds an agent's balance and ticket holdings.
//
// A Wallet belongs to exactly one agent. The agent's engine and its peer
// listener both touch it, so every operation that reads and then mutates
// runs under the wallet's lock.
package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// Errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateHolding    = errors.New("ticket already held")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// ScalpMarkup is the multiplier a scalper charges over its own purchase price.
const ScalpMarkup = 2

// Wallet is an agent's balance plus its holdings in acquisition order.
type Wallet struct {
	mu      sync.Mutex
	balance int
	order   []string
	prices  map[string]int
	pending map[string]int // Taken for resale, not yet settled
}

// New creates a wallet with a starting balance.
func New(balance int) *Wallet {
	if balance < 0 {
		balance = 0
	}
	return &Wallet{
		balance: balance,
		prices:  make(map[string]int),
		pending: make(map[string]int),
	}
}

// Balance returns the current balance.
func (w *Wallet) Balance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Acquire records a purchased ticket and debits its price.
func (w *Wallet) Acquire(ticketID string, price int) error {
	if price <= 0 {
		return fmt.Errorf("%w: price %d", ErrInvalidAmount, price)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, held := w.prices[ticketID]; held {
		return fmt.Errorf("%w: %s", ErrDuplicateHolding, ticketID)
	}
	if _, held := w.pending[ticketID]; held {
		return fmt.Errorf("%w: %s", ErrDuplicateHolding, ticketID)
	}
	if price > w.balance {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientBalance, price, w.balance)
	}
	w.balance -= price
	w.prices[ticketID] = price
	w.order = append(w.order, ticketID)
	return nil
}

// TakeOldest removes the earliest acquired holding and parks it as
// pending resale. A pending ticket is out of reach of SellCheapest, so the
// peer cannot scalp a ticket the exchange is buying back. Settle or Restore
// completes it.
func (w *Wallet) TakeOldest() (model.Holding, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) == 0 {
		return model.Holding{}, false
	}
	id := w.order[0]
	h := model.Holding{TicketID: id, Price: w.prices[id]}
	w.removeLocked(id)
	w.pending[id] = h.Price
	return h, true
}

// Settle completes the resale of a pending holding, crediting proceeds.
func (w *Wallet) Settle(h model.Holding, proceeds int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[h.TicketID]; !ok {
		return false
	}
	delete(w.pending, h.TicketID)
	w.balance += proceeds
	return true
}

// Restore puts a pending holding back as the oldest holding.
func (w *Wallet) Restore(h model.Holding) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	price, ok := w.pending[h.TicketID]
	if !ok {
		return false
	}
	delete(w.pending, h.TicketID)
	w.prices[h.TicketID] = price
	w.order = append([]string{h.TicketID}, w.order...)
	return true
}

// ScalpResult is the outcome of an incoming scalp request.
type ScalpResult int

const (
	ScalpSold ScalpResult = iota + 1
	ScalpTooExpensive
	ScalpEmpty
)

// Offer is the ticket a scalper put up for a scalp request.
type Offer struct {
	Holding model.Holding
	Price   int // Holding.Price times ScalpMarkup
}

// SellCheapest answers a scalp request from a buyer with buyerBalance. The
// cheapest holding (earliest acquired on ties) is offered at ScalpMarkup
// times its price. If the buyer can afford it the holding is removed and
// the marked-up price credited in the same critical section.
func (w *Wallet) SellCheapest(buyerBalance int) (Offer, ScalpResult) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) == 0 {
		return Offer{}, ScalpEmpty
	}

	cheapest := w.order[0]
	for _, id := range w.order[1:] {
		if w.prices[id] < w.prices[cheapest] {
			cheapest = id
		}
	}
	offer := Offer{
		Holding: model.Holding{TicketID: cheapest, Price: w.prices[cheapest]},
		Price:   w.prices[cheapest] * ScalpMarkup,
	}
	if buyerBalance < offer.Price {
		return offer, ScalpTooExpensive
	}

	w.removeLocked(cheapest)
	w.balance += offer.Price
	return offer, ScalpSold
}

// Holdings returns a copy of the holdings in acquisition order.
func (w *Wallet) Holdings() []model.Holding {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]model.Holding, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, model.Holding{TicketID: id, Price: w.prices[id]})
	}
	return out
}

// Len returns the number of holdings.
func (w *Wallet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}

// Value returns balance plus the purchase price of every holding.
func (w *Wallet) Value() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := w.balance
	for _, p := range w.prices {
		total += p
	}
	for _, p := range w.pending {
		total += p
	}
	return total
}

// removeLocked drops a holding. Must be called with lock held.
func (w *Wallet) removeLocked(ticketID string) {
	delete(w.prices, ticketID)
	for i, id := range w.order {
		if id == ticketID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			return
		}
	}
}
