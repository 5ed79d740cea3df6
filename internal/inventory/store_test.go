package inventory

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"testing"

	"github.com/rickgao/ticket-exchange/internal/model"
)

func newTestStore(t *testing.T, prices ...int) *Store {
	t.Helper()
	tickets := make([]model.Ticket, len(prices))
	for i, p := range prices {
		tickets[i] = model.Ticket{ID: idFor(i), Price: p}
	}
	s, err := NewStore(tickets)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func idFor(i int) string {
	return string(rune('a'+i)) + "-ticket"
}

func TestNewStore_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		tickets []model.Ticket
	}{
		{name: "empty id", tickets: []model.Ticket{{ID: "", Price: 10}}},
		{name: "zero price", tickets: []model.Ticket{{ID: "1", Price: 0}}},
		{name: "negative price", tickets: []model.Ticket{{ID: "1", Price: -5}}},
		{name: "duplicate id", tickets: []model.Ticket{{ID: "1", Price: 10}, {ID: "1", Price: 20}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStore(tt.tickets); err == nil {
				t.Error("NewStore() expected error, got nil")
			}
		})
	}
}

func TestStore_BuyStopsAtFirstUnaffordable(t *testing.T) {
	s := newTestStore(t, 200, 300, 400)

	got := s.Buy(250)
	if got.Kind != Purchased || got.TicketID != idFor(0) || got.Price != 200 {
		t.Fatalf("first Buy(250) = %+v, want purchased %s at 200", got, idFor(0))
	}

	got = s.Buy(250)
	if got.Kind != InsufficientFunds {
		t.Fatalf("second Buy(250) = %v, want %v", got.Kind, InsufficientFunds)
	}
}

func TestStore_BuyDoesNotSkipToCheaperTicket(t *testing.T) {
	s := newTestStore(t, 400, 100)

	if got := s.Buy(150); got.Kind != InsufficientFunds {
		t.Fatalf("Buy(150) = %v, want %v", got.Kind, InsufficientFunds)
	}
	if got := s.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}
}

func TestStore_SoldOut(t *testing.T) {
	s := newTestStore(t, 100, 100)

	s.Buy(1000)
	s.Buy(1000)

	if got := s.Buy(1000); got.Kind != SoldOut {
		t.Fatalf("Buy on empty inventory = %v, want %v", got.Kind, SoldOut)
	}
	if got := s.Buy(0); got.Kind != SoldOut {
		t.Fatalf("Buy(0) on empty inventory = %v, want %v", got.Kind, SoldOut)
	}
}

func TestStore_BuyNeverRepeatsTicket(t *testing.T) {
	s := newTestStore(t, 10, 20, 30, 40)

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		got := s.Buy(1000)
		if got.Kind != Purchased {
			t.Fatalf("Buy #%d = %v, want purchased", i, got.Kind)
		}
		if seen[got.TicketID] {
			t.Fatalf("ticket %s returned twice", got.TicketID)
		}
		seen[got.TicketID] = true
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t, 275, 300)

	bought := s.Buy(1000)
	if bought.Kind != Purchased {
		t.Fatalf("Buy = %v, want purchased", bought.Kind)
	}

	sold := s.Sell(bought.TicketID)
	if sold.Kind != Resold {
		t.Fatalf("Sell = %v, want %v", sold.Kind, Resold)
	}
	if sold.Price != bought.Price {
		t.Errorf("Sell price = %d, want %d", sold.Price, bought.Price)
	}

	for _, tk := range s.Snapshot() {
		if tk.ID == bought.TicketID && tk.Sold {
			t.Errorf("ticket %s still sold after resale", tk.ID)
		}
	}
}

func TestStore_SellInvalid(t *testing.T) {
	s := newTestStore(t, 100)

	if got := s.Sell("missing"); got.Kind != InvalidTicket {
		t.Errorf("Sell(missing) = %v, want %v", got.Kind, InvalidTicket)
	}
	if got := s.Sell(idFor(0)); got.Kind != InvalidTicket {
		t.Errorf("Sell(unsold) = %v, want %v", got.Kind, InvalidTicket)
	}

	s.Buy(100)
	s.Sell(idFor(0))
	if got := s.Sell(idFor(0)); got.Kind != InvalidTicket {
		t.Errorf("second Sell = %v, want %v", got.Kind, InvalidTicket)
	}
}

func TestStore_Conservation(t *testing.T) {
	prices := []int{210, 390, 250, 330, 205, 400, 299}
	s := newTestStore(t, prices...)
	before := s.Snapshot()

	rng := rand.New(rand.NewPCG(7, 11))
	var owned []string
	for i := 0; i < 500; i++ {
		if rng.IntN(2) == 0 || len(owned) == 0 {
			if o := s.Buy(rng.IntN(500)); o.Kind == Purchased {
				owned = append(owned, o.TicketID)
			}
			continue
		}
		j := rng.IntN(len(owned))
		if o := s.Sell(owned[j]); o.Kind != Resold {
			t.Fatalf("Sell(%s) = %v, want resold", owned[j], o.Kind)
		}
		owned = append(owned[:j], owned[j+1:]...)
	}

	after := s.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("ticket count changed: %d -> %d", len(before), len(after))
	}
	sold := 0
	for i := range after {
		if after[i].ID != before[i].ID || after[i].Price != before[i].Price {
			t.Errorf("ticket %d changed: %+v -> %+v", i, before[i], after[i])
		}
		if after[i].Sold {
			sold++
		}
	}
	if sold != len(owned) {
		t.Errorf("sold tickets = %d, owned by caller = %d", sold, len(owned))
	}
}

func TestStore_ConcurrentBuyersNeverShareTicket(t *testing.T) {
	const n = 200
	tickets := make([]model.Ticket, n)
	for i := range tickets {
		tickets[i] = model.Ticket{ID: strconv.Itoa(i), Price: 1}
	}
	s, err := NewStore(tickets)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var (
		mu     sync.Mutex
		owners = make(map[string]int)
		wg     sync.WaitGroup
	)
	for agent := 0; agent < 2; agent++ {
		wg.Add(1)
		go func(agent int) {
			defer wg.Done()
			for {
				o := s.Buy(10)
				if o.Kind == SoldOut {
					return
				}
				mu.Lock()
				if prev, dup := owners[o.TicketID]; dup {
					t.Errorf("ticket %s sold to agent %d and agent %d", o.TicketID, prev, agent)
				}
				owners[o.TicketID] = agent
				mu.Unlock()
			}
		}(agent)
	}
	wg.Wait()

	if len(owners) != n {
		t.Errorf("sold %d distinct tickets, want %d", len(owners), n)
	}
	if got := s.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}
