package wallet

import (
	"errors"
	"sync"
	"testing"

	"github.com/rickgao/ticket-exchange/internal/model"
)

func TestWallet_AcquireDebits(t *testing.T) {
	w := New(4000)

	if err := w.Acquire("10000", 250); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := w.Balance(); got != 3750 {
		t.Errorf("Balance() = %d, want 3750", got)
	}
	if got := w.Value(); got != 4000 {
		t.Errorf("Value() = %d, want 4000", got)
	}
}

func TestWallet_AcquireErrors(t *testing.T) {
	w := New(100)

	if err := w.Acquire("1", 150); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Acquire over balance error = %v, want ErrInsufficientBalance", err)
	}
	if err := w.Acquire("1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Acquire zero price error = %v, want ErrInvalidAmount", err)
	}
	if err := w.Acquire("1", 50); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := w.Acquire("1", 10); !errors.Is(err, ErrDuplicateHolding) {
		t.Errorf("duplicate Acquire error = %v, want ErrDuplicateHolding", err)
	}
	if got := w.Balance(); got != 50 {
		t.Errorf("Balance() = %d, want 50 after failed acquisitions", got)
	}
}

func TestWallet_TakeSettleRestore(t *testing.T) {
	w := New(1000)
	w.Acquire("b", 300)
	w.Acquire("a", 200)
	w.Acquire("c", 100)

	h, ok := w.TakeOldest()
	if !ok || h.TicketID != "b" || h.Price != 300 {
		t.Fatalf("TakeOldest() = %+v, %v; want b at 300", h, ok)
	}
	if got := w.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 while b is pending", got)
	}
	if got := w.Value(); got != 1000 {
		t.Errorf("Value() = %d, want 1000 with b pending", got)
	}

	// Pending tickets are not scalpable: the cheapest left is c.
	if offer, res := w.SellCheapest(0); res != ScalpTooExpensive || offer.Holding.TicketID != "c" {
		t.Errorf("SellCheapest offered %s (%v), want c", offer.Holding.TicketID, res)
	}

	if !w.Settle(h, 300) {
		t.Fatal("Settle(b) = false")
	}
	if got := w.Balance(); got != 700 {
		t.Errorf("Balance() = %d, want 700", got)
	}
	if got := w.Value(); got != 1000 {
		t.Errorf("Value() = %d, want 1000 (sell-back at cost conserves value)", got)
	}
	if w.Settle(h, 300) {
		t.Error("second Settle(b) should report false")
	}

	h, _ = w.TakeOldest()
	if h.TicketID != "a" {
		t.Fatalf("TakeOldest() = %s, want a", h.TicketID)
	}
	if !w.Restore(h) {
		t.Fatal("Restore(a) = false")
	}
	got := w.Holdings()
	if len(got) != 2 || got[0].TicketID != "a" || got[1].TicketID != "c" {
		t.Errorf("Holdings() after restore = %v, want [a c]", got)
	}
	if got := w.Balance(); got != 700 {
		t.Errorf("Balance() = %d, want unchanged 700", got)
	}
}

func TestWallet_TakeOldestEmpty(t *testing.T) {
	w := New(100)
	if _, ok := w.TakeOldest(); ok {
		t.Error("TakeOldest() on empty wallet should report false")
	}
	if w.Restore(model.Holding{TicketID: "x", Price: 10}) {
		t.Error("Restore of a ticket never taken should report false")
	}
}

func TestWallet_SellCheapest(t *testing.T) {
	tests := []struct {
		name         string
		holdings     map[string]int
		order        []string
		buyerBalance int
		wantResult   ScalpResult
		wantTicket   string
		wantPrice    int
		wantBalance  int
	}{
		{
			name:         "sold at double price",
			order:        []string{"10001", "10002"},
			holdings:     map[string]int{"10001": 300, "10002": 150},
			buyerBalance: 4000,
			wantResult:   ScalpSold,
			wantTicket:   "10002",
			wantPrice:    300,
			wantBalance:  1000 - 450 + 300,
		},
		{
			name:         "exact affordability",
			order:        []string{"7"},
			holdings:     map[string]int{"7": 200},
			buyerBalance: 400,
			wantResult:   ScalpSold,
			wantTicket:   "7",
			wantPrice:    400,
			wantBalance:  1000 - 200 + 400,
		},
		{
			name:         "buyer too poor",
			order:        []string{"7"},
			holdings:     map[string]int{"7": 200},
			buyerBalance: 399,
			wantResult:   ScalpTooExpensive,
			wantTicket:   "7",
			wantPrice:    400,
			wantBalance:  800,
		},
		{
			name:         "tie goes to oldest",
			order:        []string{"x", "y"},
			holdings:     map[string]int{"x": 250, "y": 250},
			buyerBalance: 1000,
			wantResult:   ScalpSold,
			wantTicket:   "x",
			wantPrice:    500,
			wantBalance:  1000 - 500 + 500,
		},
		{
			name:         "nothing held",
			buyerBalance: 4000,
			wantResult:   ScalpEmpty,
			wantBalance:  1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(1000)
			for _, id := range tt.order {
				if err := w.Acquire(id, tt.holdings[id]); err != nil {
					t.Fatalf("Acquire(%s): %v", id, err)
				}
			}

			offer, result := w.SellCheapest(tt.buyerBalance)
			if result != tt.wantResult {
				t.Fatalf("result = %v, want %v", result, tt.wantResult)
			}
			if offer.Holding.TicketID != tt.wantTicket || offer.Price != tt.wantPrice {
				t.Errorf("offer = %+v, want %s at %d", offer, tt.wantTicket, tt.wantPrice)
			}
			if result != ScalpEmpty && offer.Price != offer.Holding.Price*ScalpMarkup {
				t.Errorf("offer price %d is not %dx holding price %d", offer.Price, ScalpMarkup, offer.Holding.Price)
			}
			if got := w.Balance(); got != tt.wantBalance {
				t.Errorf("Balance() = %d, want %d", got, tt.wantBalance)
			}
			held := result != ScalpSold
			for _, h := range w.Holdings() {
				if h.TicketID == tt.wantTicket && !held {
					t.Errorf("ticket %s still held after sale", h.TicketID)
				}
			}
		})
	}
}

func TestWallet_HoldingsOrder(t *testing.T) {
	w := New(1000)
	for _, id := range []string{"3", "1", "2"} {
		w.Acquire(id, 100)
	}
	got := w.Holdings()
	want := []string{"3", "1", "2"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].TicketID != want[i] {
			t.Errorf("Holdings()[%d] = %s, want %s", i, got[i].TicketID, want[i])
		}
	}
}

func TestWallet_ConcurrentUse(t *testing.T) {
	w := New(1_000_000)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := string(rune('a'+g)) + string(rune('A'+i%26)) + string(rune('0'+i/26))
				if err := w.Acquire(id, 10); err != nil {
					t.Errorf("Acquire(%s): %v", id, err)
					return
				}
				h, ok := w.TakeOldest()
				if !ok {
					t.Errorf("TakeOldest after Acquire(%s) found nothing", id)
					return
				}
				w.Settle(h, h.Price)
			}
		}(g)
	}
	wg.Wait()

	if got := w.Value(); got != 1_000_000 {
		t.Errorf("Value() = %d, want 1000000", got)
	}
	if got := w.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
