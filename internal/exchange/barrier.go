package exchange

import "sync"

// barrier releases waiters once n parties have arrived. It can be broken,
// after which every current and future waiter is turned away.
type barrier struct {
	mu       sync.Mutex
	need     int
	arrived  int
	released chan struct{}
	broken   chan struct{}
	isBroken bool
}

func newBarrier(n int) *barrier {
	return &barrier{
		need:     n,
		released: make(chan struct{}),
		broken:   make(chan struct{}),
	}
}

// arrive counts one party. The last arrival releases the barrier.
func (b *barrier) arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.arrived++
	if b.arrived == b.need && !b.isBroken {
		close(b.released)
	}
}

// breakBarrier turns away all waiters. No effect once released.
func (b *barrier) breakBarrier() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isBroken || b.arrived >= b.need {
		return
	}
	b.isBroken = true
	close(b.broken)
}
