package router

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int](4)
	for i := range 5 {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}
	for i := range 5 {
		got, ok := q.TryPop()
		if !ok || got != i {
			t.Fatalf("TryPop() = %d, %v; want %d, true", got, ok, i)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Error("TryPop() on empty queue returned true")
	}
}

func TestQueue_GrowsWhenFull(t *testing.T) {
	q := NewQueue[int](2)

	// Wrap the ring before growing so the copy has to unroll it.
	q.Push(0)
	q.Push(1)
	q.TryPop()
	q.Push(2)
	q.Push(3)

	stats := q.Stats()
	if stats.Grows != 1 || stats.Cap != 4 {
		t.Errorf("Stats() = %+v, want 1 grow to cap 4", stats)
	}
	for _, want := range []int{1, 2, 3} {
		if got, _ := q.TryPop(); got != want {
			t.Errorf("TryPop() = %d, want %d", got, want)
		}
	}
	if stats.Peak != 3 {
		t.Errorf("Peak = %d, want 3", stats.Peak)
	}
}

func TestQueue_PopBatch(t *testing.T) {
	q := NewQueue[int](8)
	for i := range 5 {
		q.Push(i)
	}

	tests := []struct {
		max  int
		want []int
	}{
		{max: 2, want: []int{0, 1}},
		{max: 0, want: []int{2, 3, 4}},
	}
	for _, tt := range tests {
		got, ok := q.PopBatch(tt.max)
		if !ok {
			t.Fatalf("PopBatch(%d) reported closed", tt.max)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("PopBatch(%d) = %v, want %v", tt.max, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("PopBatch(%d)[%d] = %d, want %d", tt.max, i, got[i], tt.want[i])
			}
		}
	}
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string](1)
	got := make(chan string, 1)
	go func() {
		v, _ := q.Pop()
		got <- v
	}()

	select {
	case v := <-got:
		t.Fatalf("Pop returned %q before any push", v)
	case <-time.After(20 * time.Millisecond):
	}

	q.Push("event")
	select {
	case v := <-got:
		if v != "event" {
			t.Errorf("Pop() = %q, want event", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake after Push")
	}
}

func TestQueue_CloseDrainsThenStops(t *testing.T) {
	q := NewQueue[int](4)
	q.Push(1)
	q.Push(2)
	q.Close()

	if q.Push(3) {
		t.Error("Push after Close returned true")
	}
	batch, ok := q.PopBatch(0)
	if !ok || len(batch) != 2 {
		t.Fatalf("PopBatch after Close = %v, %v; want 2 items", batch, ok)
	}
	if _, ok := q.PopBatch(0); ok {
		t.Error("PopBatch on closed empty queue reported true")
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop on closed empty queue reported true")
	}
}

func TestQueue_CloseWakesBlockedConsumers(t *testing.T) {
	q := NewQueue[int](1)
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.PopBatch(0)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumers still blocked after Close")
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue[int](2)
	const producers, each = 4, 250

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				q.Push(p*each + i)
			}
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		v, ok := q.TryPop()
		if !ok {
			break
		}
		if seen[v] {
			t.Fatalf("item %d popped twice", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*each {
		t.Errorf("popped %d items, want %d", len(seen), producers*each)
	}
	if s := q.Stats(); s.Pushed != s.Popped {
		t.Errorf("Pushed %d != Popped %d", s.Pushed, s.Popped)
	}
}
