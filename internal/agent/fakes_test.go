package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rickgao/ticket-exchange/internal/inventory"
	"github.com/rickgao/ticket-exchange/internal/model"
	"github.com/rickgao/ticket-exchange/internal/peer"
	"github.com/rickgao/ticket-exchange/internal/protocol"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reply struct {
	resp protocol.Response
	err  error
}

func ok(id string, price int) reply {
	return reply{resp: protocol.TicketResponse(id, price)}
}

func kind(k protocol.ResponseKind) reply {
	return reply{resp: protocol.Response{Kind: k}}
}

// scriptedExchange answers from fixed reply queues. An exhausted BUY queue
// answers SOLDOUT, an exhausted SELL queue answers ERROR.
type scriptedExchange struct {
	mu    sync.Mutex
	buys  []reply
	sells []reply
	calls []string
}

func (x *scriptedExchange) Buy(_ context.Context, balance int) (protocol.Response, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, fmt.Sprintf("BUY %d", balance))
	if len(x.buys) == 0 {
		return protocol.Response{Kind: protocol.ResponseSoldOut}, nil
	}
	r := x.buys[0]
	x.buys = x.buys[1:]
	return r.resp, r.err
}

func (x *scriptedExchange) Sell(_ context.Context, id string) (protocol.Response, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, "SELL "+id)
	if len(x.sells) == 0 {
		return protocol.Response{Kind: protocol.ResponseError}, nil
	}
	r := x.sells[0]
	x.sells = x.sells[1:]
	return r.resp, r.err
}

func (x *scriptedExchange) Calls() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.calls...)
}

// storeExchange serves requests straight from an inventory store.
type storeExchange struct {
	store *inventory.Store
}

func newStoreExchange(prices ...int) *storeExchange {
	tickets := make([]model.Ticket, len(prices))
	for i, p := range prices {
		tickets[i] = model.Ticket{ID: fmt.Sprint(10000 + i), Price: p}
	}
	store, err := inventory.NewStore(tickets)
	if err != nil {
		panic(err)
	}
	return &storeExchange{store: store}
}

func (x *storeExchange) Buy(_ context.Context, balance int) (protocol.Response, error) {
	out := x.store.Buy(balance)
	switch out.Kind {
	case inventory.Purchased:
		return protocol.TicketResponse(out.TicketID, out.Price), nil
	case inventory.InsufficientFunds:
		return protocol.Response{Kind: protocol.ResponseNoFunds}, nil
	default:
		return protocol.Response{Kind: protocol.ResponseSoldOut}, nil
	}
}

func (x *storeExchange) Sell(_ context.Context, id string) (protocol.Response, error) {
	out := x.store.Sell(id)
	if out.Kind != inventory.Resold {
		return protocol.Response{Kind: protocol.ResponseError}, nil
	}
	return protocol.TicketResponse(out.TicketID, out.Price), nil
}

// fakeScalp stands in for the peer channel. onRequest runs synchronously
// inside RequestScalp and may post a completion.
type fakeScalp struct {
	mu          sync.Mutex
	completions chan peer.Completion
	done        chan struct{}
	requestErr  error
	onRequest   func(f *fakeScalp, balance int)
	requests    []int
	cancels     int
}

func newFakeScalp() *fakeScalp {
	return &fakeScalp{
		completions: make(chan peer.Completion, 1),
		done:        make(chan struct{}),
	}
}

func (f *fakeScalp) RequestScalp(balance int) error {
	if f.requestErr != nil {
		return f.requestErr
	}
	f.mu.Lock()
	f.requests = append(f.requests, balance)
	f.mu.Unlock()
	if f.onRequest != nil {
		f.onRequest(f, balance)
	}
	return nil
}

func (f *fakeScalp) CancelScalp() {
	f.mu.Lock()
	f.cancels++
	f.mu.Unlock()
}

func (f *fakeScalp) Completions() <-chan peer.Completion {
	return f.completions
}

func (f *fakeScalp) Done() <-chan struct{} {
	return f.done
}

func (f *fakeScalp) Requests() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.requests...)
}

func (f *fakeScalp) Cancels() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

func (f *fakeScalp) post(c peer.Completion) {
	f.completions <- c
}
