// Package router fans trade events out from the exchange to their consumers.
//
// The exchange publishes one event per handled request. The router copies
// each event into an unbounded queue per consumer:
//   - Journal: batched into the trade journal
//   - Feed: broadcast to monitor WebSocket clients
//
// Publishing never blocks a session. A consumer that falls behind only grows
// its own queue.
package router
