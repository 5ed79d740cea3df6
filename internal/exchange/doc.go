// Package exchange implements the Exchange Session Manager.
//
// The Server:
//   - Listens on TCP and accepts a fixed number of agent connections
//   - Serves each connection from its own goroutine, one response per request
//   - Routes every BUY and SELL through the shared inventory.Store
//   - Optionally holds sessions at a startup barrier until every agent is connected
//   - Waits for all sessions to end, then reports the final inventory
//
// A failure on one connection ends only that session.
package exchange
