// Package connection implements the agent's reliable channel to the exchange.
//
// The Client:
//   - Dials the exchange over TCP with a timeout
//   - Sends one newline-terminated request per round trip
//   - Reads exactly one response line per request
//   - Honours context cancellation on every blocking read and write
package connection
