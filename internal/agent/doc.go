// Package agent implements a trading agent.
//
// The Engine drives the exchange side:
//   - Sends BUY <balance> once per round for a fixed number of rounds
//   - Records purchases, sells the oldest holding back on NOFUNDS
//   - On SOLDOUT asks the peer for a scalp and waits for the answer
//   - Sells back when the peer's offer is more than the balance
//
// The Agent runs the Engine next to the peer channel listener, lingers for
// late peer traffic once the rounds are done, and reports the final wallet.
package agent
