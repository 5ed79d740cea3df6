// Package model defines shared data types used by the exchange and the agents.
//
// Conventions:
//   - Prices and balances: plain integer currency units
//   - Ticket IDs: decimal strings issued from a fixed range (10000, 10001, ...)
//   - Event and session IDs: uuid.UUID
//   - Timestamps: time.Time in memory, int64 microseconds since epoch in storage
package model
