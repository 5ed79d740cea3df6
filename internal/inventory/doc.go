// Package inventory implements the exchange's Inventory Store.
//
// The Store owns the ticket set and exposes only atomic Buy and Sell
// operations. Both run under one mutex covering the whole scan-and-mutate
// sequence, which is the only cross-agent ordering guarantee the exchange
// provides.
//
// Buy policy: tickets are scanned in issuance order and the first unsold
// ticket decides the outcome. If the buyer cannot afford it the result is
// InsufficientFunds, even when a cheaper unsold ticket exists further on.
package inventory
