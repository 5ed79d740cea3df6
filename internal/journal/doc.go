// Package journal records exchange trade events in a database.
//
// The Writer drains the router's journal queue into batches and hands each
// batch to a Sink:
//   - PostgresSink: pgx batch inserts
//   - SQLiteSink: one transaction per batch
//
// Inserts are append-only and ignore rows whose event_id already exists.
package journal
