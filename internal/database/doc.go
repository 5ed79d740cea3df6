// Package database opens the trade journal's backing stores.
//
// Two backends are supported:
//   - PostgreSQL through a pgx connection pool
//   - SQLite files through the pure-Go modernc driver
//
// Both get the same trades table from Migrate*.
package database
