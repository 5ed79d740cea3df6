package database

// One row per exchange trade event. event_id makes replays idempotent.
const tradesTablePostgres = `
CREATE TABLE IF NOT EXISTS trades (
	event_id   UUID PRIMARY KEY,
	session_id UUID NOT NULL,
	kind       TEXT NOT NULL,
	ticket_id  TEXT NOT NULL DEFAULT '',
	price      INTEGER NOT NULL DEFAULT 0,
	balance    INTEGER NOT NULL DEFAULT 0,
	at_us      BIGINT NOT NULL
)`

const tradesTableSQLite = `
CREATE TABLE IF NOT EXISTS trades (
	event_id   TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	ticket_id  TEXT NOT NULL DEFAULT '',
	price      INTEGER NOT NULL DEFAULT 0,
	balance    INTEGER NOT NULL DEFAULT 0,
	at_us      INTEGER NOT NULL
)`
