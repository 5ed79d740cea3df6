package journal

import (
	"context"
	"database/sql"
	"fmt"
)

const insertSQLite = `
	INSERT OR IGNORE INTO trades (event_id, session_id, kind, ticket_id, price, balance, at_us)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// SQLiteSink writes rows to a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink wraps db. The sink owns db and closes it.
func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

// Insert writes rows in a single transaction.
func (s *SQLiteSink) Insert(ctx context.Context, rows []Row) (conflicts int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQLite)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		res, err := stmt.ExecContext(ctx,
			r.EventID.String(), r.SessionID.String(), r.Kind, r.TicketID, r.Price, r.Balance, r.AtUs)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.EventID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			conflicts++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return conflicts, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
