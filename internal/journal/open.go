package journal

import (
	"context"
	"fmt"

	"github.com/rickgao/ticket-exchange/internal/config"
	"github.com/rickgao/ticket-exchange/internal/database"
)

// Open connects the sink selected by cfg.Driver and creates the trades
// table. Driver "none" returns a nil sink.
func Open(ctx context.Context, cfg config.JournalConfig) (Sink, error) {
	switch cfg.Driver {
	case "", config.JournalNone:
		return nil, nil

	case config.JournalSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLiteSink(db), nil

	case config.JournalPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres journal: %w", err)
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return NewPostgresSink(pool), nil

	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}
