package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// Config holds batching settings.
type Config struct {
	BatchSize     int           // Rows per insert (default: 100)
	FlushInterval time.Duration // Max time a row waits in a batch (default: 1s)
	FlushTimeout  time.Duration // Per-flush database deadline (default: 10s)
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: time.Second,
		FlushTimeout:  10 * time.Second,
	}
}

// Metrics counts writer activity.
type Metrics struct {
	Received  int64
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// Row is one trades table row.
type Row struct {
	EventID   uuid.UUID
	SessionID uuid.UUID
	Kind      string
	TicketID  string
	Price     int
	Balance   int
	AtUs      int64 // Microseconds since epoch
}

// RowFromEvent converts a trade event into a row.
func RowFromEvent(e model.TradeEvent) Row {
	return Row{
		EventID:   e.ID,
		SessionID: e.SessionID,
		Kind:      string(e.Kind),
		TicketID:  e.TicketID,
		Price:     e.Price,
		Balance:   e.Balance,
		AtUs:      e.At.UnixMicro(),
	}
}

// Sink persists batches of rows.
type Sink interface {
	// Insert writes rows, skipping ones already present. It returns how many
	// were skipped.
	Insert(ctx context.Context, rows []Row) (conflicts int, err error)

	// Close releases the underlying connection.
	Close() error
}
