package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/ticket-exchange/internal/model"
	"github.com/rickgao/ticket-exchange/internal/router"
)

// Writer consumes trade events from a queue and writes them in batches.
type Writer struct {
	cfg    Config
	logger *slog.Logger

	// Input from the router
	input *router.Queue[model.TradeEvent]

	sink Sink

	// Batching
	batch   []Row
	batchMu sync.Mutex

	// Lifecycle
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	consumed chan struct{}

	metrics Metrics
}

// NewWriter creates a Writer.
func NewWriter(cfg Config, input *router.Queue[model.TradeEvent], sink Sink, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = def.FlushTimeout
	}

	return &Writer{
		cfg:      cfg,
		input:    input,
		sink:     sink,
		logger:   logger.With("component", "journal"),
		batch:    make([]Row, 0, cfg.BatchSize),
		consumed: make(chan struct{}),
	}
}

// Start begins consuming events.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("journal writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop waits for the input queue to be closed and drained, then flushes the
// final batch. If ctx expires first the rows consumed so far are flushed and
// the rest stay queued.
func (w *Writer) Stop(ctx context.Context) error {
	w.logger.Info("stopping journal writer")

	select {
	case <-w.consumed:
	case <-ctx.Done():
		w.logger.Warn("journal writer stop timed out", "queued", w.input.Len())
	}

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	w.flush()

	m := w.Stats()
	w.logger.Info("journal writer stopped", "inserts", m.Inserts, "conflicts", m.Conflicts, "errors", m.Errors)
	return nil
}

// Stats returns current metrics.
func (w *Writer) Stats() Metrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop moves events from the queue into the pending batch.
func (w *Writer) consumeLoop() {
	defer w.wg.Done()
	defer close(w.consumed)

	for {
		events, ok := w.input.PopBatch(w.cfg.BatchSize)
		if !ok {
			return
		}
		for _, e := range events {
			w.add(RowFromEvent(e))
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *Writer) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush()
		}
	}
}

// add appends a row, flushing when the batch is full.
func (w *Writer) add(row Row) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	w.metrics.Received++
	full := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if full {
		w.flush()
	}
}

// flush writes the pending batch to the sink.
func (w *Writer) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	rows := w.batch
	w.batch = make([]Row, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.FlushTimeout)
	defer cancel()

	conflicts, err := w.sink.Insert(ctx, rows)

	w.batchMu.Lock()
	if err != nil {
		w.metrics.Errors++
	} else {
		w.metrics.Inserts += int64(len(rows) - conflicts)
		w.metrics.Conflicts += int64(conflicts)
		w.metrics.Flushes++
	}
	w.batchMu.Unlock()

	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(rows))
		return
	}
	w.logger.Debug("flushed trades",
		"count", len(rows),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}
