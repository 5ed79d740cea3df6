package router

import (
	"log/slog"
	"sync/atomic"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// Config sizes the output queues. A size of 0 disables that output.
type Config struct {
	JournalBufferSize int // Default: 1000
	FeedBufferSize    int // Default: 256
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		JournalBufferSize: 1000,
		FeedBufferSize:    256,
	}
}

// Outputs gives consumers their queues. Disabled outputs are nil.
type Outputs struct {
	Journal *Queue[model.TradeEvent]
	Feed    *Queue[model.TradeEvent]
}

// Stats contains runtime statistics.
type Stats struct {
	Published int64
	Dropped   int64 // Published after Close
	Journal   QueueStats
	Feed      QueueStats
}

// Router distributes trade events to consumers.
type Router interface {
	// Publish copies an event to every enabled output. Never blocks.
	Publish(event model.TradeEvent)

	// Outputs returns the consumer queues.
	Outputs() Outputs

	// Close closes every output. Consumers drain what is left.
	Close()

	// Stats returns current router statistics.
	Stats() Stats
}

type router struct {
	logger *slog.Logger

	journal *Queue[model.TradeEvent]
	feed    *Queue[model.TradeEvent]

	published atomic.Int64
	dropped   atomic.Int64
}

// New creates a Router.
func New(cfg Config, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &router{logger: logger.With("component", "router")}
	if cfg.JournalBufferSize > 0 {
		r.journal = NewQueue[model.TradeEvent](cfg.JournalBufferSize)
	}
	if cfg.FeedBufferSize > 0 {
		r.feed = NewQueue[model.TradeEvent](cfg.FeedBufferSize)
	}

	r.logger.Debug("router created",
		"journal", r.journal != nil,
		"feed", r.feed != nil,
	)
	return r
}

func (r *router) Publish(e model.TradeEvent) {
	r.published.Add(1)
	for _, q := range []*Queue[model.TradeEvent]{r.journal, r.feed} {
		if q != nil && !q.Push(e) {
			r.dropped.Add(1)
		}
	}
}

func (r *router) Outputs() Outputs {
	return Outputs{Journal: r.journal, Feed: r.feed}
}

func (r *router) Close() {
	if r.journal != nil {
		r.journal.Close()
	}
	if r.feed != nil {
		r.feed.Close()
	}
	r.logger.Debug("router closed", "published", r.published.Load())
}

func (r *router) Stats() Stats {
	s := Stats{
		Published: r.published.Load(),
		Dropped:   r.dropped.Load(),
	}
	if r.journal != nil {
		s.Journal = r.journal.Stats()
	}
	if r.feed != nil {
		s.Feed = r.feed.Stats()
	}
	return s
}
