package inventory

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rickgao/ticket-exchange/internal/model"
)

// GenerateConfig controls inventory issuance.
type GenerateConfig struct {
	Count    int   // Number of tickets (default: 25)
	FirstID  int   // First issued identifier (default: 10000)
	MinPrice int   // Inclusive lower price bound (default: 200)
	MaxPrice int   // Inclusive upper price bound (default: 400)
	Seed     int64 // 0 seeds from the clock
}

// DefaultGenerateConfig returns the reference inventory shape.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Count:    25,
		FirstID:  10000,
		MinPrice: 200,
		MaxPrice: 400,
	}
}

// Generate issues cfg.Count tickets with IDs FirstID, FirstID+1, ... and
// prices drawn uniformly from [MinPrice, MaxPrice].
func Generate(cfg GenerateConfig) ([]model.Ticket, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("count must be >= 1, got %d", cfg.Count)
	}
	if cfg.MinPrice < 1 || cfg.MaxPrice < cfg.MinPrice {
		return nil, fmt.Errorf("invalid price range [%d, %d]", cfg.MinPrice, cfg.MaxPrice)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))

	span := cfg.MaxPrice - cfg.MinPrice + 1
	tickets := make([]model.Ticket, cfg.Count)
	for i := range tickets {
		tickets[i] = model.Ticket{
			ID:    strconv.Itoa(cfg.FirstID + i),
			Price: cfg.MinPrice + rng.IntN(span),
		}
	}
	return tickets, nil
}

// NewGeneratedStore is Generate followed by NewStore.
func NewGeneratedStore(cfg GenerateConfig) (*Store, error) {
	tickets, err := Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("generate inventory: %w", err)
	}
	return NewStore(tickets)
}
