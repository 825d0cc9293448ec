package beat

import (
	"fmt"

	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/ring"
)

// MaxShards caps the shard count: the merge order at commit interleaves
// shard and tick indices, and the 8-beat design assumes at most 8 shards.
const MaxShards = 8

// Config is the engine construction policy. Set once, read-only
// thereafter.
type Config struct {
	// Shards is the number of parallel scheduler instances, 1..8.
	Shards int

	// RingCapacity is the per-tick-slot capacity of both rings
	// (0 selects ring.DefaultSlotCapacity).
	RingCapacity int

	// MaxParkAttempts is the hot-path retry limit before a parked batch is
	// demoted to the cold path (0 selects DefaultMaxParkAttempts).
	MaxParkAttempts int

	// TickBudget is the per-operation budget in ticks
	// (0 selects fiber.DefaultTickBudget).
	TickBudget uint32
}

// DefaultConfig returns a single-shard engine with the standard 8-tick
// discipline.
func DefaultConfig() Config {
	return Config{
		Shards:          1,
		RingCapacity:    ring.DefaultSlotCapacity,
		MaxParkAttempts: DefaultMaxParkAttempts,
		TickBudget:      fiber.DefaultTickBudget,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Shards < 1 || c.Shards > MaxShards {
		return fmt.Errorf("shard count %d out of range 1..%d", c.Shards, MaxShards)
	}
	if c.RingCapacity < 0 {
		return fmt.Errorf("negative ring capacity %d", c.RingCapacity)
	}
	if c.MaxParkAttempts < 0 {
		return fmt.Errorf("negative park attempt limit %d", c.MaxParkAttempts)
	}
	return nil
}
