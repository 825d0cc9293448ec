package beat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veritick/veritick/internal/cold"
	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/guard"
	"github.com/veritick/veritick/internal/lockchain"
	"github.com/veritick/veritick/internal/receipt"
	"github.com/veritick/veritick/internal/ring"
	"github.com/veritick/veritick/internal/store"
	"github.com/veritick/veritick/internal/telemetry"
)

// Cluster drives one engine: up to 8 shard schedulers advanced in
// lockstep by a single beat clock, with receipts merged into one chain at
// every pulse.
//
// Shards operate on disjoint data and never share state; the only
// reconciliation point is the commit, which folds shard cycle-receipts in
// the fixed total order (shard index, then tick index).
type Cluster struct {
	cfg    Config
	clock  *Clock
	shards []*Scheduler
	chain  *lockchain.Chain

	st      *store.Store
	emitter telemetry.Emitter
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Option configures a Cluster.
type Option func(*options)

type options struct {
	gcfg    guard.Config
	tokens  TokenGenerator
	cold    cold.Path
	emitter telemetry.Emitter
	metrics *telemetry.Metrics
	logger  *slog.Logger
	st      *store.Store
}

// WithGuard overrides the admission policy.
func WithGuard(g guard.Config) Option {
	return func(o *options) { o.gcfg = g }
}

// WithTokens overrides the admission token generator. Tests use
// NewSeqGenerator for reproducible tokens.
func WithTokens(g TokenGenerator) Option {
	return func(o *options) { o.tokens = g }
}

// WithColdPath sets the escalation collaborator for demoted batches.
func WithColdPath(p cold.Path) Option {
	return func(o *options) { o.cold = p }
}

// WithEmitter sets the telemetry emitter.
func WithEmitter(e telemetry.Emitter) Option {
	return func(o *options) { o.emitter = e }
}

// WithMetrics sets the Prometheus instruments.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore attaches a durable provenance log. The cluster resumes the
// chain from the store's latest entry and appends every committed cycle.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.st = s }
}

// NewCluster builds an engine from the configuration. When a store is
// attached, the clock and chain resume after the last persisted cycle.
func NewCluster(cfg Config, opts ...Option) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RingCapacity == 0 {
		cfg.RingCapacity = ring.DefaultSlotCapacity
	}
	if cfg.TickBudget == 0 {
		cfg.TickBudget = fiber.DefaultTickBudget
	}
	if cfg.MaxParkAttempts == 0 {
		cfg.MaxParkAttempts = DefaultMaxParkAttempts
	}

	o := options{
		gcfg:    guard.DefaultConfig(),
		tokens:  UUIDv7Generator{},
		cold:    cold.NewMemory(),
		emitter: telemetry.Nop{},
		metrics: telemetry.NewMetrics(nil),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	clock := NewClock()
	chain := lockchain.NewChain()
	if o.st != nil {
		head, lastCycle, err := o.st.LatestEntry(context.Background())
		switch {
		case err == nil:
			clock = NewClockAtCycle(lastCycle + 1)
			chain = lockchain.Resume(head.EntryHash)
		case errors.Is(err, store.ErrEntryNotFound):
			// Fresh log; start at genesis.
		default:
			return nil, fmt.Errorf("resume chain: %w", err)
		}
	}

	c := &Cluster{
		cfg:     cfg,
		clock:   clock,
		chain:   chain,
		st:      o.st,
		emitter: o.emitter,
		metrics: o.metrics,
		logger:  o.logger,
	}
	for i := 0; i < cfg.Shards; i++ {
		c.shards = append(c.shards, newScheduler(
			i, cfg, o.gcfg, o.tokens, o.cold, o.emitter, o.metrics, o.logger,
		))
	}
	return c, nil
}

// Shard returns the scheduler for direct submission to one shard.
func (c *Cluster) Shard(i int) *Scheduler {
	return c.shards[i]
}

// Shards returns the shard count.
func (c *Cluster) Shards() int {
	return len(c.shards)
}

// Submit routes a batch to a shard. See Scheduler.Submit for semantics.
func (c *Cluster) Submit(shard int, batch *fact.Batch, run fact.Run, instr fiber.Instruction) (string, error) {
	if shard < 0 || shard >= len(c.shards) {
		return "", fmt.Errorf("shard %d out of range 0..%d", shard, len(c.shards)-1)
	}
	return c.shards[shard].Submit(batch, run, instr)
}

// Step advances the engine by one beat: Admit then Dispatch on every
// shard at the current position, and Commit when the beat ends the cycle.
// Returns the position executed and whether it pulsed.
//
// ErrClockOverflow is fatal; the caller must stop the engine.
func (c *Cluster) Step(ctx context.Context) (Position, bool, error) {
	pos, err := c.clock.Next()
	if err != nil {
		return Position{}, false, err
	}

	for _, s := range c.shards {
		s.admit(pos)
		s.dispatch(ctx, pos)
	}

	if !pos.Pulse() {
		return pos, false, nil
	}
	if err := c.commit(ctx, pos.Cycle); err != nil {
		return pos, true, err
	}
	return pos, true, nil
}

// RunCycles drives the engine through n complete cycles, honoring context
// cancellation between beats (never inside one - a tick is atomic).
func (c *Cluster) RunCycles(ctx context.Context, n int) error {
	for i := 0; i < n*ring.NumTicks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, _, err := c.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// commit is the pulse: drain every shard's assertion ring for the
// completed cycle, merge receipts in the total order (shard index, then
// tick index), append the cycle entry to the chain, and persist it.
func (c *Cluster) commit(ctx context.Context, cycle uint64) error {
	var shardReceipts []receipt.Receipt
	for _, s := range c.shards {
		c.emitter.Transition(telemetry.Event{
			Stage: telemetry.StageCommit, Cycle: cycle,
			Tick: ring.NumTicks - 1, Shard: s.shard,
		})
		ticks, _ := s.drainCycle(cycle)
		shardReceipts = append(shardReceipts, receipt.MergeCycle(ticks))
	}

	cycleReceipt := receipt.MergeAll(shardReceipts...)
	entry := c.chain.Append(cycleReceipt)
	c.metrics.CyclesTotal.Inc()
	c.emitter.Receipt(telemetry.Event{
		Stage: telemetry.StageCommit, Cycle: cycle, Tick: ring.NumTicks - 1,
		Shard: -1, ResultHash: cycleReceipt.ResultHash,
	})

	if c.st != nil {
		if err := c.st.AppendEntry(ctx, cycle, entry); err != nil {
			return fmt.Errorf("persist cycle %d: %w", cycle, err)
		}
	}
	return nil
}

// Chain returns the in-memory chain of committed cycles.
func (c *Cluster) Chain() *lockchain.Chain {
	return c.chain
}

// Clock returns the engine clock.
func (c *Cluster) Clock() *Clock {
	return c.clock
}
