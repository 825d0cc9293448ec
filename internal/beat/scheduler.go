package beat

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/veritick/veritick/internal/cold"
	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/guard"
	"github.com/veritick/veritick/internal/receipt"
	"github.com/veritick/veritick/internal/ring"
	"github.com/veritick/veritick/internal/telemetry"
)

// Scheduler is one shard's Admit -> Dispatch -> Commit state machine.
//
// Ownership model: the scheduler exclusively owns its delta and assertion
// rings and every batch inside them. The executor borrows ring slot
// contents for one tick's dispatch and returns results through the
// assertion ring, never retaining references across tick boundaries.
//
// Thread-safety: Submit may be called from any goroutine; everything else
// runs on the cluster's single driver goroutine.
type Scheduler struct {
	shard  int
	gcfg   guard.Config
	exec   *fiber.Executor
	delta  *ring.Delta
	assert *ring.Assertion
	parks  *ParkManager

	tokens  TokenGenerator
	cold    cold.Path
	emitter telemetry.Emitter
	metrics *telemetry.Metrics
	logger  *slog.Logger

	// inbox holds submitted batches that have not been assigned a tick
	// slot yet. pending holds batches that met a full ring slot and wait
	// for the same tick offset next cycle.
	mu      sync.Mutex
	inbox   []ring.DeltaEntry
	pending [ring.NumTicks][]ring.DeltaEntry
}

// newScheduler wires one shard. Collaborators are always non-nil; the
// cluster substitutes no-op implementations where the caller provided
// none.
func newScheduler(
	shard int,
	cfg Config,
	gcfg guard.Config,
	tokens TokenGenerator,
	coldPath cold.Path,
	emitter telemetry.Emitter,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		shard:   shard,
		gcfg:    gcfg,
		exec:    fiber.NewExecutor(cfg.TickBudget),
		delta:   ring.NewDelta(cfg.RingCapacity),
		assert:  ring.NewAssertion(cfg.RingCapacity),
		parks:   NewParkManager(cfg.MaxParkAttempts),
		tokens:  tokens,
		cold:    coldPath,
		emitter: emitter,
		metrics: metrics,
		logger:  logger,
	}
}

// Shard returns this scheduler's shard index.
func (s *Scheduler) Shard() int {
	return s.shard
}

// Submit validates a batch against the admission guard and stages it for
// the next Admit phase. Guard violations are synchronous and terminal: the
// batch never enters a ring. On success the returned token identifies the
// admission in telemetry and escalation records.
func (s *Scheduler) Submit(batch *fact.Batch, run fact.Run, instr fiber.Instruction) (string, error) {
	if err := s.gcfg.Validate(batch, run, instr.Op); err != nil {
		return "", err
	}

	token := s.tokens.Generate()
	entry := ring.DeltaEntry{Token: token, Batch: batch, Run: run, Instr: instr}

	s.mu.Lock()
	s.inbox = append(s.inbox, entry)
	s.mu.Unlock()
	return token, nil
}

// admit runs the Admit phase for one beat: retry batches waiting at this
// tick offset, then place newly submitted batches into the current tick's
// slot. A full slot is backpressure, not an error - the batch stays
// pending and is retried at the same tick offset next cycle.
func (s *Scheduler) admit(pos Position) {
	s.emitter.Transition(telemetry.Event{
		Stage: telemetry.StageAdmit, Cycle: pos.Cycle, Tick: pos.Tick, Shard: s.shard,
	})

	var waiting []ring.DeltaEntry
	for _, e := range s.pending[pos.Tick] {
		if err := s.delta.Enqueue(pos.Cycle, pos.Tick, e); err != nil {
			s.metrics.RingFullTotal.Inc()
			waiting = append(waiting, e)
		}
	}
	s.pending[pos.Tick] = waiting

	s.mu.Lock()
	inbox := s.inbox
	s.inbox = nil
	s.mu.Unlock()

	for _, e := range inbox {
		if err := s.delta.Enqueue(pos.Cycle, pos.Tick, e); err != nil {
			s.metrics.RingFullTotal.Inc()
			s.pending[pos.Tick] = append(s.pending[pos.Tick], e)
		}
	}

	s.metrics.PendingAdmits.Set(float64(s.pendingCount()))
}

// dispatch runs the Dispatch phase for one beat: drain the current tick's
// delta slot, execute each entry, and route results. Parks and executor
// errors are handled locally; nothing here ever stalls the loop.
func (s *Scheduler) dispatch(ctx context.Context, pos Position) {
	s.emitter.Transition(telemetry.Event{
		Stage: telemetry.StageDispatch, Cycle: pos.Cycle, Tick: pos.Tick, Shard: s.shard,
	})

	for {
		entry, ok := s.delta.Dequeue(pos.Cycle, pos.Tick)
		if !ok {
			return
		}
		s.dispatchOne(ctx, pos, entry)
	}
}

func (s *Scheduler) dispatchOne(ctx context.Context, pos Position, entry ring.DeltaEntry) {
	fctx, err := fiber.NewContext(entry.Batch, entry.Run)
	if err != nil {
		s.drop(entry, err)
		return
	}

	rcpt, err := s.exec.Execute(fctx, entry.Instr)
	switch {
	case err == nil:
		out := ring.AssertionEntry{Token: entry.Token, Receipt: rcpt, Output: entry.Instr.Out}
		if err := s.assert.Enqueue(pos.Cycle, pos.Tick, out); err != nil {
			// No room to assert the result this cycle; treat like a park so
			// the batch re-runs rather than losing its receipt.
			s.metrics.RingFullTotal.Inc()
			s.park(ctx, pos, entry)
			return
		}
		s.metrics.ReceiptsTotal.Inc()
		s.emitter.Receipt(telemetry.Event{
			Stage: telemetry.StageDispatch, Cycle: pos.Cycle, Tick: pos.Tick,
			Shard: s.shard, Op: entry.Instr.Op.String(), ResultHash: rcpt.ResultHash,
		})

	case errors.Is(err, fiber.ErrOverBudget):
		s.emitter.Receipt(telemetry.Event{
			Stage: telemetry.StageDispatch, Cycle: pos.Cycle, Tick: pos.Tick,
			Shard: s.shard, Op: entry.Instr.Op.String(), Parked: true,
		})
		s.park(ctx, pos, entry)

	default:
		s.drop(entry, err)
	}
}

// park advances the entry's bounded retry state machine: requeue for the
// same tick next cycle, or demote to the cold path once the attempt limit
// is reached.
func (s *Scheduler) park(ctx context.Context, pos Position, entry ring.DeltaEntry) {
	s.metrics.ParksTotal.Inc()

	first, attempts, demote := s.parks.Park(entry, pos)
	if !demote {
		s.pending[pos.Tick] = append(s.pending[pos.Tick], entry)
		return
	}

	s.metrics.DemotionsTotal.Inc()
	parked := cold.Parked{
		Token:    entry.Token,
		Batch:    entry.Batch.Clone(),
		Run:      entry.Run,
		Instr:    entry.Instr,
		Shard:    s.shard,
		Cycle:    first.Cycle,
		Tick:     first.Tick,
		Attempts: attempts,
	}
	if err := s.cold.Escalate(ctx, parked); err != nil {
		s.logger.Error("cold path escalation failed",
			"token", entry.Token, "shard", s.shard, "error", err)
	}
}

// drop discards a batch after an executor error. Fatal for the batch,
// invisible to the rest of the cycle.
func (s *Scheduler) drop(entry ring.DeltaEntry, err error) {
	s.metrics.DroppedTotal.Inc()
	s.logger.Error("batch dropped",
		"token", entry.Token, "shard", s.shard, "op", entry.Instr.Op.String(), "error", err)
}

// drainCycle collects the cycle's per-tick receipts from the assertion
// ring in tick order 0..7. Called exactly once per cycle at the pulse.
func (s *Scheduler) drainCycle(cycle uint64) ([ring.NumTicks]receipt.Receipt, []ring.AssertionEntry) {
	var ticks [ring.NumTicks]receipt.Receipt
	var drained []ring.AssertionEntry
	for tick := uint64(0); tick < ring.NumTicks; tick++ {
		entries := s.assert.DrainCycle(cycle, tick)
		for _, e := range entries {
			ticks[tick] = receipt.Merge(ticks[tick], e.Receipt)
		}
		drained = append(drained, entries...)
	}
	return ticks, drained
}

func (s *Scheduler) pendingCount() int {
	n := 0
	for t := range s.pending {
		n += len(s.pending[t])
	}
	s.mu.Lock()
	n += len(s.inbox)
	s.mu.Unlock()
	return n
}
