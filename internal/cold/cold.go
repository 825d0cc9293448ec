// Package cold models the escalation side of the engine: the slow,
// unbounded-latency path that receives work the hot loop cannot fit in its
// tick budget.
//
// The hot path only depends on the Path interface. The implementations here
// are reference collaborators: Memory for tests, Local for single-process
// deployments that still want parked work executed, and StoreSink for
// durable handoff. The real cold executor is an external system; it
// produces receipts through its own mechanism and re-enters the provenance
// log independently of the hot chain.
package cold

import (
	"context"
	"sync"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/receipt"
	"github.com/veritick/veritick/internal/store"
)

// Parked is the handoff record for one escalated batch: the work itself
// plus the marker recording where it was parked.
type Parked struct {
	Token    string
	Batch    *fact.Batch
	Run      fact.Run
	Instr    fiber.Instruction
	Shard    int
	Cycle    uint64 // Cycle the batch was first parked at
	Tick     uint64 // Tick the batch was first parked at
	Attempts int    // Hot-path attempts before demotion
}

// Path is the escalation contract the scheduler calls when a batch is
// demoted. Implementations must not block the caller for long; the tick
// loop is waiting.
type Path interface {
	Escalate(ctx context.Context, p Parked) error
}

// Memory collects escalations in memory. Test collaborator.
type Memory struct {
	mu     sync.Mutex
	parked []Parked
}

// NewMemory creates an empty in-memory path.
func NewMemory() *Memory {
	return &Memory{}
}

// Escalate records the parked batch.
func (m *Memory) Escalate(_ context.Context, p Parked) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parked = append(m.parked, p)
	return nil
}

// Drain returns and clears everything escalated so far.
func (m *Memory) Drain() []Parked {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.parked
	m.parked = nil
	return out
}

// Len returns the number of pending escalations.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.parked)
}

// Local executes escalated work immediately with an unbounded executor.
// It exists so single-process deployments still complete over-budget
// operations; the receipts it produces are collected for the caller, not
// merged into the hot chain.
type Local struct {
	mu       sync.Mutex
	exec     *fiber.Executor
	receipts []receipt.Receipt
}

// NewLocal creates a local cold executor.
func NewLocal() *Local {
	return &Local{exec: fiber.NewExecutor(fiber.DefaultTickBudget)}
}

// Escalate executes the parked instruction without a budget and records
// the resulting receipt.
func (l *Local) Escalate(_ context.Context, p Parked) error {
	fctx, err := fiber.NewContext(p.Batch, p.Run)
	if err != nil {
		return err
	}
	r, err := l.exec.ExecuteUnbounded(fctx, p.Instr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.receipts = append(l.receipts, r)
	l.mu.Unlock()
	return nil
}

// Receipts returns the receipts produced so far, in escalation order.
func (l *Local) Receipts() []receipt.Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]receipt.Receipt, len(l.receipts))
	copy(out, l.receipts)
	return out
}

// StoreSink persists escalations as durable records for an out-of-band
// cold executor to drain.
type StoreSink struct {
	store *store.Store
}

// NewStoreSink creates a store-backed escalation sink.
func NewStoreSink(s *store.Store) *StoreSink {
	return &StoreSink{store: s}
}

// Escalate writes the parked batch as an escalation record.
func (s *StoreSink) Escalate(ctx context.Context, p Parked) error {
	return s.store.WriteEscalation(ctx, store.Escalation{
		Token:      p.Token,
		Cycle:      p.Cycle,
		Tick:       p.Tick,
		Shard:      p.Shard,
		Attempts:   p.Attempts,
		Op:         p.Instr.Op.String(),
		Subjects:   p.Batch.S,
		Predicates: p.Batch.P,
		Objects:    p.Batch.O,
	})
}
