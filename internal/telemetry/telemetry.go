// Package telemetry emits the span and metric events the engine owes its
// external consumers.
//
// The engine only emits the documented fields - cycle, tick, shard,
// operation kind, park flag, result hash. Schema validation is the
// consumer's registry's job, not ours.
//
// The hot loop never formats strings or touches a logger directly; it calls
// the Emitter interface and the chosen implementation decides the cost.
package telemetry

import (
	"log/slog"
	"sync"
)

// Stage names a scheduler state-machine transition.
type Stage string

const (
	StageAdmit    Stage = "admit"
	StageDispatch Stage = "dispatch"
	StageCommit   Stage = "commit"
)

// Event carries the documented telemetry fields for one transition or
// receipt.
type Event struct {
	Stage      Stage
	Cycle      uint64
	Tick       uint64
	Shard      int
	Op         string // Operation mnemonic; empty for pure transitions
	Parked     bool
	ResultHash uint64
}

// Emitter is the consumer-facing hook. Implementations must be cheap; they
// run inside the tick loop.
type Emitter interface {
	// Transition is emitted on every Admit/Dispatch/Commit state change.
	Transition(e Event)
	// Receipt is emitted once per produced receipt.
	Receipt(e Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Transition(Event) {}
func (Nop) Receipt(Event)    {}

// Slog emits events as structured log records.
type Slog struct {
	Logger *slog.Logger
}

// NewSlog creates a slog-backed emitter. A nil logger selects slog.Default.
func NewSlog(l *slog.Logger) *Slog {
	if l == nil {
		l = slog.Default()
	}
	return &Slog{Logger: l}
}

func (s *Slog) Transition(e Event) {
	s.Logger.Debug("beat transition",
		"stage", string(e.Stage),
		"cycle", e.Cycle,
		"tick", e.Tick,
		"shard", e.Shard,
	)
}

func (s *Slog) Receipt(e Event) {
	s.Logger.Info("receipt",
		"cycle", e.Cycle,
		"tick", e.Tick,
		"shard", e.Shard,
		"op", e.Op,
		"parked", e.Parked,
		"result_hash", e.ResultHash,
	)
}

// Collector records every event in order. Test collaborator.
type Collector struct {
	mu          sync.Mutex
	transitions []Event
	receipts    []Event
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Transition(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitions = append(c.transitions, e)
}

func (c *Collector) Receipt(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts = append(c.receipts, e)
}

// Transitions returns a copy of the recorded transition events.
func (c *Collector) Transitions() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.transitions))
	copy(out, c.transitions)
	return out
}

// Receipts returns a copy of the recorded receipt events.
func (c *Collector) Receipts() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.receipts))
	copy(out, c.receipts)
	return out
}
