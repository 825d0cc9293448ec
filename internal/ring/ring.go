// Package ring implements the per-tick-slot circular transports between
// admission and execution.
//
// A ring has 8 independent slots, one per tick. Each slot is a small
// fixed-capacity FIFO. The correctness rule the whole pipeline leans on is
// tick isolation: an entry written into slot t during cycle n is visible to
// dispatch only at tick t of cycle n. Entries are stamped with their
// (cycle, tick) at enqueue time and the stamp is checked at dequeue; stale
// entries left over from an unread prior cycle are cleared before the slot
// is reused, never redelivered.
//
// Enqueue on a full slot returns ErrRingFull immediately. Nothing in this
// package ever blocks - backpressure is the caller's routing decision
// (park), not a wait.
package ring

import (
	"errors"
	"fmt"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/receipt"
)

// NumTicks is the number of slots per ring: one per tick of the beat.
const NumTicks = 8

// DefaultSlotCapacity bounds per-slot memory. Small by design: the rings
// are transports, not buffers of record.
const DefaultSlotCapacity = 8

// ErrRingFull is the backpressure signal returned by Enqueue on a full
// slot. It is not an error condition; the caller parks and retries at the
// same tick offset next cycle.
var ErrRingFull = errors.New("ring slot full")

// DeltaEntry carries one admitted batch toward execution.
type DeltaEntry struct {
	Token string            // Admission token (UUIDv7 in production)
	Batch *fact.Batch       // Shared SoA columns
	Run   fact.Run          // The sub-range this entry covers
	Instr fiber.Instruction // Prepared instruction for dispatch
}

// AssertionEntry carries one produced result toward commit.
type AssertionEntry struct {
	Token   string
	Receipt receipt.Receipt
	Output  *fact.Batch // Produced triples; nil for non-producing operations
}

// Delta is the inbound ring (admission -> dispatch).
type Delta = Ring[DeltaEntry]

// Assertion is the outbound ring (dispatch -> commit).
type Assertion = Ring[AssertionEntry]

// NewDelta creates a delta ring with the given per-slot capacity (0 selects
// DefaultSlotCapacity).
func NewDelta(capacity int) *Delta {
	return newRing[DeltaEntry](capacity)
}

// NewAssertion creates an assertion ring with the given per-slot capacity
// (0 selects DefaultSlotCapacity).
func NewAssertion(capacity int) *Assertion {
	return newRing[AssertionEntry](capacity)
}

type stamped[E any] struct {
	cycle uint64
	value E
}

// Ring is an 8-slot, per-tick transport. A ring is owned by exactly one
// scheduler shard and is not safe for concurrent use; cross-shard sharing
// is prohibited by the concurrency model.
type Ring[E any] struct {
	capacity int
	slots    [NumTicks][]stamped[E]
}

func newRing[E any](capacity int) *Ring[E] {
	if capacity <= 0 {
		capacity = DefaultSlotCapacity
	}
	return &Ring[E]{capacity: capacity}
}

// Enqueue places an entry into the slot for tick, stamped with cycle.
// Returns ErrRingFull when the slot is at capacity.
func (r *Ring[E]) Enqueue(cycle, tick uint64, e E) error {
	mustValidTick(tick)
	slot := r.slots[tick]
	if len(slot) >= r.capacity {
		return ErrRingFull
	}
	r.slots[tick] = append(slot, stamped[E]{cycle: cycle, value: e})
	return nil
}

// Dequeue removes and returns the oldest entry in the slot for tick that is
// stamped with the given cycle. Entries stamped with an earlier cycle were
// never read in their own cycle; they are dropped here (clear-before-reuse)
// rather than delivered late, preserving tick isolation across wrap-around.
func (r *Ring[E]) Dequeue(cycle, tick uint64) (E, bool) {
	mustValidTick(tick)
	r.dropStale(cycle, tick)

	slot := r.slots[tick]
	if len(slot) == 0 {
		var zero E
		return zero, false
	}
	head := slot[0]
	if head.cycle != cycle {
		// Stamped for a future occurrence of this tick; not visible yet.
		var zero E
		return zero, false
	}
	slot[0] = stamped[E]{} // release references for GC
	r.slots[tick] = slot[1:]
	if len(r.slots[tick]) == 0 {
		r.slots[tick] = nil
	}
	return head.value, true
}

// DrainCycle removes and returns every entry in the slot for tick stamped
// with the given cycle, in FIFO order. Used at the pulse boundary.
func (r *Ring[E]) DrainCycle(cycle, tick uint64) []E {
	mustValidTick(tick)
	r.dropStale(cycle, tick)

	var out []E
	remaining := r.slots[tick][:0]
	for _, e := range r.slots[tick] {
		if e.cycle == cycle {
			out = append(out, e.value)
		} else {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		r.slots[tick] = nil
	} else {
		r.slots[tick] = remaining
	}
	return out
}

// Len returns the number of entries currently held in the slot for tick,
// including entries stamped for future cycles.
func (r *Ring[E]) Len(tick uint64) int {
	mustValidTick(tick)
	return len(r.slots[tick])
}

// Capacity returns the per-slot capacity.
func (r *Ring[E]) Capacity() int {
	return r.capacity
}

// dropStale clears entries stamped before cycle. A stale entry means the
// scheduler skipped a dequeue it owed a prior cycle; that is a bug upstream,
// but the ring fails safe by never redelivering across the boundary.
func (r *Ring[E]) dropStale(cycle, tick uint64) {
	slot := r.slots[tick]
	i := 0
	for i < len(slot) && slot[i].cycle < cycle {
		slot[i] = stamped[E]{}
		i++
	}
	if i > 0 {
		r.slots[tick] = slot[i:]
	}
}

func mustValidTick(tick uint64) {
	if tick >= NumTicks {
		panic(fmt.Sprintf("ring: tick %d out of range", tick))
	}
}
