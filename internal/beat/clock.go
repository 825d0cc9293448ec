package beat

import (
	"errors"
	"sync/atomic"

	"github.com/veritick/veritick/internal/ring"
)

// ErrClockOverflow is fatal: the beat counter reached its ceiling. The
// scheduler stops and reports rather than wrapping, because a wrapped
// counter would silently violate the chain's cycle ordering.
var ErrClockOverflow = errors.New("beat counter overflow")

// maxBeat leaves headroom below the uint64 ceiling; at any realistic beat
// rate this is unreachable, but overflow is checked, not assumed away.
const maxBeat = uint64(1) << 62

// Position locates one beat inside the epoch hierarchy.
type Position struct {
	Cycle uint64 // Monotonic cycle counter
	Tick  uint64 // 0..7 within the cycle
}

// Pulse reports whether this beat ends its cycle: the commit boundary
// after tick 7.
func (p Position) Pulse() bool {
	return p.Tick == ring.NumTicks-1
}

// positionOf decomposes a beat counter value.
func positionOf(beat uint64) Position {
	return Position{Cycle: beat >> 3, Tick: beat & 7}
}

// Clock is the monotonic beat counter for one engine. All scheduling state
// derives from it; it is never a process-wide singleton, so tests can run
// many engines side by side.
//
// Thread-safety: atomic, though the engine's single-writer loop means one
// goroutine normally calls Next.
type Clock struct {
	beat atomic.Uint64
}

// NewClock creates a clock at beat 0 (cycle 0, tick 0).
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAtCycle creates a clock positioned at the start of the given
// cycle. Used to resume an engine against an existing provenance log.
func NewClockAtCycle(cycle uint64) *Clock {
	c := &Clock{}
	c.beat.Store(cycle << 3)
	return c
}

// Next returns the current position and advances the counter by one beat.
// Returns ErrClockOverflow, without advancing, at the counter ceiling.
func (c *Clock) Next() (Position, error) {
	beat := c.beat.Load()
	if beat >= maxBeat {
		return Position{}, ErrClockOverflow
	}
	c.beat.Store(beat + 1)
	return positionOf(beat), nil
}

// Current returns the position the next call to Next will report.
func (c *Clock) Current() Position {
	return positionOf(c.beat.Load())
}

// IsClockOverflow reports whether err is the fatal counter overflow.
func IsClockOverflow(err error) bool {
	return errors.Is(err, ErrClockOverflow)
}
