package fiber

import (
	"fmt"

	"github.com/veritick/veritick/internal/fact"
)

// Context exposes read-only access to one batch's SoA columns and the
// active run. The executor borrows the batch for a single tick's dispatch;
// the Context must not be retained across tick boundaries.
type Context struct {
	batch *fact.Batch
	run   fact.Run
}

// NewContext builds a dispatch context after bounds-checking the run
// against the batch. Validation happens once here, at ingress; the
// per-lane accessors trust it.
func NewContext(batch *fact.Batch, run fact.Run) (Context, error) {
	if batch == nil {
		return Context{}, fmt.Errorf("nil batch")
	}
	if err := batch.Check(); err != nil {
		return Context{}, err
	}
	if err := run.CheckBounds(batch.Len()); err != nil {
		return Context{}, err
	}
	return Context{batch: batch, run: run}, nil
}

// Run returns the active run descriptor.
func (c Context) Run() fact.Run {
	return c.run
}

// Lanes returns the number of lanes in the active run.
func (c Context) Lanes() uint32 {
	return uint32(c.run.Len)
}

// Lane returns the (s, p, o) triple at lane i of the run, 0 <= i < Lanes().
func (c Context) Lane(i uint64) (s, p, o uint64) {
	idx := c.run.Off + i
	return c.batch.S[idx], c.batch.P[idx], c.batch.O[idx]
}
