package fact

import "fmt"

// Batch is a structure-of-arrays triple batch. The three columns are always
// equal length; use Append to keep them in lockstep.
//
// A Batch is owned by exactly one scheduler shard at a time. The executor
// borrows it read-only for the duration of one tick and must not retain a
// reference across tick boundaries.
type Batch struct {
	S []uint64
	P []uint64
	O []uint64
}

// NewBatch creates an empty batch with the given capacity hint.
func NewBatch(capacity int) *Batch {
	return &Batch{
		S: make([]uint64, 0, capacity),
		P: make([]uint64, 0, capacity),
		O: make([]uint64, 0, capacity),
	}
}

// Append adds one triple to the batch.
func (b *Batch) Append(s, p, o uint64) {
	b.S = append(b.S, s)
	b.P = append(b.P, p)
	b.O = append(b.O, o)
}

// Len returns the number of triples in the batch.
func (b *Batch) Len() int {
	return len(b.S)
}

// Clone returns a deep copy of the batch. Used when a batch crosses an
// ownership boundary (e.g. handoff to the cold path).
func (b *Batch) Clone() *Batch {
	c := NewBatch(b.Len())
	c.S = append(c.S, b.S...)
	c.P = append(c.P, b.P...)
	c.O = append(c.O, b.O...)
	return c
}

// Check verifies the three columns are equal length.
func (b *Batch) Check() error {
	if len(b.S) != len(b.P) || len(b.P) != len(b.O) {
		return fmt.Errorf("ragged batch: s=%d p=%d o=%d", len(b.S), len(b.P), len(b.O))
	}
	return nil
}

// Run identifies a contiguous same-predicate sub-range of a batch.
// Operations act on runs, never on whole batches.
type Run struct {
	Pred uint64 // Predicate identifier shared by every lane in the run
	Off  uint64 // Start index into the batch columns
	Len  uint64 // Number of lanes; admission caps this at 8
}

// End returns the exclusive end index of the run.
func (r Run) End() uint64 {
	return r.Off + r.Len
}

// CheckBounds verifies the run fits inside a batch of the given length.
func (r Run) CheckBounds(batchLen int) error {
	if r.End() > uint64(batchLen) {
		return fmt.Errorf("run out of bounds: off=%d len=%d batch=%d", r.Off, r.Len, batchLen)
	}
	return nil
}
