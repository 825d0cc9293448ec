// Package testutil provides deterministic builders for engine tests.
package testutil

import (
	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
)

// SequentialBatch builds a single-run batch of n triples sharing one
// predicate: subjects base+0..base+n-1, objects tagged integers 100+i.
// Deterministic so receipts and hashes are stable across runs.
func SequentialBatch(pred uint64, base uint64, n int) (*fact.Batch, fact.Run) {
	b := fact.NewBatch(n)
	for i := 0; i < n; i++ {
		b.Append(base+uint64(i), pred, fact.Tagged(fact.TagInt, 100+uint64(i)))
	}
	return b, fact.Run{Pred: pred, Off: 0, Len: uint64(n)}
}

// UniformBatch builds a single-run batch where every triple is the same
// (s, pred, o). Useful for membership and comparison operations where the
// lane count should equal the batch size.
func UniformBatch(s, pred, o uint64, n int) (*fact.Batch, fact.Run) {
	b := fact.NewBatch(n)
	for i := 0; i < n; i++ {
		b.Append(s, pred, o)
	}
	return b, fact.Run{Pred: pred, Off: 0, Len: uint64(n)}
}

// Ask builds an ASK_SP instruction for the given subject and predicate.
func Ask(s, p uint64) fiber.Instruction {
	return fiber.Instruction{Op: fiber.OpAskSP, S: s, P: p}
}

// Construct builds a CONSTRUCT_8 instruction deriving (s, p, o) triples
// into a fresh output batch sized for the run.
func Construct(s, p uint64) fiber.Instruction {
	return fiber.Instruction{Op: fiber.OpConstruct8, S: s, P: p, Out: fact.NewBatch(8)}
}
