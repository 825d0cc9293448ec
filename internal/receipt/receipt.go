// Package receipt defines the compact proof record attesting to one
// operation's outcome, and the associative merge that combines receipts
// across ticks and shards.
package receipt

import "fmt"

// Receipt attests to one successful dispatch. Receipts are immutable once
// produced.
//
// ResultHash equals the FNV-1a hash of the operation's projection over its
// input run. That equality is the audit invariant the lockchain ultimately
// certifies: anyone holding the input can recompute the projection and
// compare hashes.
type Receipt struct {
	Lanes      uint32 // Number of lanes the operation covered
	SpanID     uint64 // Deterministic span identifier for telemetry correlation
	ResultHash uint64 // hash(projection(input))
}

// Zero is the identity element of Merge.
var Zero = Receipt{}

// IsZero reports whether the receipt is the merge identity.
func (r Receipt) IsZero() bool {
	return r == Zero
}

// String renders the receipt for logs and CLI output.
func (r Receipt) String() string {
	return fmt.Sprintf("receipt{lanes=%d span=%016x hash=%016x}", r.Lanes, r.SpanID, r.ResultHash)
}

// Merge combines two receipts:
//
//	lanes: a + b
//	span:  a XOR b
//	hash:  a XOR b
//
// Merge is associative and commutative, so receipts from different shards
// and ticks can be folded in any grouping and still produce the same cycle
// receipt. The committed order is still fixed (shard index, then tick
// index) so that audit logs are byte-identical across runs.
func Merge(a, b Receipt) Receipt {
	return Receipt{
		Lanes:      a.Lanes + b.Lanes,
		SpanID:     a.SpanID ^ b.SpanID,
		ResultHash: a.ResultHash ^ b.ResultHash,
	}
}

// MergeCycle folds the 8 per-tick receipts of one cycle into a single cycle
// receipt. Empty tick slots contribute the Zero identity.
func MergeCycle(ticks [8]Receipt) Receipt {
	merged := Zero
	for _, r := range ticks {
		merged = Merge(merged, r)
	}
	return merged
}

// MergeAll folds an arbitrary receipt sequence. Used at the pulse boundary
// to combine per-shard cycle receipts.
func MergeAll(receipts ...Receipt) Receipt {
	merged := Zero
	for _, r := range receipts {
		merged = Merge(merged, r)
	}
	return merged
}
