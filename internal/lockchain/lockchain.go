// Package lockchain implements the hash-chained audit trail of cycle
// receipts.
//
// Each committed cycle produces one Entry linking the cycle's merged
// receipt to the previous entry by hash. Entries are fixed-size with no
// variable-length fields, so a persisted chain supports O(1) random access
// by cycle index. The chain is append-only: no entry is ever mutated or
// removed, and verification fails closed on the first mismatch.
package lockchain

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/receipt"
)

// EntrySize is the fixed wire size of one chain entry:
// lanes u32, span u64, result hash u64, prior hash u64, entry hash u64.
const EntrySize = 4 + 8 + 8 + 8 + 8

// hashedSize is the prefix covered by the entry hash (everything except
// the entry hash itself).
const hashedSize = EntrySize - 8

// Entry is one link of the chain.
type Entry struct {
	Receipt   receipt.Receipt
	PriorHash uint64 // EntryHash of the previous entry; 0 for the genesis entry
	EntryHash uint64 // FNV-1a over the wire encoding of (Receipt, PriorHash)
}

// Append forms the next chain entry for a cycle receipt. It never mutates
// existing entries; chaining state is carried entirely by priorHash.
func Append(r receipt.Receipt, priorHash uint64) Entry {
	e := Entry{Receipt: r, PriorHash: priorHash}
	e.EntryHash = hashEntry(e)
	return e
}

// MarshalBinary encodes the entry into its fixed little-endian wire layout.
func (e Entry) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EntrySize)
	binary.LittleEndian.PutUint32(buf[0:4], e.Receipt.Lanes)
	binary.LittleEndian.PutUint64(buf[4:12], e.Receipt.SpanID)
	binary.LittleEndian.PutUint64(buf[12:20], e.Receipt.ResultHash)
	binary.LittleEndian.PutUint64(buf[20:28], e.PriorHash)
	binary.LittleEndian.PutUint64(buf[28:36], e.EntryHash)
	return buf, nil
}

// UnmarshalBinary decodes an entry from its wire layout. It does not verify
// the entry hash; use Verify on the full chain for that.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) != EntrySize {
		return fmt.Errorf("lockchain: entry is %d bytes, want %d", len(data), EntrySize)
	}
	e.Receipt.Lanes = binary.LittleEndian.Uint32(data[0:4])
	e.Receipt.SpanID = binary.LittleEndian.Uint64(data[4:12])
	e.Receipt.ResultHash = binary.LittleEndian.Uint64(data[12:20])
	e.PriorHash = binary.LittleEndian.Uint64(data[20:28])
	e.EntryHash = binary.LittleEndian.Uint64(data[28:36])
	return nil
}

// hashEntry computes the entry hash over the wire prefix.
func hashEntry(e Entry) uint64 {
	wire, _ := e.MarshalBinary()
	return fact.HashBytes(wire[:hashedSize])
}

// VerificationError reports the first broken link found while walking a
// chain. It indicates tampering or a bug; callers must treat it as fatal at
// the audit level.
type VerificationError struct {
	Index  int    // Position of the bad entry
	Reason string // "entry hash mismatch" or "prior hash mismatch"
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("chain verification failed at entry %d: %s", e.Index, e.Reason)
}

// IsVerificationError reports whether err is a chain verification failure.
func IsVerificationError(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}

// Verify walks the chain recomputing every entry hash and prior-hash link.
// Entries must be in append order. The walk fails closed: the first
// mismatch aborts verification.
func Verify(entries []Entry) error {
	prior := uint64(0)
	for i, e := range entries {
		if e.PriorHash != prior {
			return &VerificationError{Index: i, Reason: "prior hash mismatch"}
		}
		if hashEntry(e) != e.EntryHash {
			return &VerificationError{Index: i, Reason: "entry hash mismatch"}
		}
		prior = e.EntryHash
	}
	return nil
}

// Chain is an in-memory append-only chain. The scheduler keeps one per
// engine for the current process; durable history lives in the store.
type Chain struct {
	entries []Entry
	head    uint64 // resume link when the chain starts from durable history
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Resume creates a chain whose next entry will link to the given head
// hash. Used when the durable log already holds history.
func Resume(headHash uint64) *Chain {
	c := &Chain{}
	c.head = headHash
	return c
}

// Append forms the next entry from the cycle receipt and records it.
// Existing entries are never touched.
func (c *Chain) Append(r receipt.Receipt) Entry {
	e := Append(r, c.Head())
	c.entries = append(c.entries, e)
	return e
}

// Head returns the entry hash the next appended entry will link to.
func (c *Chain) Head() uint64 {
	if len(c.entries) == 0 {
		return c.head
	}
	return c.entries[len(c.entries)-1].EntryHash
}

// Entries returns the recorded entries in append order. The returned slice
// is a copy; the chain itself stays immutable from the outside.
func (c *Chain) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of recorded entries.
func (c *Chain) Len() int {
	return len(c.entries)
}
