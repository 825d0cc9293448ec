// Package fact defines the columnar (SoA) fact layout shared by the whole
// engine.
//
// A Batch holds subject, predicate, and object identifiers in three parallel
// uint64 columns. Every downstream component - the tick rings, the fiber
// executor, the cold path - reads and writes this one layout, so a batch can
// move through the pipeline without re-encoding.
//
// A Run names a contiguous, same-predicate sub-range of a batch. Runs are the
// unit the executor operates on; the admission guard caps their length at 8
// so one run always fits a single tick's worth of lanes.
//
// Identifier scheme:
//   - All identifiers are FNV-1a 64 hashes with domain separation
//     (domain string + NUL + data), stable across restarts and replays.
//   - Object identifiers reserve the top byte for a datatype tag (IRI,
//     string, integer, boolean) so datatype validation is a mask-and-compare,
//     never a string operation.
package fact
