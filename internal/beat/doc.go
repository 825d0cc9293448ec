// Package beat implements the epoch scheduler: the 8-tick beat clock, the
// per-shard Admit -> Dispatch -> Commit state machine, and the multi-shard
// cluster that merges receipts at the pulse boundary.
//
// ARCHITECTURE:
//
// Single-writer tick loop:
// Each shard's scheduler owns its SoA batches and both rings exclusively.
// One tick of work is a single, non-preemptible unit; there is no
// cooperative suspension inside a tick, and nothing on the hot path ever
// blocks. The only cross-shard coordination is the deterministic receipt
// merge at commit time - shards never share mutable state.
//
// Beat discipline:
// The clock is a monotonic beat counter; tick = beat & 7, cycle = beat >> 3.
// Ticks never skip or repeat within a cycle. The pulse fires after tick 7,
// draining all 8 assertion slots in the fixed total order (shard index,
// then tick index - never arrival time) so every run of the engine commits
// byte-identical chains for the same inputs.
//
// Escalation:
// Work that cannot fit the tick budget is parked, tracked with a bounded
// attempt count, and demoted to the cold path once the limit is reached.
// Forward progress at 8 ticks per cycle is never held up by one slow batch.
//
// Determinism is the point. Admission order, dispatch order, merge order,
// and span identifiers are all fixed functions of the input, so replaying
// a workload reproduces the chain exactly.
package beat
