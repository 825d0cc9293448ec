// Package fiber implements the operation dispatcher: the closed instruction
// set executed against SoA fact runs under the 8-tick budget.
//
// ARCHITECTURE:
//
// Dispatch is a pure function of (operation, context, instruction). There is
// no branching on history and no hidden state, which gives two properties
// the audit trail depends on:
//
//   - Idempotence: executing the same instruction twice over the same input
//     yields receipts with identical ResultHash.
//   - Provenance: ResultHash always equals HashWords(Projection(...)). The
//     executor computes the hash FROM the projection, so the invariant holds
//     by construction and auditors can recompute it independently.
//
// Budget enforcement is a static classification, not a measurement. Every
// operation has a fixed documented tick cost; the executor refuses to start
// an operation whose cost exceeds the budget and signals ErrOverBudget (the
// park signal) instead. No wall-clock timing happens inside the dispatcher -
// performance measurement is an out-of-band concern.
package fiber
