// Package store provides durable storage for the provenance log.
//
// The store persists two things:
//
//   - Chain entries, keyed by cycle. The cycle index is the PRIMARY KEY, so
//     random access by cycle is a single index lookup - the on-disk analogue
//     of the fixed-size wire layout.
//   - Escalation records: batches demoted to the cold path, kept so the
//     cold executor can drain them out-of-band.
//
// The engine writes entries at each pulse and reads back only the latest
// entry hash to resume the chain. Verification reads the full chain in
// cycle order.
//
// SQLite with WAL mode; a single writer connection avoids SQLITE_BUSY under
// the engine's single-writer discipline.
package store
