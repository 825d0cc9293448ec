package beat

import (
	"github.com/veritick/veritick/internal/ring"
)

// DefaultMaxParkAttempts demotes a batch to the cold path on its first
// park. Budget classification is static, so a batch that parks once will
// park every time; retrying on the hot path only makes sense for transient
// causes like assertion-ring backpressure, which deployments can opt into
// by raising the limit.
const DefaultMaxParkAttempts = 1

// parkRecord tracks one batch's parking history.
type parkRecord struct {
	attempts int
	first    Position // Where the batch was first parked
}

// ParkManager is the bounded retry state machine for parked batches.
// Each parked batch carries an attempt count and the position it was first
// parked at; once attempts reach the limit the batch is demoted
// permanently and the manager forgets it. This bounds parking growth: no
// batch can oscillate between park and retry forever.
//
// Owned by one scheduler shard; not safe for concurrent use and does not
// need to be.
type ParkManager struct {
	maxAttempts int
	records     map[string]parkRecord // keyed by admission token
}

// NewParkManager creates a park manager with the given attempt limit
// (0 selects DefaultMaxParkAttempts).
func NewParkManager(maxAttempts int) *ParkManager {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxParkAttempts
	}
	return &ParkManager{
		maxAttempts: maxAttempts,
		records:     make(map[string]parkRecord),
	}
}

// Park records one parking of the entry at pos. It returns the batch's
// first-parked position and attempt count, and demote=true when the
// attempt limit is reached - at which point the record is dropped and the
// caller must hand the batch to the cold path.
func (m *ParkManager) Park(e ring.DeltaEntry, pos Position) (first Position, attempts int, demote bool) {
	rec, ok := m.records[e.Token]
	if !ok {
		rec = parkRecord{first: pos}
	}
	rec.attempts++

	if rec.attempts >= m.maxAttempts {
		delete(m.records, e.Token)
		return rec.first, rec.attempts, true
	}
	m.records[e.Token] = rec
	return rec.first, rec.attempts, false
}

// Tracked returns the number of batches currently in the park state.
func (m *ParkManager) Tracked() int {
	return len(m.records)
}
