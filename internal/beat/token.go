package beat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces admission tokens for batch correlation.
// Implemented by UUIDv7Generator (production) and SeqGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 admission tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by admission time, which helps when correlating escalation
// records with telemetry spans.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SeqGenerator returns "<prefix>-1", "<prefix>-2", ... for deterministic
// test runs and golden trace comparison.
type SeqGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSeqGenerator creates a sequential token generator. An empty prefix
// defaults to "batch".
func NewSeqGenerator(prefix string) *SeqGenerator {
	if prefix == "" {
		prefix = "batch"
	}
	return &SeqGenerator{prefix: prefix}
}

// Generate returns the next sequential token.
func (g *SeqGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
