package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the deterministic JSON shape of a finished scenario:
// the committed chain plus any escalations, in commit order. Hashes are
// rendered as fixed-width hex so diffs line up.
type TraceSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Cycles       int            `json:"cycles"`
	Chain        []ChainLink    `json:"chain"`
	Escalations  []EscalationAt `json:"escalations,omitempty"`
}

// ChainLink is one committed cycle in a snapshot.
type ChainLink struct {
	Cycle      int    `json:"cycle"`
	Lanes      uint32 `json:"lanes"`
	SpanID     string `json:"span_id"`
	ResultHash string `json:"result_hash"`
	PriorHash  string `json:"prior_hash"`
	EntryHash  string `json:"entry_hash"`
}

// EscalationAt is one cold-path handoff in a snapshot.
type EscalationAt struct {
	Token    string `json:"token"`
	Op       string `json:"op"`
	Shard    int    `json:"shard"`
	Cycle    uint64 `json:"cycle"`
	Tick     uint64 `json:"tick"`
	Attempts int    `json:"attempts"`
}

// Snapshot renders a result for golden comparison.
func Snapshot(scenario *Scenario, result *Result) TraceSnapshot {
	s := TraceSnapshot{
		ScenarioName: scenario.Name,
		Cycles:       scenario.Cycles,
		Chain:        []ChainLink{},
	}
	for i, e := range result.Chain {
		s.Chain = append(s.Chain, ChainLink{
			Cycle:      i,
			Lanes:      e.Receipt.Lanes,
			SpanID:     fmt.Sprintf("%016x", e.Receipt.SpanID),
			ResultHash: fmt.Sprintf("%016x", e.Receipt.ResultHash),
			PriorHash:  fmt.Sprintf("%016x", e.PriorHash),
			EntryHash:  fmt.Sprintf("%016x", e.EntryHash),
		})
	}
	for _, p := range result.Escalations {
		s.Escalations = append(s.Escalations, EscalationAt{
			Token:    p.Token,
			Op:       p.Instr.Op.String(),
			Shard:    p.Shard,
			Cycle:    p.Cycle,
			Tick:     p.Tick,
			Attempts: p.Attempts,
		})
	}
	return s
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against testdata/golden/{scenario.Name}.golden. Regenerate with
//
//	go test ./internal/harness -update
//
// Assertion failures inside the scenario fail the test before the golden
// comparison runs.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	data, err := json.MarshalIndent(Snapshot(scenario, result), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
