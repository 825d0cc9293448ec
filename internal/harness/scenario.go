package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a set of batch submissions,
// a number of cycles to run, and assertions over the committed chain and
// the cold path.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// name for trace comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Shards is the engine shard count. Defaults to 1.
	Shards int `yaml:"shards,omitempty"`

	// Cycles is how many complete cycles the engine runs. Defaults to 1.
	Cycles int `yaml:"cycles,omitempty"`

	// TokenPrefix seeds the sequential token generator so admission
	// tokens are reproducible. Defaults to the scenario name.
	TokenPrefix string `yaml:"token_prefix,omitempty"`

	// Batches are the submissions, in order.
	Batches []BatchStep `yaml:"batches"`

	// Assertions validate the final chain, receipts, and escalations.
	Assertions []Assertion `yaml:"assertions"`
}

// BatchStep is one submission: a triple batch and the operation to run
// over it.
type BatchStep struct {
	Shard     int          `yaml:"shard,omitempty"`
	Operation string       `yaml:"operation"`
	Subject   string       `yaml:"subject,omitempty"`
	Predicate string       `yaml:"predicate,omitempty"`
	Object    string       `yaml:"object,omitempty"`
	K         uint64       `yaml:"k,omitempty"`
	Datatype  string       `yaml:"datatype,omitempty"`
	Triples   []TripleStep `yaml:"triples"`

	// Reject marks a submission expected to fail admission. The guard
	// error code is matched against RejectCode.
	Reject     bool   `yaml:"reject,omitempty"`
	RejectCode string `yaml:"reject_code,omitempty"`
}

// TripleStep is one raw fact.
type TripleStep struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
}

// Assertion validates one property of the finished run.
type Assertion struct {
	// Type selects the check:
	//   - "chain_length": chain has exactly Count entries
	//   - "chain_valid": the hash chain verifies end to end
	//   - "lanes_total": the final cycle receipt reports Count lanes
	//   - "escalations": the cold path received exactly Count batches
	//   - "escalated_op": some escalation carries operation Op
	Type string `yaml:"type"`

	Count int    `yaml:"count,omitempty"`
	Op    string `yaml:"op,omitempty"`
}

// Assertion type constants.
const (
	AssertChainLength = "chain_length"
	AssertChainValid  = "chain_valid"
	AssertLanesTotal  = "lanes_total"
	AssertEscalations = "escalations"
	AssertEscalatedOp = "escalated_op"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently passing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Batches) == 0 {
		return fmt.Errorf("batches list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Shards == 0 {
		s.Shards = 1
	}
	if s.Cycles == 0 {
		s.Cycles = 1
	}
	if s.TokenPrefix == "" {
		s.TokenPrefix = s.Name
	}

	for i, b := range s.Batches {
		if b.Operation == "" {
			return fmt.Errorf("batches[%d]: operation is required", i)
		}
		if len(b.Triples) == 0 {
			return fmt.Errorf("batches[%d]: triples list is required and must be non-empty", i)
		}
		if b.Shard < 0 || b.Shard >= s.Shards {
			return fmt.Errorf("batches[%d]: shard %d out of range 0..%d", i, b.Shard, s.Shards-1)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertChainLength, AssertLanesTotal, AssertEscalations:
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
		case AssertChainValid:
		case AssertEscalatedOp:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: op is required for escalated_op", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
