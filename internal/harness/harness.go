// Package harness provides a conformance framework for the beat engine.
//
// A scenario submits triple batches, drives the engine through a fixed
// number of cycles, and asserts over the committed receipt chain and the
// cold path. Deterministic token generation and the engine's fixed merge
// order make every run byte-reproducible, so chain traces can be compared
// against golden files.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/veritick/veritick/internal/beat"
	"github.com/veritick/veritick/internal/cold"
	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/guard"
	"github.com/veritick/veritick/internal/ingest"
	"github.com/veritick/veritick/internal/lockchain"
	"github.com/veritick/veritick/internal/receipt"
	"github.com/veritick/veritick/internal/telemetry"
)

// Result captures everything a scenario run produced.
type Result struct {
	// Passed is true when no assertion failed.
	Passed bool

	// Errors lists assertion failures and rejection mismatches.
	Errors []string

	// Chain holds the committed entries in cycle order.
	Chain []lockchain.Entry

	// Final is the last cycle's merged receipt, zero on an empty chain.
	Final receipt.Receipt

	// Escalations are the batches the cold path received.
	Escalations []cold.Parked

	// Receipts is the recorded per-receipt telemetry stream.
	Receipts []telemetry.Event

	// Tokens maps batch index to admission token for admitted batches.
	Tokens map[int]string
}

// AddError records a failure.
func (r *Result) AddError(format string, args ...any) {
	r.Passed = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Run executes a scenario on a fresh in-memory engine and evaluates its
// assertions. Engine construction errors and malformed batches return an
// error; assertion failures are reported through the Result.
func Run(scenario *Scenario) (*Result, error) {
	collector := telemetry.NewCollector()
	coldPath := cold.NewMemory()

	cfg := beat.DefaultConfig()
	cfg.Shards = scenario.Shards

	cluster, err := beat.NewCluster(cfg,
		beat.WithTokens(beat.NewSeqGenerator(scenario.TokenPrefix)),
		beat.WithColdPath(coldPath),
		beat.WithEmitter(collector),
		beat.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	result := &Result{Passed: true, Tokens: make(map[int]string)}

	for i, step := range scenario.Batches {
		batch, runs, instr, err := encodeStep(step)
		if err != nil {
			return nil, fmt.Errorf("batches[%d]: %w", i, err)
		}

		for _, run := range runs {
			in := instr
			if in.P == 0 {
				in.P = run.Pred
			}
			token, err := cluster.Submit(step.Shard, batch, run, in)
			switch {
			case step.Reject && err == nil:
				result.AddError("batches[%d]: expected rejection, was admitted as %s", i, token)
			case step.Reject:
				checkRejection(result, i, step, err)
			case err != nil:
				return nil, fmt.Errorf("batches[%d]: submit: %w", i, err)
			default:
				result.Tokens[i] = token
			}
		}
	}

	if err := cluster.RunCycles(context.Background(), scenario.Cycles); err != nil {
		return nil, fmt.Errorf("run cycles: %w", err)
	}

	result.Chain = cluster.Chain().Entries()
	if n := len(result.Chain); n > 0 {
		result.Final = result.Chain[n-1].Receipt
	}
	result.Escalations = coldPath.Drain()
	result.Receipts = collector.Receipts()

	evaluate(result, scenario.Assertions)
	return result, nil
}

// encodeStep lowers one batch step to engine form.
func encodeStep(step BatchStep) (*fact.Batch, []fact.Run, fiber.Instruction, error) {
	op, err := fiber.ParseOp(step.Operation)
	if err != nil {
		return nil, nil, fiber.Instruction{}, err
	}

	raw := make([]ingest.RawTriple, len(step.Triples))
	for i, t := range step.Triples {
		raw[i] = ingest.RawTriple{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
	}
	batch, runs := ingest.EncodeBatch(raw)

	instr := fiber.Instruction{Op: op, K: step.K}
	if step.Subject != "" {
		instr.S = ingest.TermID(step.Subject)
	}
	if step.Predicate != "" {
		instr.P = ingest.TermID(step.Predicate)
	}
	if step.Object != "" {
		instr.O = ingest.ObjectID(step.Object)
	}
	if step.Datatype != "" {
		tag, ok := fact.TagByName(step.Datatype)
		if !ok {
			return nil, nil, fiber.Instruction{}, fmt.Errorf("unknown datatype %q", step.Datatype)
		}
		instr.K = uint64(tag)
	}
	if op == fiber.OpSelectSPO || op == fiber.OpConstruct8 {
		instr.Out = fact.NewBatch(batch.Len())
	}
	return batch, runs, instr, nil
}

func checkRejection(result *Result, i int, step BatchStep, err error) {
	if step.RejectCode == "" {
		return
	}
	var v *guard.Violation
	if !errors.As(err, &v) {
		result.AddError("batches[%d]: rejected with non-guard error: %v", i, err)
		return
	}
	if string(v.Code) != step.RejectCode {
		result.AddError("batches[%d]: rejected with code %s, want %s", i, v.Code, step.RejectCode)
	}
}

// evaluate checks every assertion against the finished run.
func evaluate(result *Result, assertions []Assertion) {
	for i, a := range assertions {
		switch a.Type {
		case AssertChainLength:
			if got := len(result.Chain); got != a.Count {
				result.AddError("assertions[%d]: chain has %d entries, want %d", i, got, a.Count)
			}

		case AssertChainValid:
			if err := lockchain.Verify(result.Chain); err != nil {
				result.AddError("assertions[%d]: chain verification failed: %v", i, err)
			}

		case AssertLanesTotal:
			if got := int(result.Final.Lanes); got != a.Count {
				result.AddError("assertions[%d]: final receipt has %d lanes, want %d", i, got, a.Count)
			}

		case AssertEscalations:
			if got := len(result.Escalations); got != a.Count {
				result.AddError("assertions[%d]: %d escalations, want %d", i, got, a.Count)
			}

		case AssertEscalatedOp:
			found := false
			for _, p := range result.Escalations {
				if p.Instr.Op.String() == a.Op {
					found = true
					break
				}
			}
			if !found {
				result.AddError("assertions[%d]: no escalation for op %s", i, a.Op)
			}
		}
	}
}
