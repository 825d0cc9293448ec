package fiber

import (
	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/receipt"
)

// Instruction is the per-dispatch operation record. It is created by the
// scheduler, consumed immediately by Execute, and never retained.
//
// Operand use by operation:
//
//	ASK_SP       S, P
//	COUNT_SP_GE  S, P, K (threshold)
//	COMPARE_O_GT O (exclusive lower bound)
//	VALIDATE_DT  K (expected datatype tag)
//	SELECT_SPO   S, P, O (zero operand = wildcard), Out
//	CONSTRUCT_8  S, P (template), Out
type Instruction struct {
	Op  Op
	S   uint64
	P   uint64
	O   uint64
	K   uint64
	Out *fact.Batch
}

// DefaultTickBudget is the hot-path budget: one run must complete within
// 8 ticks or park.
const DefaultTickBudget = 8

// Executor dispatches instructions against fact runs. It is stateless apart
// from the configured budget; the zero cost of construction means tests can
// create one per case.
type Executor struct {
	budget uint32
}

// NewExecutor creates an executor with the given tick budget. A budget of 0
// selects DefaultTickBudget.
func NewExecutor(budget uint32) *Executor {
	if budget == 0 {
		budget = DefaultTickBudget
	}
	return &Executor{budget: budget}
}

// Budget returns the configured tick budget.
func (e *Executor) Budget() uint32 {
	return e.budget
}

// Execute dispatches one instruction against the context's run.
//
// Returns ErrOverBudget (the park signal) without executing when the
// operation's static cost exceeds the budget. Returns *ExecutorError for
// malformed instructions. On success the receipt's ResultHash equals
// HashWords(Projection(op, ctx, ir)).
func (e *Executor) Execute(ctx Context, ir Instruction) (receipt.Receipt, error) {
	if err := checkInstruction(ir); err != nil {
		return receipt.Zero, err
	}
	if !ir.Op.FitsBudget(e.budget) {
		return receipt.Zero, ErrOverBudget
	}
	return run(ctx, ir), nil
}

// ExecuteUnbounded dispatches without the budget check. This is the cold
// path's entry point: the same deterministic semantics, minus the latency
// guarantee.
func (e *Executor) ExecuteUnbounded(ctx Context, ir Instruction) (receipt.Receipt, error) {
	if err := checkInstruction(ir); err != nil {
		return receipt.Zero, err
	}
	return run(ctx, ir), nil
}

// Projection returns the word sequence an operation projects from its
// input. Receipts commit to HashWords of exactly this sequence, so auditors
// holding the input can recompute and compare.
func Projection(op Op, ctx Context, ir Instruction) []uint64 {
	ir.Op = op
	return project(ctx, ir, nil)
}

func checkInstruction(ir Instruction) error {
	if !ir.Op.Valid() {
		return &ExecutorError{
			Code:    ErrCodeMalformedInstruction,
			Message: "operation not in hot-path set",
			Op:      ir.Op,
		}
	}
	if (ir.Op == OpSelectSPO || ir.Op == OpConstruct8) && ir.Out == nil {
		return &ExecutorError{
			Code:    ErrCodeInvalidOutputBuffer,
			Message: "producing operation requires an output batch",
			Op:      ir.Op,
		}
	}
	return nil
}

// run executes a validated, in-budget instruction. Dispatch is exhaustive
// over the instruction set; the data-oriented SoA layout keeps the per-lane
// loops tight without any dynamic dispatch.
func run(ctx Context, ir Instruction) receipt.Receipt {
	proj := project(ctx, ir, ir.Out)
	return receipt.Receipt{
		Lanes:      ctx.Lanes(),
		SpanID:     SpanID(ctx.Run()),
		ResultHash: fact.HashWords(proj),
	}
}

// project computes the operation's projection and, when out is non-nil,
// materializes produced triples into it. Keeping projection and production
// in one function is what makes the provenance invariant unconditional.
func project(ctx Context, ir Instruction, out *fact.Batch) []uint64 {
	run := ctx.Run()
	proj := make([]uint64, 0, run.Len*3)

	switch ir.Op {
	case OpAskSP:
		for i := uint64(0); i < run.Len; i++ {
			s, p, o := ctx.Lane(i)
			if s == ir.S && p == ir.P {
				proj = append(proj, s, p, o)
			}
		}

	case OpCountSPGE:
		count := uint64(0)
		for i := uint64(0); i < run.Len; i++ {
			s, p, _ := ctx.Lane(i)
			if s == ir.S && p == ir.P {
				count++
			}
		}
		sat := uint64(0)
		if count >= ir.K {
			sat = 1
		}
		proj = append(proj, count, ir.K, sat)

	case OpCompareOGT:
		for i := uint64(0); i < run.Len; i++ {
			s, p, o := ctx.Lane(i)
			if o > ir.O {
				proj = append(proj, s, p, o)
			}
		}

	case OpValidateDT:
		want := uint8(ir.K)
		for i := uint64(0); i < run.Len; i++ {
			_, _, o := ctx.Lane(i)
			valid := uint64(0)
			if fact.TagOf(o) == want {
				valid = 1
			}
			proj = append(proj, o, valid)
		}

	case OpSelectSPO:
		for i := uint64(0); i < run.Len; i++ {
			s, p, o := ctx.Lane(i)
			if matches(ir.S, s) && matches(ir.P, p) && matches(ir.O, o) {
				proj = append(proj, s, p, o)
				if out != nil {
					out.Append(s, p, o)
				}
			}
		}

	case OpConstruct8:
		// Bounded construction: at most 8 derived triples, templated on the
		// instruction subject/predicate with objects drawn from the run.
		limit := run.Len
		if limit > 8 {
			limit = 8
		}
		for i := uint64(0); i < limit; i++ {
			_, _, o := ctx.Lane(i)
			proj = append(proj, ir.S, ir.P, o)
			if out != nil {
				out.Append(ir.S, ir.P, o)
			}
		}
	}

	return proj
}

// matches implements zero-as-wildcard pattern matching.
func matches(pattern, value uint64) bool {
	return pattern == 0 || pattern == value
}

// SpanID derives the deterministic span identifier for a run. Determinism
// is deliberate: replays must emit the same spans so traces line up with
// the chain.
func SpanID(run fact.Run) uint64 {
	return fact.HashWords([]uint64{run.Pred, run.Off, run.Len})
}
