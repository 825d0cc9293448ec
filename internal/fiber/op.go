package fiber

import "fmt"

// Op identifies one operation in the closed hot-path instruction set.
type Op uint8

const (
	// OpAskSP tests membership: does any lane in the run match (s, p)?
	OpAskSP Op = iota + 1
	// OpCountSPGE counts lanes matching (s, p) and compares against K.
	OpCountSPGE
	// OpCompareOGT selects lanes whose object value exceeds the instruction
	// object operand.
	OpCompareOGT
	// OpValidateDT validates that every object in the run carries the
	// datatype tag named by K.
	OpValidateDT
	// OpSelectSPO selects lanes matching the (s, p, o) pattern (zero operand
	// = wildcard) into the output buffers.
	OpSelectSPO
	// OpConstruct8 constructs up to 8 derived triples from the run. Its
	// static cost exceeds the 8-tick budget, so it always parks on the hot
	// path and runs via the cold path.
	OpConstruct8
)

// opNames is indexed by Op.
var opNames = [...]string{
	OpAskSP:      "ASK_SP",
	OpCountSPGE:  "COUNT_SP_GE",
	OpCompareOGT: "COMPARE_O_GT",
	OpValidateDT: "VALIDATE_DT",
	OpSelectSPO:  "SELECT_SPO",
	OpConstruct8: "CONSTRUCT_8",
}

// opCosts documents the maximum tick cost of each operation. A tick is a
// fixed unit of bounded work; costs are fixed at design time and never
// measured at runtime.
var opCosts = [...]uint32{
	OpAskSP:      2,
	OpCountSPGE:  3,
	OpCompareOGT: 2,
	OpValidateDT: 4,
	OpSelectSPO:  6,
	OpConstruct8: 12,
}

// Valid reports whether op is a member of the instruction set.
func (op Op) Valid() bool {
	return op >= OpAskSP && op <= OpConstruct8
}

// String returns the canonical operation mnemonic.
func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("OP_%d", uint8(op))
	}
	return opNames[op]
}

// Cost returns the static tick cost of the operation. Cost of an invalid
// op is 0; validity is checked separately.
func (op Op) Cost() uint32 {
	if !op.Valid() {
		return 0
	}
	return opCosts[op]
}

// FitsBudget reports whether the operation's static cost fits the given
// tick budget. This is the only budget check in the system: there is no
// reactive timing on the hot path.
func (op Op) FitsBudget(budget uint32) bool {
	return op.Valid() && op.Cost() <= budget
}

// ParseOp maps a mnemonic (as written in workload files) to an Op.
func ParseOp(name string) (Op, error) {
	for op := OpAskSP; op <= OpConstruct8; op++ {
		if opNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}
