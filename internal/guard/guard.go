// Package guard implements the admission validator: pure, side-effect-free
// checks a batch must pass before it enters the pipeline.
//
// A violation is terminal for the batch. It is rejected synchronously at
// admission and never retried; nothing downstream (rings, executor, chain)
// ever sees a batch that failed its guard.
package guard

import (
	"errors"
	"fmt"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
)

// ViolationCode categorizes guard violations.
type ViolationCode string

const (
	// CodeRunTooLong indicates a run longer than the configured maximum.
	CodeRunTooLong ViolationCode = "RUN_TOO_LONG"

	// CodeUnsupportedOperation indicates an operation outside the allowed
	// hot-path set.
	CodeUnsupportedOperation ViolationCode = "UNSUPPORTED_OPERATION"

	// CodeEmptyBatch indicates a batch with no triples.
	CodeEmptyBatch ViolationCode = "EMPTY_BATCH"

	// CodeRunOutOfBounds indicates a run descriptor that does not fit the
	// batch it names.
	CodeRunOutOfBounds ViolationCode = "RUN_OUT_OF_BOUNDS"
)

// Violation is the synchronous rejection surfaced to the submitter.
type Violation struct {
	Code    ViolationCode
	Message string
	Op      fiber.Op
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// IsViolation reports whether err is a guard violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// IsRunTooLong reports whether err is a RUN_TOO_LONG violation.
func IsRunTooLong(err error) bool {
	var v *Violation
	return errors.As(err, &v) && v.Code == CodeRunTooLong
}

// IsUnsupportedOperation reports whether err is an UNSUPPORTED_OPERATION
// violation.
func IsUnsupportedOperation(err error) bool {
	var v *Violation
	return errors.As(err, &v) && v.Code == CodeUnsupportedOperation
}

// Config is the process-wide admission policy. It is fixed at scheduler
// construction and read-only thereafter.
type Config struct {
	// MaxRunLen caps run length; the engine constant is 8.
	MaxRunLen uint64

	// TickBudget is the hot-path budget in ticks; the engine constant is 8.
	TickBudget uint32

	// Allowed is the hot-path operation set. Operations not present are
	// rejected at admission even if the executor knows them.
	Allowed map[fiber.Op]bool
}

// DefaultConfig returns the engine's standard admission policy: run length
// and tick budget of 8, all instruction-set operations admitted (over-budget
// operations still park at dispatch - admission and budget are separate
// policies).
func DefaultConfig() Config {
	return Config{
		MaxRunLen:  8,
		TickBudget: fiber.DefaultTickBudget,
		Allowed: map[fiber.Op]bool{
			fiber.OpAskSP:      true,
			fiber.OpCountSPGE:  true,
			fiber.OpCompareOGT: true,
			fiber.OpValidateDT: true,
			fiber.OpSelectSPO:  true,
			fiber.OpConstruct8: true,
		},
	}
}

// Validate checks a batch and run against the admission policy for the
// given operation. Pure: no side effects, called exactly once per
// admission.
func (c Config) Validate(batch *fact.Batch, run fact.Run, op fiber.Op) error {
	if batch == nil || batch.Len() == 0 {
		return &Violation{
			Code:    CodeEmptyBatch,
			Message: "batch has no triples",
			Op:      op,
		}
	}
	if !op.Valid() || !c.Allowed[op] {
		return &Violation{
			Code:    CodeUnsupportedOperation,
			Message: fmt.Sprintf("operation %s not in allowed hot-path set", op),
			Op:      op,
		}
	}
	if run.Len > c.MaxRunLen {
		return &Violation{
			Code:    CodeRunTooLong,
			Message: fmt.Sprintf("run length %d exceeds max %d", run.Len, c.MaxRunLen),
			Op:      op,
		}
	}
	if err := run.CheckBounds(batch.Len()); err != nil {
		return &Violation{
			Code:    CodeRunOutOfBounds,
			Message: err.Error(),
			Op:      op,
		}
	}
	return nil
}
