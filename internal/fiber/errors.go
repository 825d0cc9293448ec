package fiber

import (
	"errors"
	"fmt"
)

// ErrOverBudget is the park signal: the operation's static tick cost
// exceeds the executor's budget, so the batch must be routed to the cold
// path instead of executing inline. It is a routing decision, not a
// failure.
var ErrOverBudget = errors.New("operation exceeds tick budget")

// ExecutorErrorCode categorizes executor errors.
type ExecutorErrorCode string

const (
	// ErrCodeMalformedInstruction indicates an instruction with an unknown
	// operation or inconsistent operands.
	ErrCodeMalformedInstruction ExecutorErrorCode = "MALFORMED_INSTRUCTION"

	// ErrCodeInvalidOutputBuffer indicates a producing operation was
	// dispatched without an output batch.
	ErrCodeInvalidOutputBuffer ExecutorErrorCode = "INVALID_OUTPUT_BUFFER"
)

// ExecutorError is fatal for the affected batch only. The scheduler logs
// it, drops the batch, and keeps ticking; one malformed instruction never
// stalls the loop.
type ExecutorError struct {
	Code    ExecutorErrorCode
	Message string
	Op      Op
}

// Error implements the error interface.
func (e *ExecutorError) Error() string {
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
}

// IsExecutorError reports whether err is an ExecutorError, unwrapping as
// needed.
func IsExecutorError(err error) bool {
	var ee *ExecutorError
	return errors.As(err, &ee)
}
