package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
)

func batchOf(n int) *fact.Batch {
	b := fact.NewBatch(n)
	for i := 0; i < n; i++ {
		b.Append(uint64(i), 7, uint64(100+i))
	}
	return b
}

func TestValidateAdmitsFullRun(t *testing.T) {
	cfg := DefaultConfig()
	b := batchOf(8)
	run := fact.Run{Pred: 7, Off: 0, Len: 8}

	assert.NoError(t, cfg.Validate(b, run, fiber.OpAskSP))
}

func TestValidateRejectsRunOfNine(t *testing.T) {
	cfg := DefaultConfig()
	b := batchOf(9)
	run := fact.Run{Pred: 7, Off: 0, Len: 9}

	err := cfg.Validate(b, run, fiber.OpAskSP)
	require.Error(t, err)
	assert.True(t, IsRunTooLong(err))

	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, CodeRunTooLong, v.Code)
	assert.Equal(t, fiber.OpAskSP, v.Op)
}

func TestValidateRejectsEmptyBatch(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate(fact.NewBatch(0), fact.Run{}, fiber.OpAskSP)
	require.Error(t, err)
	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, CodeEmptyBatch, v.Code)

	err = cfg.Validate(nil, fact.Run{}, fiber.OpAskSP)
	require.Error(t, err)
}

func TestValidateRejectsUnknownOperation(t *testing.T) {
	cfg := DefaultConfig()
	b := batchOf(2)
	run := fact.Run{Pred: 7, Off: 0, Len: 2}

	err := cfg.Validate(b, run, fiber.Op(42))
	require.Error(t, err)
	assert.True(t, IsUnsupportedOperation(err))
}

func TestValidateRejectsDisallowedOperation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Allowed = map[fiber.Op]bool{fiber.OpAskSP: true}
	b := batchOf(2)
	run := fact.Run{Pred: 7, Off: 0, Len: 2}

	assert.NoError(t, cfg.Validate(b, run, fiber.OpAskSP))

	err := cfg.Validate(b, run, fiber.OpSelectSPO)
	require.Error(t, err)
	assert.True(t, IsUnsupportedOperation(err))
}

func TestValidateRejectsOutOfBoundsRun(t *testing.T) {
	cfg := DefaultConfig()
	b := batchOf(4)
	run := fact.Run{Pred: 7, Off: 2, Len: 4}

	err := cfg.Validate(b, run, fiber.OpAskSP)
	require.Error(t, err)
	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, CodeRunOutOfBounds, v.Code)
}

func TestConstruct8IsAdmitted(t *testing.T) {
	// Over-budget operations still pass admission; budget routing happens
	// at dispatch, not here.
	cfg := DefaultConfig()
	b := batchOf(4)
	run := fact.Run{Pred: 7, Off: 0, Len: 4}

	assert.NoError(t, cfg.Validate(b, run, fiber.OpConstruct8))
}

func TestViolationPredicates(t *testing.T) {
	assert.False(t, IsViolation(errors.New("plain")))
	assert.True(t, IsViolation(&Violation{Code: CodeEmptyBatch}))
	assert.False(t, IsRunTooLong(&Violation{Code: CodeEmptyBatch}))
}
