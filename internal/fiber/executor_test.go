package fiber

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritick/veritick/internal/fact"
)

func fullRun(t *testing.T, n int) (Context, fact.Run) {
	t.Helper()
	b := fact.NewBatch(n)
	for i := 0; i < n; i++ {
		b.Append(100, 200, 300+uint64(i))
	}
	run := fact.Run{Pred: 200, Off: 0, Len: uint64(n)}
	ctx, err := NewContext(b, run)
	require.NoError(t, err)
	return ctx, run
}

func TestAskSPAllLanesMatch(t *testing.T) {
	ctx, run := fullRun(t, 8)
	exec := NewExecutor(0)

	r, err := exec.Execute(ctx, Instruction{Op: OpAskSP, S: 100, P: 200})
	require.NoError(t, err)
	assert.Equal(t, uint32(8), r.Lanes)
	assert.Equal(t, SpanID(run), r.SpanID)
}

func TestAskSPNoMatchHashesEmptyProjection(t *testing.T) {
	ctx, _ := fullRun(t, 4)
	exec := NewExecutor(0)

	r, err := exec.Execute(ctx, Instruction{Op: OpAskSP, S: 999, P: 200})
	require.NoError(t, err)
	assert.Equal(t, fact.HashWords(nil), r.ResultHash)
	assert.Equal(t, uint32(4), r.Lanes, "lanes report run coverage, not matches")
}

func TestCountSPGE(t *testing.T) {
	ctx, _ := fullRun(t, 6)
	exec := NewExecutor(0)

	r, err := exec.Execute(ctx, Instruction{Op: OpCountSPGE, S: 100, P: 200, K: 4})
	require.NoError(t, err)
	assert.Equal(t, fact.HashWords([]uint64{6, 4, 1}), r.ResultHash)

	r, err = exec.Execute(ctx, Instruction{Op: OpCountSPGE, S: 100, P: 200, K: 7})
	require.NoError(t, err)
	assert.Equal(t, fact.HashWords([]uint64{6, 7, 0}), r.ResultHash)
}

func TestCompareOGT(t *testing.T) {
	ctx, _ := fullRun(t, 4) // objects 300..303
	exec := NewExecutor(0)

	r, err := exec.Execute(ctx, Instruction{Op: OpCompareOGT, O: 301})
	require.NoError(t, err)
	want := fact.HashWords([]uint64{100, 200, 302, 100, 200, 303})
	assert.Equal(t, want, r.ResultHash)
}

func TestValidateDT(t *testing.T) {
	b := fact.NewBatch(2)
	b.Append(1, 2, fact.Tagged(fact.TagInt, 42))
	b.Append(1, 2, fact.Tagged(fact.TagString, 43))
	ctx, err := NewContext(b, fact.Run{Pred: 2, Off: 0, Len: 2})
	require.NoError(t, err)

	exec := NewExecutor(0)
	r, err := exec.Execute(ctx, Instruction{Op: OpValidateDT, K: uint64(fact.TagInt)})
	require.NoError(t, err)

	want := fact.HashWords([]uint64{
		fact.Tagged(fact.TagInt, 42), 1,
		fact.Tagged(fact.TagString, 43), 0,
	})
	assert.Equal(t, want, r.ResultHash)
}

func TestSelectSPOWildcards(t *testing.T) {
	b := fact.NewBatch(3)
	b.Append(10, 20, 30)
	b.Append(11, 20, 31)
	b.Append(10, 20, 32)
	ctx, err := NewContext(b, fact.Run{Pred: 20, Off: 0, Len: 3})
	require.NoError(t, err)

	out := fact.NewBatch(3)
	exec := NewExecutor(0)
	r, err := exec.Execute(ctx, Instruction{Op: OpSelectSPO, S: 10, Out: out})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []uint64{30, 32}, out.O)
	assert.Equal(t, fact.HashWords([]uint64{10, 20, 30, 10, 20, 32}), r.ResultHash)
}

func TestSelectSPORequiresOutput(t *testing.T) {
	ctx, _ := fullRun(t, 2)
	exec := NewExecutor(0)

	_, err := exec.Execute(ctx, Instruction{Op: OpSelectSPO})
	require.Error(t, err)

	var ee *ExecutorError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeInvalidOutputBuffer, ee.Code)
}

func TestConstruct8ParksOnHotPath(t *testing.T) {
	ctx, _ := fullRun(t, 8)
	exec := NewExecutor(0)

	_, err := exec.Execute(ctx, Instruction{Op: OpConstruct8, S: 1, P: 2, Out: fact.NewBatch(8)})
	assert.ErrorIs(t, err, ErrOverBudget)
}

func TestConstruct8Unbounded(t *testing.T) {
	ctx, _ := fullRun(t, 8) // objects 300..307
	exec := NewExecutor(0)

	out := fact.NewBatch(8)
	r, err := exec.ExecuteUnbounded(ctx, Instruction{Op: OpConstruct8, S: 7, P: 9, Out: out})
	require.NoError(t, err)

	require.Equal(t, 8, out.Len())
	assert.Equal(t, uint64(7), out.S[0])
	assert.Equal(t, uint64(9), out.P[0])
	assert.Equal(t, uint64(300), out.O[0])
	assert.Equal(t, uint64(307), out.O[7])
	assert.NotZero(t, r.ResultHash)
}

func TestMalformedInstruction(t *testing.T) {
	ctx, _ := fullRun(t, 1)
	exec := NewExecutor(0)

	_, err := exec.Execute(ctx, Instruction{Op: Op(42)})
	require.Error(t, err)
	assert.True(t, IsExecutorError(err))

	var ee *ExecutorError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ErrCodeMalformedInstruction, ee.Code)
}

func TestReceiptMatchesProjectionHash(t *testing.T) {
	ctx, _ := fullRun(t, 5)
	exec := NewExecutor(0)

	cases := []Instruction{
		{Op: OpAskSP, S: 100, P: 200},
		{Op: OpCountSPGE, S: 100, P: 200, K: 3},
		{Op: OpCompareOGT, O: 302},
		{Op: OpValidateDT, K: uint64(fact.TagInt)},
		{Op: OpSelectSPO, P: 200, Out: fact.NewBatch(5)},
	}
	for _, ir := range cases {
		r, err := exec.Execute(ctx, ir)
		require.NoError(t, err, ir.Op.String())

		proj := Projection(ir.Op, ctx, ir)
		assert.Equal(t, fact.HashWords(proj), r.ResultHash, ir.Op.String())
	}
}

func TestExecuteIsIdempotent(t *testing.T) {
	ctx, _ := fullRun(t, 8)
	exec := NewExecutor(0)
	ir := Instruction{Op: OpAskSP, S: 100, P: 200}

	first, err := exec.Execute(ctx, ir)
	require.NoError(t, err)
	second, err := exec.Execute(ctx, ir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSpanIDDeterministic(t *testing.T) {
	run := fact.Run{Pred: 11, Off: 2, Len: 6}
	assert.Equal(t, SpanID(run), SpanID(run))
	assert.Equal(t, fact.HashWords([]uint64{11, 2, 6}), SpanID(run))
	assert.NotEqual(t, SpanID(run), SpanID(fact.Run{Pred: 11, Off: 3, Len: 6}))
}

func TestNewContextValidation(t *testing.T) {
	_, err := NewContext(nil, fact.Run{})
	assert.Error(t, err)

	b := fact.NewBatch(2)
	b.Append(1, 2, 3)
	_, err = NewContext(b, fact.Run{Pred: 2, Off: 0, Len: 2})
	assert.Error(t, err, "run longer than batch must be rejected")

	_, err = NewContext(b, fact.Run{Pred: 2, Off: 0, Len: 1})
	assert.NoError(t, err)
}
