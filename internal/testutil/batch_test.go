package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
)

func TestSequentialBatch(t *testing.T) {
	b, run := SequentialBatch(7, 100, 4)
	require.Equal(t, 4, b.Len())
	assert.Equal(t, []uint64{100, 101, 102, 103}, b.S)
	assert.Equal(t, uint64(7), run.Pred)
	assert.Equal(t, uint64(4), run.Len)
	assert.Equal(t, fact.TagInt, fact.TagOf(b.O[0]))
	assert.NoError(t, run.CheckBounds(b.Len()))
}

func TestUniformBatch(t *testing.T) {
	b, run := UniformBatch(1, 2, 3, 8)
	require.Equal(t, 8, b.Len())
	for i := 0; i < 8; i++ {
		assert.Equal(t, uint64(1), b.S[i])
		assert.Equal(t, uint64(2), b.P[i])
		assert.Equal(t, uint64(3), b.O[i])
	}
	assert.Equal(t, uint64(8), run.Len)
}

func TestInstructionBuilders(t *testing.T) {
	ask := Ask(5, 6)
	assert.Equal(t, fiber.OpAskSP, ask.Op)
	assert.Nil(t, ask.Out)

	cons := Construct(5, 6)
	assert.Equal(t, fiber.OpConstruct8, cons.Op)
	require.NotNil(t, cons.Out)
	assert.Equal(t, 0, cons.Out.Len())
}
