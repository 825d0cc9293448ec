package beat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockDecomposition(t *testing.T) {
	c := NewClock()

	for cycle := uint64(0); cycle < 3; cycle++ {
		for tick := uint64(0); tick < 8; tick++ {
			pos, err := c.Next()
			require.NoError(t, err)
			assert.Equal(t, Position{Cycle: cycle, Tick: tick}, pos)
		}
	}
}

func TestPulseFiresAfterTickSeven(t *testing.T) {
	c := NewClock()

	for i := 0; i < 16; i++ {
		pos, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, pos.Tick == 7, pos.Pulse(), "beat %d", i)
	}
}

func TestClockAtCycle(t *testing.T) {
	c := NewClockAtCycle(41)

	pos, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, Position{Cycle: 41, Tick: 0}, pos)
}

func TestClockCurrentDoesNotAdvance(t *testing.T) {
	c := NewClock()
	assert.Equal(t, Position{}, c.Current())
	assert.Equal(t, Position{}, c.Current())

	_, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, Position{Cycle: 0, Tick: 1}, c.Current())
}

func TestClockOverflowIsFatal(t *testing.T) {
	c := &Clock{}
	c.beat.Store(maxBeat - 1)

	pos, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, Position{Cycle: (maxBeat - 1) >> 3, Tick: (maxBeat - 1) & 7}, pos)

	_, err = c.Next()
	require.Error(t, err)
	assert.True(t, IsClockOverflow(err))

	// The counter must not advance past the ceiling.
	_, err = c.Next()
	assert.True(t, IsClockOverflow(err))
}

func TestTokenGenerators(t *testing.T) {
	seq := NewSeqGenerator("")
	assert.Equal(t, "batch-1", seq.Generate())
	assert.Equal(t, "batch-2", seq.Generate())

	named := NewSeqGenerator("case")
	assert.Equal(t, "case-1", named.Generate())

	u := UUIDv7Generator{}
	a, b := u.Generate(), u.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
