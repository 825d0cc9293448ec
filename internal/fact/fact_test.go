package fact

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytesKnownValues(t *testing.T) {
	// FNV-1a 64 reference values.
	assert.Equal(t, uint64(14695981039346656037), HashBytes(nil))
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), HashBytes([]byte("a")))
	assert.Equal(t, uint64(0x85944171f73967e8), HashBytes([]byte("foobar")))
}

func TestHashWordsMatchesByteEncoding(t *testing.T) {
	words := []uint64{0, 1, 0xDEADBEEF, ^uint64(0)}

	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}

	assert.Equal(t, HashBytes(buf), HashWords(words))
}

func TestHashWordsEmptyIsOffset(t *testing.T) {
	assert.Equal(t, HashBytes(nil), HashWords(nil))
}

func TestHashTermDomainSeparation(t *testing.T) {
	a := HashTerm(DomainTerm, "urn:x")
	b := HashTerm(DomainSpan, "urn:x")
	assert.NotEqual(t, a, b, "same term under different domains must not collide")

	// The NUL separator keeps domain/term boundaries unambiguous.
	assert.NotEqual(t, HashTerm("ab", "c"), HashTerm("a", "bc"))
}

func TestHashTermDeterministic(t *testing.T) {
	assert.Equal(t, HashTerm(DomainTerm, "urn:alice"), HashTerm(DomainTerm, "urn:alice"))
}

func TestBatchAppendAndLen(t *testing.T) {
	b := NewBatch(4)
	require.Equal(t, 0, b.Len())

	b.Append(1, 2, 3)
	b.Append(4, 5, 6)
	require.Equal(t, 2, b.Len())
	assert.Equal(t, []uint64{1, 4}, b.S)
	assert.Equal(t, []uint64{2, 5}, b.P)
	assert.Equal(t, []uint64{3, 6}, b.O)
	assert.NoError(t, b.Check())
}

func TestBatchCloneIsDeep(t *testing.T) {
	b := NewBatch(1)
	b.Append(1, 2, 3)

	c := b.Clone()
	c.Append(7, 8, 9)
	c.S[0] = 99

	assert.Equal(t, 1, b.Len())
	assert.Equal(t, uint64(1), b.S[0])
	assert.Equal(t, 2, c.Len())
}

func TestBatchCheckRagged(t *testing.T) {
	b := &Batch{S: []uint64{1}, P: []uint64{1, 2}, O: []uint64{1}}
	assert.Error(t, b.Check())
}

func TestRunBounds(t *testing.T) {
	r := Run{Pred: 7, Off: 2, Len: 3}
	assert.Equal(t, uint64(5), r.End())
	assert.NoError(t, r.CheckBounds(5))
	assert.Error(t, r.CheckBounds(4))
}

func TestTaggedRoundTrip(t *testing.T) {
	id := Tagged(TagInt, 0xFFFF_FFFF_FFFF_FFFF)
	assert.Equal(t, TagInt, TagOf(id))
	assert.Equal(t, uint64(TagInt)<<56|valueMask, id, "tag owns the top byte, value keeps the rest")
}

func TestTagNames(t *testing.T) {
	for _, tag := range []uint8{TagIRI, TagString, TagInt, TagBool} {
		name := TagName(tag)
		require.NotEqual(t, "unknown", name)

		got, ok := TagByName(name)
		require.True(t, ok)
		assert.Equal(t, tag, got)
	}

	assert.Equal(t, "unknown", TagName(0xFF))
	_, ok := TagByName("decimal")
	assert.False(t, ok)
}
