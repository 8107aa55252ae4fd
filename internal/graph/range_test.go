package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_Contains(t *testing.T) {
	outer := NewRange(1, 0, 10, 0)
	inner := NewRange(2, 5, 3, 0)

	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
}

func TestRange_Contains_Reflexive(t *testing.T) {
	r := NewRange(1, 2, 3, 4)
	assert.True(t, r.Contains(r))
}

func TestRange_Contains_Transitive(t *testing.T) {
	a := NewRange(0, 0, 100, 0)
	b := NewRange(10, 0, 50, 0)
	c := NewRange(20, 0, 30, 0)

	require.True(t, a.Contains(b))
	require.True(t, b.Contains(c))
	assert.True(t, a.Contains(c), "containment should be transitive")
}

func TestRange_Contains_LineGranular(t *testing.T) {
	outer := NewLineRange(1, 10)
	inner := NewRange(5, 100, 5, 200)

	assert.True(t, outer.Contains(inner))
}

func TestRange_Equal(t *testing.T) {
	a := NewRange(1, 2, 3, 4)
	b := NewRange(1, 2, 3, 4)
	c := NewLineRange(1, 3)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "a character-bounded range should not equal a line-granular one")
}

func TestRange_CompareSize(t *testing.T) {
	tight := NewRange(1, 0, 1, 5)
	loose := NewRange(1, 0, 1, 10)

	assert.Negative(t, tight.CompareSize(loose))
	assert.Positive(t, loose.CompareSize(tight))
	assert.Zero(t, tight.CompareSize(tight))
}

func TestRange_CompareSize_LineSpanDominates(t *testing.T) {
	multiLine := NewRange(1, 0, 5, 0)
	singleLineWide := NewRange(1, 0, 1, 1000)

	assert.Positive(t, multiLine.CompareSize(singleLineWide))
}

func TestRange_CompareSize_UnboundedLosesTie(t *testing.T) {
	bounded := NewRange(1, 0, 1, 5)
	unbounded := NewLineRange(1, 1)

	assert.Positive(t, unbounded.CompareSize(bounded))
}
