package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributable_ToggleStringIntFloat(t *testing.T) {
	var a Attributable

	a.SetToggle("Deprecated")
	assert.True(t, a.HasToggle("Deprecated"))
	a.ClearToggle("Deprecated")
	assert.False(t, a.HasToggle("Deprecated"))

	a.SetString("Source.File", "main.go")
	v, ok := a.GetString("Source.File")
	assert.True(t, ok)
	assert.Equal(t, "main.go", v)

	a.SetInt("Metric.Lines.LOC", 42)
	n, ok := a.GetInt("Metric.Lines.LOC")
	assert.True(t, ok)
	assert.EqualValues(t, 42, n)

	a.SetFloat("Score", 3.14)
	f, ok := a.GetFloat("Score")
	assert.True(t, ok)
	assert.Equal(t, 3.14, f)
}

func TestAttributable_GetNumeric_PrefersFloat(t *testing.T) {
	var a Attributable
	a.SetInt("X", 1)
	a.SetFloat("X", 2.5)

	v, ok := a.GetNumeric("X")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestAttributable_GetNumeric_FallsBackToInt(t *testing.T) {
	var a Attributable
	a.SetInt("Y", 7)

	v, ok := a.GetNumeric("Y")
	assert.True(t, ok)
	assert.Equal(t, float64(7), v)
}

func TestAttributable_NameCoexistsAcrossKinds(t *testing.T) {
	var a Attributable
	a.SetString("Foo", "bar")
	a.SetInt("Foo", 1)

	s, ok := a.GetString("Foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", s)

	n, ok := a.GetInt("Foo")
	assert.True(t, ok)
	assert.EqualValues(t, 1, n)
}

func TestAttributable_RangeAttribute_RoundTrip(t *testing.T) {
	var a Attributable
	r := NewRange(1, 2, 3, 4)
	a.SetRangeAttribute("SourceRange", r)

	got, ok := a.RangeAttribute("SourceRange")
	require.True(t, ok)
	assert.True(t, got.Equal(r))
}

func TestAttributable_RangeAttribute_LineGranular(t *testing.T) {
	var a Attributable
	a.SetRangeAttribute("R", NewLineRange(5, 10))

	got, ok := a.RangeAttribute("R")
	require.True(t, ok)
	assert.Nil(t, got.StartChar)
	assert.Nil(t, got.EndChar)
}

func TestAttributable_HasSameAttributes(t *testing.T) {
	var a, b Attributable
	a.SetString("Foo", "bar")
	a.SetInt("N", 1)
	b.SetString("Foo", "bar")
	b.SetInt("N", 1)

	assert.True(t, a.HasSameAttributes(&b))

	b.SetInt("N", 2)
	assert.False(t, a.HasSameAttributes(&b))
}

func TestAttributable_HasSameAttributes_ReflexiveSymmetricTransitive(t *testing.T) {
	var a, b, c Attributable
	a.SetString("K", "v")
	b.SetString("K", "v")
	c.SetString("K", "v")

	assert.True(t, a.HasSameAttributes(&a))
	assert.Equal(t, b.HasSameAttributes(&a), a.HasSameAttributes(&b))
	if a.HasSameAttributes(&b) && b.HasSameAttributes(&c) {
		assert.True(t, a.HasSameAttributes(&c))
	}
}

func TestAttributable_HasSameAttributesIgnoringStrings(t *testing.T) {
	var a, b Attributable
	a.SetString("Shared", "x")
	b.SetString("Shared", "x")
	b.SetString("Linkage.Name", "generated-id")

	assert.False(t, a.HasSameAttributes(&b), "plain comparison should see the extra generated key")

	ignore := map[string]bool{"Linkage.Name": true}
	assert.True(t, a.HasSameAttributesIgnoringStrings(&b, ignore))

	b.SetString("Shared", "y")
	assert.False(t, a.HasSameAttributesIgnoringStrings(&b, ignore), "non-ignored string keys still must match")
}

func TestAttributable_EnumeratedNames(t *testing.T) {
	var a Attributable
	a.SetToggle("Deprecated")
	a.SetString("Source.File", "main.go")
	a.SetInt("Metric.Lines.LOC", 1)
	a.SetFloat("Score", 0.5)

	assert.ElementsMatch(t, []string{"Deprecated"}, a.ToggleNames())
	assert.ElementsMatch(t, []string{"Source.File"}, a.StringNames())
	assert.ElementsMatch(t, []string{"Metric.Lines.LOC"}, a.IntNames())
	assert.ElementsMatch(t, []string{"Score"}, a.FloatNames())
}
