package interval

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
)

func TestTree_Build_Empty(t *testing.T) {
	tr := Build[string](nil)
	assert.Nil(t, tr.Stab(graph.NewLineRange(0, 1)))
}

func TestTree_Stab_SelfRoundTrip(t *testing.T) {
	// Round-trip property: building over any node set N and stabbing each
	// n's own range returns n (possibly among others).
	entries := []Entry[string]{
		{Range: graph.NewRange(0, 0, 10, 0), Payload: "file"},
		{Range: graph.NewRange(1, 0, 5, 0), Payload: "class"},
		{Range: graph.NewRange(2, 0, 3, 0), Payload: "method"},
		{Range: graph.NewRange(6, 0, 9, 0), Payload: "otherClass"},
		{Range: graph.NewRange(7, 0, 8, 0), Payload: "otherMethod"},
	}
	tr := Build(entries)

	for _, e := range entries {
		got := tr.Stab(e.Range)
		assert.True(t, contains(got, e.Payload), "Stab(%v) = %v, want it to include %q", e.Range, got, e.Payload)
	}
}

func TestTree_Stab_ReturnsTightestEnclosing(t *testing.T) {
	entries := []Entry[string]{
		{Range: graph.NewRange(0, 0, 100, 0), Payload: "file"},
		{Range: graph.NewRange(1, 0, 50, 0), Payload: "class"},
		{Range: graph.NewRange(2, 0, 3, 0), Payload: "method"},
	}
	tr := Build(entries)

	got := tr.Stab(graph.NewRange(2, 1, 2, 5))
	assert.Equal(t, []string{"method"}, got)
}

func TestTree_Stab_ReturnsAllTies(t *testing.T) {
	entries := []Entry[string]{
		{Range: graph.NewLineRange(1, 5), Payload: "a"},
		{Range: graph.NewLineRange(1, 5), Payload: "b"},
		{Range: graph.NewLineRange(0, 10), Payload: "wider"},
	}
	tr := Build(entries)

	got := tr.Stab(graph.NewLineRange(2, 3))
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestTree_Stab_NoContainingRange(t *testing.T) {
	entries := []Entry[string]{
		{Range: graph.NewLineRange(10, 20), Payload: "a"},
	}
	tr := Build(entries)

	assert.Nil(t, tr.Stab(graph.NewLineRange(0, 5)))
}

func TestTree_Stab_ManyEntries_ExercisesInternalSplits(t *testing.T) {
	var entries []Entry[int]
	for i := 0; i < 200; i++ {
		entries = append(entries, Entry[int]{
			Range:   graph.NewRange(i, 0, i+1, 10),
			Payload: i,
		})
	}
	tr := Build(entries)

	for _, e := range entries {
		got := tr.Stab(e.Range)
		require.True(t, containsInt(got, e.Payload), "Stab(%v) = %v, want it to include %d", e.Range, got, e.Payload)
	}
}

func TestLinear_Stab_MatchesTree(t *testing.T) {
	entries := []Entry[string]{
		{Range: graph.NewRange(0, 0, 100, 0), Payload: "file"},
		{Range: graph.NewRange(1, 0, 50, 0), Payload: "class"},
		{Range: graph.NewRange(2, 0, 3, 0), Payload: "method"},
	}
	tr := Build(entries)
	lin := NewLinear(entries)

	query := graph.NewRange(2, 1, 2, 5)
	treeResult := tr.Stab(query)
	linResult := lin.Stab(query)

	require.Len(t, linResult, len(treeResult))
	assert.Equal(t, treeResult[0], linResult[0])
}

func TestLinear_Stab_Empty(t *testing.T) {
	lin := NewLinear[string](nil)
	assert.Nil(t, lin.Stab(graph.NewLineRange(0, 1)))
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

func containsInt(haystack []int, needle int) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
