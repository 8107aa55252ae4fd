package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

func TestNodePhase_SingleFile_BuildsDirectoryFileAndSymbolNodes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}\n")

	h := newFakeHandler()
	path := root + "/src/lib.rs"
	h.symbols[path] = []lspclient.DocumentSymbol{
		{
			Name:           "foo",
			Kind:           lspclient.SymbolKindFunction,
			Range:          rng(0, 0, 0, 11),
			SelectionRange: rng(0, 3, 0, 6),
		},
	}

	cfg := DefaultConfig(root)
	imp := NewImporter(cfg, h)
	g := graph.NewGraph("t")

	files, err := imp.runNodePhase(context.Background(), g, []string{path})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, ok := g.Node("src/")
	assert.True(t, ok, "expected directory node")
	_, ok = g.Node("src/lib.rs")
	assert.True(t, ok, "expected file node")
	_, ok = g.Node("lib.foo")
	assert.True(t, ok, "expected symbol node")
}

func TestNodePhase_IsomorphicNodesAreReused(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "")
	writeFile(t, root, "b.rs", "")

	h := newFakeHandler()
	sym := lspclient.DocumentSymbol{
		Name:           "same",
		Kind:           lspclient.SymbolKindConstant,
		Range:          rng(0, 0, 0, 4),
		SelectionRange: rng(0, 0, 0, 4),
	}
	h.symbols[root+"/a.rs"] = []lspclient.DocumentSymbol{sym}
	h.symbols[root+"/b.rs"] = []lspclient.DocumentSymbol{sym}

	cfg := DefaultConfig(root)
	imp := NewImporter(cfg, h)
	g := graph.NewGraph("t")

	_, err := imp.runNodePhase(context.Background(), g, []string{root + "/a.rs", root + "/b.rs"})
	require.NoError(t, err)

	// Both "same" symbols carry identical attributes (same Range,
	// SourceName, LOC): the second must reuse the first node rather than
	// colliding into a uuid-suffixed duplicate.
	count := 0
	for _, n := range g.Nodes() {
		if n.Type() == "Constant" {
			count++
		}
	}
	assert.Equal(t, 1, count, "isomorphic reuse")
}

func TestNodePhase_HoverPrefetchGatedByCapability(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "")
	path := root + "/a.rs"

	h := newFakeHandler()
	h.symbols[path] = []lspclient.DocumentSymbol{{
		Name:           "f",
		Kind:           lspclient.SymbolKindFunction,
		Range:          rng(0, 0, 0, 1),
		SelectionRange: rng(0, 0, 0, 1),
	}}
	h.hover[posKey(path, 0, 0)] = "docs for f"
	h.caps.HoverProvider = true

	cfg := DefaultConfig(root)
	imp := NewImporter(cfg, h)
	g := graph.NewGraph("t")

	_, err := imp.runNodePhase(context.Background(), g, []string{path})
	require.NoError(t, err)

	n, ok := g.Node("a.f")
	require.True(t, ok, "expected symbol node a.f")
	got, _ := n.GetString("HoverText")
	assert.Equal(t, "docs for f", got)
}

func TestNodePhase_DuplicateIDGetsUUIDSuffix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "")
	path := root + "/a.rs"

	h := newFakeHandler()
	// Two distinct, non-isomorphic symbols that both compute the ID
	// "a.foo" (same file, same name): the second must not silently
	// overwrite or merge with the first.
	h.symbols[path] = []lspclient.DocumentSymbol{
		{Name: "foo", Kind: lspclient.SymbolKindFunction, Range: rng(0, 0, 0, 5), SelectionRange: rng(0, 0, 0, 3)},
		{Name: "foo", Kind: lspclient.SymbolKindFunction, Range: rng(5, 0, 5, 9), SelectionRange: rng(5, 0, 5, 3)},
	}

	cfg := DefaultConfig(root)
	imp := NewImporter(cfg, h)
	g := graph.NewGraph("t")

	_, err := imp.runNodePhase(context.Background(), g, []string{path})
	require.NoError(t, err)

	count := 0
	for _, n := range g.Nodes() {
		if n.Type() == "Function" {
			count++
		}
	}
	assert.Equal(t, 2, count, "collision must not merge or overwrite")
	_, ok := g.Node("a.foo")
	assert.True(t, ok, "expected the first symbol to keep ID a.foo")
}
