package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lsphandler"
)

// fastConfig trims DefaultConfig's request timeout, which the diagnostics
// phase waits out in full once per run: the production default (10s) is
// appropriate for a real server but would make every test glacial.
func fastConfig(root string) Config {
	cfg := DefaultConfig(root)
	cfg.RequestTimeout = 5 * time.Millisecond
	return cfg
}

func TestRun_EmptyIncludeSet_ReturnsErrorAndNoGraph(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}")

	cfg := fastConfig(root)
	cfg.IncludeDirs = []string{"nonexistent"}

	imp := NewImporter(cfg, newFakeHandler())
	g, err := imp.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoFilesDiscovered)
	assert.Nil(t, g)
}

func TestRun_SingleFile_BuildsExpectedHierarchy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}\n")
	path := root + "/src/lib.rs"

	h := newFakeHandler()
	h.symbols[path] = []lspclient.DocumentSymbol{{
		Name:           "foo",
		Kind:           lspclient.SymbolKindFunction,
		Range:          rng(0, 0, 0, 11),
		SelectionRange: rng(0, 3, 0, 6),
	}}

	imp := NewImporter(fastConfig(root), h)
	g, err := imp.Run(context.Background())
	require.NoError(t, err)

	_, ok := g.Node("src/lib.rs")
	assert.True(t, ok, "expected file node src/lib.rs")
	_, ok = g.Node("lib.foo")
	assert.True(t, ok, "expected symbol node lib.foo")
	assert.Equal(t, root, g.BasePath())
}

// TestRun_TwoFiles_CallAndReference mirrors the worked scenario: a.rs
// defines foo, b.rs defines bar which calls foo. With Call enabled alone,
// exactly one Call edge from the caller (bar) to the callee (foo). With
// Reference additionally enabled, one more edge of type Reference between
// the same pair, in the direction this importer's mechanical resolution of
// the edge-direction table produces (see edges.go's edgeDirections doc).
func TestRun_TwoFiles_CallAndReference(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "fn foo() {}\n")
	writeFile(t, root, "b.rs", "fn bar() { foo(); }\n")
	aPath := root + "/a.rs"
	bPath := root + "/b.rs"

	h := newFakeHandler()
	h.symbols[aPath] = []lspclient.DocumentSymbol{{
		Name: "foo", Kind: lspclient.SymbolKindFunction,
		Range: rng(0, 0, 0, 11), SelectionRange: rng(0, 3, 0, 6),
	}}
	h.symbols[bPath] = []lspclient.DocumentSymbol{{
		Name: "bar", Kind: lspclient.SymbolKindFunction,
		Range: rng(0, 0, 0, 20), SelectionRange: rng(0, 3, 0, 6),
	}}

	h.calls[posKey(bPath, 0, 3)] = []lspclient.CallHierarchyItem{{
		URI: lsphandler.PathToURI(aPath), SelectionRange: rng(0, 3, 0, 6),
	}}
	h.references[posKey(aPath, 0, 3)] = []lspclient.Location{{
		URI: lsphandler.PathToURI(bPath), Range: rng(0, 3, 0, 6),
	}}

	cfg := fastConfig(root)
	cfg.EdgeKinds = map[EdgeKind]bool{EdgeKindCall: true, EdgeKindReference: true}

	imp := NewImporter(cfg, h)
	g, err := imp.Run(context.Background())
	require.NoError(t, err)

	var callEdges, refEdges int
	for _, e := range g.Edges() {
		switch e.Type() {
		case "Call":
			callEdges++
			assert.Equal(t, "b.bar", e.Source().ID())
			assert.Equal(t, "a.foo", e.Target().ID())
		case "Reference":
			refEdges++
		}
	}
	assert.Equal(t, 1, callEdges)
	assert.Equal(t, 1, refEdges)
}

func TestRun_SelfReferenceRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "fn foo() {}\n")
	path := root + "/a.rs"

	h := newFakeHandler()
	h.symbols[path] = []lspclient.DocumentSymbol{{
		Name: "foo", Kind: lspclient.SymbolKindFunction,
		Range: rng(0, 0, 0, 11), SelectionRange: rng(0, 3, 0, 6),
	}}
	// definition() at foo's own position resolving back to itself.
	h.definitions[posKey(path, 0, 3)] = []lspclient.Location{{
		URI: lsphandler.PathToURI(path), Range: rng(0, 3, 0, 6),
	}}

	cfg := fastConfig(root)
	cfg.EdgeKinds = map[EdgeKind]bool{EdgeKindDefinition: true}
	cfg.AvoidSelfReferences = true

	imp := NewImporter(cfg, h)
	g, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, g.Edges(), "self-reference dropped")
}
