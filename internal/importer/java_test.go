package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

func TestJavaCorrection_SynthesizesPackageAndReparentsClass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "org/example/Foo.java", "class Foo { void bar() {} }")
	path := root + "/org/example/Foo.java"

	h := newFakeHandler()
	h.language = "java"
	h.symbols[path] = []lspclient.DocumentSymbol{{
		Name: "Foo", Kind: lspclient.SymbolKindClass,
		Range: rng(0, 0, 0, 27), SelectionRange: rng(0, 6, 0, 9),
		Children: []lspclient.DocumentSymbol{{
			Name: "bar", Kind: lspclient.SymbolKindMethod,
			Range: rng(0, 12, 0, 25), SelectionRange: rng(0, 17, 0, 20),
		}},
	}}

	cfg := fastConfig(root)
	imp := NewImporter(cfg, h)
	g, err := imp.Run(context.Background())
	require.NoError(t, err)

	pkg, ok := g.Node("Package.org.example")
	require.True(t, ok, "expected synthesized package node Package.org.example")
	class, ok := g.Node("Foo.Foo")
	require.True(t, ok, "expected class node Foo.Foo")
	assert.Same(t, pkg, class.Parent())

	methods, _ := pkg.GetInt("Metric.Number.Methods")
	assert.EqualValues(t, 1, methods)
}
