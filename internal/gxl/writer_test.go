package gxl

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
)

func TestWrite_ProducesWellFormedXML(t *testing.T) {
	g := graph.NewGraph("proj")
	dir := graph.NewNode("Directory")
	dir.SetSourceName("src")
	require.NoError(t, dir.SetID("src/"))
	require.NoError(t, g.AddNode(dir))

	file := graph.NewNode("File")
	file.SetSourceName("lib")
	file.SetInt("Metric.Lines.LOC", 12)
	require.NoError(t, file.SetID("src/lib.rs"))
	require.NoError(t, g.AddNode(file))
	require.NoError(t, g.Reparent(file, dir))

	fn := graph.NewNode("Function")
	fn.SetSourceName("foo")
	fn.SetToggle("Deprecated")
	require.NoError(t, fn.SetID("lib.foo"))
	require.NoError(t, g.AddNode(fn))
	require.NoError(t, g.Reparent(fn, file))

	e := graph.NewEdge(fn, fn, "Call")
	g.AddEdge(e)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))

	var doc struct {
		XMLName xml.Name `xml:"gxl"`
	}
	assert.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, buf.String(), `id="src/lib.rs"`)
	assert.Contains(t, buf.String(), `kind="toggle"`)
	assert.Contains(t, buf.String(), `id="Linkage#src/#src/lib.rs"`)
}

func TestWrite_EscapesSpecialCharacters(t *testing.T) {
	g := graph.NewGraph(`a & b <c>`)
	n := graph.NewNode("Class")
	n.SetSourceName(`"quoted"`)
	require.NoError(t, n.SetID("n1"))
	require.NoError(t, g.AddNode(n))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	assert.NoError(t, xml.Unmarshal(buf.Bytes(), new(any)))
	assert.NotContains(t, buf.String(), `a & b <c>`)
}
