// Package gxl serialises a graph.Graph to the GXL (Graph eXchange
// Language) XML format: one <node> per graph.Node, one <edge> per
// graph.Edge, an out-of-band "Linkage" edge type per parent/child
// hierarchy relation, and one <attr> per stored attribute, typed by
// which of the four Attributable stores it came from. No GXL-aware
// library exists anywhere in the reference corpus, so this writer emits
// the XML text by hand: it takes only the xml.Header constant from stdlib
// encoding/xml and escapes attribute values with its own helper.
package gxl

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
)

// hierarchyEdgeType is the out-of-band edge type GXL readers use to
// reconstruct the node hierarchy independently of the graph's own typed
// edges (spec §4.5).
const hierarchyEdgeType = "Linkage"

// Write serialises g to w as a single GXL graph element named by
// g.Name(). It is not safe to call concurrently with mutation of g.
func Write(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, xml.Header)
	fmt.Fprintf(bw, "<gxl>\n<graph id=%q edgemode=\"directed\">\n", escapeAttr(g.Name()))

	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	for _, n := range nodes {
		writeNode(bw, n)
	}

	edges := g.Edges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID() < edges[j].ID() })
	for _, e := range edges {
		writeEdge(bw, e.ID(), e.Source().ID(), e.Target().ID(), e.Type(), &e.Attributable)
	}
	for _, n := range nodes {
		if n.Parent() == nil {
			continue
		}
		id := fmt.Sprintf("%s#%s#%s", hierarchyEdgeType, n.Parent().ID(), n.ID())
		writeEdge(bw, id, n.Parent().ID(), n.ID(), hierarchyEdgeType, nil)
	}

	fmt.Fprint(bw, "</graph>\n</gxl>\n")
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *graph.Node) {
	fmt.Fprintf(w, "<node id=%q>\n", escapeAttr(n.ID()))
	writeTypeAttr(w, n.Type())
	writeAttrs(w, &n.Attributable)
	fmt.Fprint(w, "</node>\n")
}

func writeEdge(w *bufio.Writer, id, from, to, edgeType string, attrs *graph.Attributable) {
	fmt.Fprintf(w, "<edge id=%q from=%q to=%q>\n", escapeAttr(id), escapeAttr(from), escapeAttr(to))
	writeTypeAttr(w, edgeType)
	if attrs != nil {
		writeAttrs(w, attrs)
	}
	fmt.Fprint(w, "</edge>\n")
}

func writeTypeAttr(w *bufio.Writer, typ string) {
	fmt.Fprintf(w, "<type xlink:href=%q/>\n", escapeAttr(typ))
}

// writeAttrs walks the reified attribute snapshot for an element. It
// relies only on the Attributable public accessors (ToggleNames/
// StringNames/IntNames/FloatNames and their getters), since
// Attributable's internal maps are private to graph.
func writeAttrs(w *bufio.Writer, a *graph.Attributable) {
	for _, name := range a.ToggleNames() {
		fmt.Fprintf(w, "<attr name=%q kind=\"toggle\"><enum>true</enum></attr>\n", escapeAttr(name))
	}
	for _, name := range a.StringNames() {
		v, _ := a.GetString(name)
		fmt.Fprintf(w, "<attr name=%q kind=\"string\"><string>%s</string></attr>\n", escapeAttr(name), escapeText(v))
	}
	for _, name := range a.IntNames() {
		v, _ := a.GetInt(name)
		fmt.Fprintf(w, "<attr name=%q kind=\"int\"><int>%d</int></attr>\n", escapeAttr(name), v)
	}
	for _, name := range a.FloatNames() {
		v, _ := a.GetFloat(name)
		fmt.Fprintf(w, "<attr name=%q kind=\"float\"><float>%g</float></attr>\n", escapeAttr(name), v)
	}
}

func escapeAttr(s string) string { return xmlEscapeString(s) }
func escapeText(s string) string { return xmlEscapeString(s) }

// xmlEscapeString escapes the five XML special characters; encoding/xml's
// own Encoder writes full elements, not the bare attribute/text fragments
// this writer needs, so escaping is done directly here.
func xmlEscapeString(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '&':
			out = append(out, []rune("&amp;")...)
		case '<':
			out = append(out, []rune("&lt;")...)
		case '>':
			out = append(out, []rune("&gt;")...)
		case '"':
			out = append(out, []rune("&quot;")...)
		case '\'':
			out = append(out, []rune("&apos;")...)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
