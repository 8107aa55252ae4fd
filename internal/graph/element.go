package graph

import "sync"

// UnknownType is the fallback Type value for a GraphElement whose type was
// never set.
const UnknownType = "UNKNOWNTYPE"

// Canonical source-location attribute names shared by every GraphElement.
const (
	attrSourceFile   = "Source.File"
	attrSourcePath   = "Source.Path"
	attrSourceLine   = "Source.Line"
	attrSourceColumn = "Source.Column"
	attrSourceRange  = "SourceRange"
)

// GraphElement is the common base of Node and Edge: an Attributable with a
// mandatory Type, a nullable back reference to the owning Graph, and the
// canonical source-location attributes (file, directory, line, column and
// the SourceRange range attribute).
//
// The Graph back reference is a weak relation in spirit: GraphElements
// never keep a Graph alive on their own, and exist only while the Graph
// that owns them does.
type GraphElement struct {
	Attributable

	typMu sync.RWMutex
	typ   string

	graphMu sync.RWMutex
	g       *Graph
}

// Type returns the element's type, defaulting to UnknownType if unset.
func (e *GraphElement) Type() string {
	e.typMu.RLock()
	defer e.typMu.RUnlock()
	if e.typ == "" {
		return UnknownType
	}
	return e.typ
}

// SetType sets the element's type.
func (e *GraphElement) SetType(t string) {
	e.typMu.Lock()
	defer e.typMu.Unlock()
	e.typ = t
}

// Graph returns the owning Graph, or nil if the element has not been added
// to one yet.
func (e *GraphElement) Graph() *Graph {
	e.graphMu.RLock()
	defer e.graphMu.RUnlock()
	return e.g
}

// setGraph installs the owning Graph back reference. Called only by Graph
// when a node or edge is adopted.
func (e *GraphElement) setGraph(g *Graph) {
	e.graphMu.Lock()
	defer e.graphMu.Unlock()
	e.g = g
}

// =============================================================================
// SOURCE LOCATION
// =============================================================================

// SourceFile returns the "Source.File" attribute (the filename).
func (e *GraphElement) SourceFile() string {
	v, _ := e.GetString(attrSourceFile)
	return v
}

// SetSourceFile sets the "Source.File" attribute.
func (e *GraphElement) SetSourceFile(name string) { e.SetString(attrSourceFile, name) }

// SourcePath returns the "Source.Path" attribute (the containing directory).
func (e *GraphElement) SourcePath() string {
	v, _ := e.GetString(attrSourcePath)
	return v
}

// SetSourcePath sets the "Source.Path" attribute.
func (e *GraphElement) SetSourcePath(path string) { e.SetString(attrSourcePath, path) }

// SourceLine returns the "Source.Line" attribute and whether it is set.
func (e *GraphElement) SourceLine() (int, bool) {
	v, ok := e.GetInt(attrSourceLine)
	return int(v), ok
}

// SetSourceLine sets the "Source.Line" attribute.
func (e *GraphElement) SetSourceLine(line int) { e.SetInt(attrSourceLine, int64(line)) }

// SourceColumn returns the "Source.Column" attribute and whether it is set.
func (e *GraphElement) SourceColumn() (int, bool) {
	v, ok := e.GetInt(attrSourceColumn)
	return int(v), ok
}

// SetSourceColumn sets the "Source.Column" attribute.
func (e *GraphElement) SetSourceColumn(col int) { e.SetInt(attrSourceColumn, int64(col)) }

// SetSourceRange stores r as the "SourceRange" range attribute.
func (e *GraphElement) SetSourceRange(r Range) { e.SetRangeAttribute(attrSourceRange, r) }

// SourceRange returns the element's source range. If "SourceRange" was
// never explicitly set but Source.Line is, a degenerate one-character
// range at (Source.Line, Source.Column) is synthesised rather than
// returning false.
func (e *GraphElement) SourceRange() (Range, bool) {
	if r, ok := e.RangeAttribute(attrSourceRange); ok {
		return r, true
	}
	line, hasLine := e.SourceLine()
	if !hasLine {
		return Range{}, false
	}
	col, _ := e.SourceColumn()
	start := col
	end := col + 1
	return NewRange(line, start, line, end), true
}
