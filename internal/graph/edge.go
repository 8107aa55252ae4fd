package graph

import "fmt"

// Edge is a GraphElement connecting a source Node to a target Node under a
// relation Type. Its ID is generated as "<Type>#<Source.ID>#<Target.ID>",
// which also serves as the deduplication key on insertion.
type Edge struct {
	GraphElement

	source *Node
	target *Node
}

// NewEdge creates an edge of the given type between source and target. Both
// nodes must already have an ID assigned.
func NewEdge(source, target *Node, edgeType string) *Edge {
	e := &Edge{source: source, target: target}
	e.SetType(edgeType)
	return e
}

// Source returns the edge's source node.
func (e *Edge) Source() *Node { return e.source }

// Target returns the edge's target node.
func (e *Edge) Target() *Node { return e.target }

// ID returns the generated "<Type>#<Source.ID>#<Target.ID>" identifier.
func (e *Edge) ID() string {
	return fmt.Sprintf("%s#%s#%s", e.Type(), e.source.ID(), e.target.ID())
}
