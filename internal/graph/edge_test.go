package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestNode(id string) *Node {
	n := NewNode("Symbol")
	_ = n.SetID(id)
	return n
}

func TestEdge_SourceTarget(t *testing.T) {
	src := newTestNode("a")
	dst := newTestNode("b")
	e := NewEdge(src, dst, "Call")

	assert.Same(t, src, e.Source())
	assert.Same(t, dst, e.Target())
}

func TestEdge_ID_Generated(t *testing.T) {
	src := newTestNode("a")
	dst := newTestNode("b")
	e := NewEdge(src, dst, "Call")

	assert.Equal(t, "Call#a#b", e.ID())
}

func TestEdge_ID_DistinguishesByType(t *testing.T) {
	src := newTestNode("a")
	dst := newTestNode("b")
	call := NewEdge(src, dst, "Call")
	ref := NewEdge(src, dst, "Reference")

	assert.NotEqual(t, call.ID(), ref.ID())
}
