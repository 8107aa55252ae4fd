package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_SetID_Immutable(t *testing.T) {
	n := NewNode("File")
	require.NoError(t, n.SetID("a"))
	assert.NoError(t, n.SetID("a"), "setting the same ID again should be a no-op")
	assert.Error(t, n.SetID("b"), "expected an error changing an already-set ID")
	assert.Equal(t, "a", n.ID())
}

func TestNode_SetID_SetsLinkageName(t *testing.T) {
	n := NewNode("File")
	_ = n.SetID("pkg.Foo")

	v, ok := n.GetString(attrLinkageName)
	assert.True(t, ok)
	assert.Equal(t, "pkg.Foo", v)
}

func TestNode_SourceName(t *testing.T) {
	n := NewNode("Directory")
	n.SetSourceName("internal")
	assert.Equal(t, "internal", n.SourceName())
}

func TestNode_ParentChild_Consistency(t *testing.T) {
	g := NewGraph("test")
	parent := NewNode("Directory")
	_ = parent.SetID("dir")
	child := NewNode("File")
	_ = child.SetID("dir/file.go")

	_ = g.AddNode(parent)
	_ = g.AddNode(child)

	require.NoError(t, g.Reparent(child, parent))

	assert.Same(t, parent, child.Parent())
	assert.Equal(t, []*Node{child}, parent.Children())
}

func TestNode_Reparent_RejectsCycle(t *testing.T) {
	g := NewGraph("test")
	a := NewNode("Directory")
	_ = a.SetID("a")
	b := NewNode("Directory")
	_ = b.SetID("b")
	_ = g.AddNode(a)
	_ = g.AddNode(b)

	require.NoError(t, g.Reparent(b, a))
	assert.Error(t, g.Reparent(a, b), "expected an error reparenting a under its own descendant")
	assert.Error(t, g.Reparent(a, a), "expected an error reparenting a node under itself")
}

func TestNode_Reparent_MovingUpdatesOldParent(t *testing.T) {
	g := NewGraph("test")
	oldParent := NewNode("Directory")
	_ = oldParent.SetID("old")
	newParent := NewNode("Directory")
	_ = newParent.SetID("new")
	child := NewNode("File")
	_ = child.SetID("child")
	_ = g.AddNode(oldParent)
	_ = g.AddNode(newParent)
	_ = g.AddNode(child)

	_ = g.Reparent(child, oldParent)
	_ = g.Reparent(child, newParent)

	assert.Empty(t, oldParent.Children())
	assert.Equal(t, []*Node{child}, newParent.Children())
}

func TestNode_Level_And_MaxDepth(t *testing.T) {
	g := NewGraph("test")
	root := NewNode("Directory")
	_ = root.SetID("root")
	mid := NewNode("File")
	_ = mid.SetID("root/f.go")
	leaf := NewNode("Symbol")
	_ = leaf.SetID("root/f.go.Sym")

	_ = g.AddNode(root)
	_ = g.AddNode(mid)
	_ = g.AddNode(leaf)
	_ = g.Reparent(mid, root)
	_ = g.Reparent(leaf, mid)

	assert.Equal(t, 0, root.Level())
	assert.Equal(t, 1, mid.Level())
	assert.Equal(t, 2, leaf.Level())
	assert.Equal(t, 3, g.MaxDepth())
}

func TestNode_MaxDepth_EmptyGraph(t *testing.T) {
	g := NewGraph("empty")
	assert.Equal(t, 0, g.MaxDepth())
}

func TestNode_IsIsomorphicTo(t *testing.T) {
	a := NewNode("Variable")
	a.SetSourceName("x")
	b := NewNode("Variable")
	b.SetSourceName("x")
	c := NewNode("Variable")
	c.SetSourceName("y")

	assert.True(t, a.IsIsomorphicTo(b), "nodes with the same type and attributes should be isomorphic")
	assert.False(t, a.IsIsomorphicTo(c), "nodes with differing attributes should not be isomorphic")
}

func TestNode_IsIsomorphicTo_DifferentTypes(t *testing.T) {
	a := NewNode("Variable")
	b := NewNode("Function")

	assert.False(t, a.IsIsomorphicTo(b), "nodes with different types should never be isomorphic")
}

func TestNode_IsIsomorphicIgnoringLinkage_CandidateVsAdded(t *testing.T) {
	g := NewGraph("test")
	added := NewNode("Variable")
	added.SetSourceName("x")
	require.NoError(t, added.SetID("pkg.x")) // side-effects Linkage.Name
	require.NoError(t, g.AddNode(added))

	candidate := NewNode("Variable")
	candidate.SetSourceName("x")

	assert.False(t, candidate.IsIsomorphicTo(added), "plain comparison is skewed by Linkage.Name")
	assert.True(t, candidate.IsIsomorphicIgnoringLinkage(added))
}
