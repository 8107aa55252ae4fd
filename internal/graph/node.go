package graph

import (
	"fmt"
	"sync"
)

// attrSourceName and attrLinkageName back Node.SourceName and Node.ID's
// side-effecting "Linkage.Name" attribute.
const (
	attrSourceName  = "Source.Name"
	attrLinkageName = "Linkage.Name"
)

// Node is a GraphElement representing a directory, file, or program symbol.
// It carries an immutable ID, a non-unique display name, forest-structured
// parent/child hierarchy with a derived Level, and its incident edge sets.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Node struct {
	GraphElement

	mu       sync.RWMutex
	id       string
	idSet    bool
	parent   *Node
	children []*Node
	level    int

	incoming map[string]*Edge
	outgoing map[string]*Edge
}

// NewNode creates a node with the given type. Its ID must be set separately
// via SetID before it can be added to a Graph.
func NewNode(nodeType string) *Node {
	n := &Node{incoming: make(map[string]*Edge), outgoing: make(map[string]*Edge)}
	n.SetType(nodeType)
	return n
}

// ID returns the node's unique ID, or "" if it has not been set yet.
func (n *Node) ID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.id
}

// SetID sets the node's ID. It is immutable once set: calling SetID again
// with a different value returns an error. Setting it also sets the
// "Linkage.Name" string attribute to the same value.
func (n *Node) SetID(id string) error {
	n.mu.Lock()
	if n.idSet && n.id != id {
		n.mu.Unlock()
		return fmt.Errorf("node ID is immutable: already %q, cannot set to %q", n.id, id)
	}
	n.id = id
	n.idSet = true
	n.mu.Unlock()

	n.SetString(attrLinkageName, id)
	return nil
}

// SourceName returns the node's non-unique display name ("Source.Name").
func (n *Node) SourceName() string {
	v, _ := n.GetString(attrSourceName)
	return v
}

// SetSourceName sets the node's display name ("Source.Name").
func (n *Node) SetSourceName(name string) { n.SetString(attrSourceName, name) }

// =============================================================================
// HIERARCHY
// =============================================================================

// Parent returns the node's parent, or nil if it is a root.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Children returns a snapshot of the node's children.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Level returns the node's depth: 0 for a root, parent.Level()+1 otherwise.
// If the node belongs to a Graph with a pending hierarchy recompute, the
// recompute runs first so the value is current.
func (n *Node) Level() int {
	if g := n.Graph(); g != nil {
		g.ensureFinalized()
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.level
}

// isAncestorOf reports whether n is an ancestor of other (or other itself),
// walking up other's parent chain. Used to reject cycles before reparenting.
func (n *Node) isAncestorOf(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent() {
		if cur == n {
			return true
		}
	}
	return false
}

// setParentUnchecked links n under parent without cycle validation;
// callers (Graph.Reparent) are responsible for that check. It mutates both
// the old and new parent's children slices.
func (n *Node) setParentUnchecked(parent *Node) {
	n.mu.Lock()
	old := n.parent
	n.parent = parent
	n.mu.Unlock()

	if old != nil {
		old.removeChild(n)
	}
	if parent != nil {
		parent.addChild(n)
	}
}

func (n *Node) addChild(c *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, existing := range n.children {
		if existing == c {
			return
		}
	}
	n.children = append(n.children, c)
}

func (n *Node) removeChild(c *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) setLevel(level int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.level = level
}

// =============================================================================
// EDGES
// =============================================================================

// IncomingEdges returns a snapshot of edges targeting n.
func (n *Node) IncomingEdges() []*Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Edge, 0, len(n.incoming))
	for _, e := range n.incoming {
		out = append(out, e)
	}
	return out
}

// OutgoingEdges returns a snapshot of edges sourced at n.
func (n *Node) OutgoingEdges() []*Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Edge, 0, len(n.outgoing))
	for _, e := range n.outgoing {
		out = append(out, e)
	}
	return out
}

func (n *Node) addOutgoing(e *Edge) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outgoing[e.ID()] = e
}

func (n *Node) addIncoming(e *Edge) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.incoming[e.ID()] = e
}

func (n *Node) removeOutgoing(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.outgoing, id)
}

func (n *Node) removeIncoming(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.incoming, id)
}

// =============================================================================
// ISOMORPHISM
// =============================================================================

// IsIsomorphicTo reports whether n and other have the same Type and
// identical attributes across all stores, Linkage.Name included. The
// importer's pre-insertion dedup uses IsIsomorphicIgnoringLinkage instead,
// since a candidate node has no ID (and so no Linkage.Name) yet.
func (n *Node) IsIsomorphicTo(other *Node) bool {
	if n.Type() != other.Type() {
		return false
	}
	return n.HasSameAttributes(&other.Attributable)
}

// ignoredIsomorphismStrings names string attributes excluded from
// IsIsomorphicIgnoringLinkage's comparison.
var ignoredIsomorphismStrings = map[string]bool{attrLinkageName: true}

// IsIsomorphicIgnoringLinkage is IsIsomorphicTo but disregards the
// "Linkage.Name" string attribute on both sides. A node with no ID set
// never carries it, while any node already added to a Graph always does
// (SetID's side effect); comparing the two directly would make the
// generated ID itself part of the identity check and defeat
// deduplication entirely. Callers needing to check a not-yet-added
// candidate against the graph's existing nodes should use this instead
// of IsIsomorphicTo.
func (n *Node) IsIsomorphicIgnoringLinkage(other *Node) bool {
	if n.Type() != other.Type() {
		return false
	}
	return n.HasSameAttributesIgnoringStrings(&other.Attributable, ignoredIsomorphismStrings)
}
