package graph

import (
	"fmt"
	"sync"
)

// MetricLevel is the attribute name Graph's finaliser writes each node's
// computed Level to, so the GXL writer can render depth without
// recomputing the hierarchy.
const MetricLevel = "Metrics.Level"

// Graph owns a set of Nodes and Edges keyed by their generated IDs, plus
// the lazily-recomputed hierarchy bookkeeping (roots, per-node Level,
// MaxDepth) derived from node parentage.
//
// A hierarchy-dirty flag is set by AddNode, RemoveNode, and Reparent; the
// next read of Roots, MaxDepth, or a Node's Level recomputes from scratch
// and clears the flag.
//
// Thread Safety:
//
//	Safe for concurrent use. Edge insertion during the importer's parallel
//	edge phase is the hot concurrent path; node mutation is expected to be
//	single-threaded (the importer's serial node phase) but is not unsafe
//	if it isn't.
type Graph struct {
	name     string
	basePath string

	mu    sync.RWMutex
	nodes map[string]*Node
	edges map[string]*Edge

	hierarchyMu    sync.Mutex
	dirty          bool
	roots          []*Node
	maxDepth       int
}

// NewGraph creates an empty graph with the given name.
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
		dirty: true,
	}
}

// Name returns the graph's name.
func (g *Graph) Name() string { return g.name }

// BasePath returns the project base path set by SetBasePath.
func (g *Graph) BasePath() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.basePath
}

// SetBasePath records the project root the graph was built from.
func (g *Graph) SetBasePath(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.basePath = path
}

// =============================================================================
// NODES
// =============================================================================

// AddNode adopts n into the graph, keyed by n.ID(). Returns an error if n
// has no ID yet or if a different node is already registered under that ID
// (callers are expected to resolve ID collisions, e.g. with a uuid suffix,
// before calling AddNode).
func (g *Graph) AddNode(n *Node) error {
	id := n.ID()
	if id == "" {
		return fmt.Errorf("cannot add a node with no ID")
	}

	g.mu.Lock()
	if existing, ok := g.nodes[id]; ok && existing != n {
		g.mu.Unlock()
		return fmt.Errorf("node ID %q already exists in graph %q", id, g.name)
	}
	g.nodes[id] = n
	g.mu.Unlock()

	n.setGraph(g)
	g.markDirty()
	return nil
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns a snapshot of all nodes in the graph.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// RemoveNode detaches and removes the node with the given ID, if present.
// Its children become roots (orphaned, not recursively removed).
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	n, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return
	}
	delete(g.nodes, id)
	g.mu.Unlock()

	for _, c := range n.Children() {
		c.setParentUnchecked(nil)
	}
	if parent := n.Parent(); parent != nil {
		parent.removeChild(n)
	}
	g.markDirty()
}

// =============================================================================
// HIERARCHY
// =============================================================================

// Reparent moves node under newParent (nil makes it a root). It rejects
// the operation if newParent is node itself or a descendant of node,
// which would create a cycle.
func (g *Graph) Reparent(node, newParent *Node) error {
	if newParent != nil {
		if newParent == node || node.isAncestorOf(newParent) {
			return fmt.Errorf("reparenting node %q under %q would create a cycle", node.ID(), newParent.ID())
		}
	}
	node.setParentUnchecked(newParent)
	g.markDirty()
	return nil
}

func (g *Graph) markDirty() {
	g.hierarchyMu.Lock()
	g.dirty = true
	g.hierarchyMu.Unlock()
}

// ensureFinalized recomputes roots, per-node Level, and MaxDepth if the
// hierarchy-dirty flag is set.
func (g *Graph) ensureFinalized() {
	g.hierarchyMu.Lock()
	defer g.hierarchyMu.Unlock()
	if !g.dirty {
		return
	}

	var roots []*Node
	for _, n := range g.Nodes() {
		if n.Parent() == nil {
			roots = append(roots, n)
		}
	}

	maxDepth := 0
	var walk func(n *Node, level int)
	walk = func(n *Node, level int) {
		n.setLevel(level)
		n.SetInt(MetricLevel, int64(level))
		if level+1 > maxDepth {
			maxDepth = level + 1
		}
		for _, c := range n.Children() {
			walk(c, level+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	if len(roots) == 0 {
		maxDepth = 0
	}

	g.roots = roots
	g.maxDepth = maxDepth
	g.dirty = false
}

// Roots returns the graph's root nodes (those with no parent).
func (g *Graph) Roots() []*Node {
	g.ensureFinalized()
	g.hierarchyMu.Lock()
	defer g.hierarchyMu.Unlock()
	out := make([]*Node, len(g.roots))
	copy(out, g.roots)
	return out
}

// MaxDepth returns max(Level)+1 over all nodes, or 0 for an empty graph.
func (g *Graph) MaxDepth() int {
	g.ensureFinalized()
	g.hierarchyMu.Lock()
	defer g.hierarchyMu.Unlock()
	return g.maxDepth
}

// =============================================================================
// EDGES
// =============================================================================

// AddEdge adds e to the graph unless an edge with the same generated ID
// already exists, in which case it is a silent no-op (the deduplication
// rule). Returns true if the edge was newly added.
func (g *Graph) AddEdge(e *Edge) bool {
	id := e.ID()

	g.mu.Lock()
	if _, exists := g.edges[id]; exists {
		g.mu.Unlock()
		return false
	}
	g.edges[id] = e
	g.mu.Unlock()

	e.setGraph(g)
	e.source.addOutgoing(e)
	e.target.addIncoming(e)
	return true
}

// Edge looks up an edge by its generated ID.
func (g *Graph) Edge(id string) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

// Edges returns a snapshot of all edges in the graph.
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}
