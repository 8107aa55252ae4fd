package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// fileRecord holds the per-file state the later pipeline phases (index
// build, edge phase, diagnostics) need: the node it roots relations under,
// and every node carrying a SourceRange in that file, ready for indexing.
type fileRecord struct {
	path     string // absolute
	rel      string // project-relative, forward-slashed
	ranged   []*graph.Node
	fileNode *graph.Node // nil if the File kind is disabled
}

// nodePhase holds the mutable state threaded through the serial node
// phase: the graph under construction and a cache of directory nodes
// already materialised, keyed by absolute directory path.
type nodePhase struct {
	imp    *Importer
	g      *graph.Graph
	dirs   map[string]*graph.Node
	files  []*fileRecord
}

// runNodePhase implements spec step 2: for each discovered file, ensure its
// directory chain, optionally create a file node, and recurse through its
// hierarchical document symbols building one graph node per enabled kind.
func (imp *Importer) runNodePhase(ctx context.Context, g *graph.Graph, paths []string) ([]*fileRecord, error) {
	np := &nodePhase{imp: imp, g: g, dirs: make(map[string]*graph.Node)}

	for _, path := range paths {
		if err := np.processFile(ctx, path); err != nil {
			if errors.Is(err, lspclient.ErrFlatSymbolInformation) {
				return nil, err
			}
			recordNodeError(ctx, "node")
			continue // a per-node/per-file exception must not abort the import
		}
	}
	return np.files, nil
}

func (np *nodePhase) processFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := np.imp.h.OpenDocument(ctx, path, string(content)); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer np.imp.h.CloseDocument(ctx, path)

	rel, err := filepath.Rel(np.imp.cfg.ProjectRoot, path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	dirNode, err := np.ensureDirectoryChain(filepath.Dir(path))
	if err != nil {
		return err
	}

	rec := &fileRecord{path: path, rel: rel}

	var effectiveParent *graph.Node = dirNode
	if np.imp.cfg.nodeKindEnabled("File") {
		fileNode := graph.NewNode("File")
		fileNode.SetSourceName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		fileNode.SetSourceFile(filepath.Base(path))
		fileNode.SetSourcePath(filepath.Dir(rel))
		fileNode.SetInt("Metric.Lines.LOC", int64(countLines(content)))

		fileNode, err = np.insertOrReuse(fileNode, rel, dirNode)
		if err != nil {
			return err
		}
		rec.fileNode = fileNode
		effectiveParent = fileNode
	}

	symbols, err := np.imp.h.DocumentSymbols(ctx, path)
	if err != nil {
		return fmt.Errorf("documentSymbols %s: %w", path, err)
	}

	var topNodes []*graph.Node
	for _, sym := range symbols {
		n, err := np.buildSymbolNode(ctx, sym, effectiveParent, path)
		if err != nil {
			recordNodeError(ctx, "node")
			continue
		}
		topNodes = append(topNodes, n)
	}

	if rec.fileNode != nil {
		rec.ranged = np.rangedDescendants(rec.fileNode)
	} else {
		seen := make(map[*graph.Node]bool)
		for _, n := range topNodes {
			for _, d := range np.rangedDescendants(n) {
				if !seen[d] {
					seen[d] = true
					rec.ranged = append(rec.ranged, d)
				}
			}
		}
	}
	np.files = append(np.files, rec)
	recordNodeCreated(ctx, "File")
	return nil
}

// ensureDirectoryChain returns the deepest directory node for absDir,
// creating (and caching) every missing ancestor down from the project
// root, which is never itself reified as a node.
func (np *nodePhase) ensureDirectoryChain(absDir string) (*graph.Node, error) {
	root := filepath.Clean(np.imp.cfg.ProjectRoot)
	absDir = filepath.Clean(absDir)
	if absDir == root {
		return nil, nil
	}
	if n, ok := np.dirs[absDir]; ok {
		return n, nil
	}

	parent, err := np.ensureDirectoryChain(filepath.Dir(absDir))
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(root, absDir)
	if err != nil {
		return nil, err
	}
	id := filepath.ToSlash(rel) + "/"

	n := graph.NewNode("Directory")
	n.SetSourceName(filepath.Base(absDir))
	if existing, ok := np.g.Node(id); ok {
		np.dirs[absDir] = existing
		return existing, nil
	}
	if err := n.SetID(id); err != nil {
		return nil, err
	}
	if err := np.g.AddNode(n); err != nil {
		return nil, err
	}
	if err := np.g.Reparent(n, parent); err != nil {
		return nil, err
	}
	np.dirs[absDir] = n
	return n, nil
}

// buildSymbolNode creates (or reuses) a node for sym and recurses into its
// children, reparenting each into the new or reused node.
func (np *nodePhase) buildSymbolNode(ctx context.Context, sym lspclient.DocumentSymbol, parent *graph.Node, path string) (*graph.Node, error) {
	kind := sym.Kind.String()
	if !np.imp.cfg.nodeKindEnabled(kind) {
		// The symbol itself is skipped, but its children are still
		// walked and reparented under the nearest enabled ancestor so a
		// disabled intermediate kind (e.g. Namespace) never hides the
		// nodes nested inside it.
		for _, child := range sym.Children {
			if _, err := np.buildSymbolNode(ctx, child, parent, path); err != nil {
				recordNodeError(ctx, "node")
			}
		}
		return parent, nil
	}

	n := graph.NewNode(kind)
	n.SetSourceName(sym.Name)
	srcRange := convertRange(sym.Range)
	n.SetSourceRange(srcRange)
	n.SetRangeAttribute("SelectionRange", convertRange(sym.SelectionRange))
	n.SetSourceLine(sym.Range.Start.Line + 1)
	n.SetSourceColumn(sym.Range.Start.Character + 1)
	n.SetInt("Metric.Lines.LOC", int64(sym.Range.End.Line-sym.Range.Start.Line))
	if sym.IsDeprecated() {
		n.SetToggle("Deprecated")
	}

	id := symbolID(parent, sym.Name)
	reused, err := np.insertOrReuse(n, id, parent)
	if err != nil {
		return nil, err
	}

	if reused == n {
		// Only newly-inserted nodes get a hover prefetch: a reused node
		// already carries whatever attributes made it isomorphic.
		caps := np.imp.h.Capabilities()
		if caps.HasHoverProvider() {
			if text, err := np.imp.h.Hover(ctx, path, sym.SelectionRange.Start.Line, sym.SelectionRange.Start.Character); err == nil && text != "" {
				reused.SetString("HoverText", text)
			}
		}
		recordNodeCreated(ctx, kind)
	}

	for _, child := range sym.Children {
		if _, err := np.buildSymbolNode(ctx, child, reused, path); err != nil {
			recordNodeError(ctx, "node")
		}
	}

	return reused, nil
}

// insertOrReuse searches the graph for a node isomorphic to candidate
// (same Type, identical attributes) before candidate has an ID assigned.
// The comparison uses IsIsomorphicIgnoringLinkage rather than
// IsIsomorphicTo: every already-added node carries a "Linkage.Name" string
// attribute set by SetID, which candidate never has at this point, and
// the plain comparison would count that as a mismatch for every pair,
// permanently disabling reuse. On a miss, it assigns id (suffixing
// "#<uuid>" on collision), adds candidate, and reparents it under parent.
func (np *nodePhase) insertOrReuse(candidate *graph.Node, id string, parent *graph.Node) (*graph.Node, error) {
	for _, existing := range np.g.Nodes() {
		if candidate.IsIsomorphicIgnoringLinkage(existing) {
			return existing, nil
		}
	}

	if _, exists := np.g.Node(id); exists {
		id = id + "#" + uuid.New().String()
	}
	if err := candidate.SetID(id); err != nil {
		return nil, err
	}
	if err := np.g.AddNode(candidate); err != nil {
		return nil, err
	}
	if err := np.g.Reparent(candidate, parent); err != nil {
		return nil, err
	}
	return candidate, nil
}

// symbolID computes "<parent.sourceName>.<symbolName>", falling back to
// the bare symbol name when there is no parent node to qualify it with.
func symbolID(parent *graph.Node, name string) string {
	if parent == nil {
		return name
	}
	return parent.SourceName() + "." + name
}

// rangedDescendants collects every node under root (inclusive) that
// carries a SourceRange, for the per-file interval index build.
func (np *nodePhase) rangedDescendants(root *graph.Node) []*graph.Node {
	var out []*graph.Node
	var walk func(n *graph.Node)
	walk = func(n *graph.Node) {
		if n == nil {
			return
		}
		if _, ok := n.SourceRange(); ok {
			out = append(out, n)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return out
}

func convertRange(r lspclient.Range) graph.Range {
	return graph.NewRange(r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	count := 0
	for scanner.Scan() {
		count++
	}
	return count
}
