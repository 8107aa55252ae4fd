// Package importer drives an LSP server against a project tree and reifies
// its cross-references into a graph.Graph: a serial node phase builds the
// directory/file/symbol hierarchy from documentSymbol responses, then a
// bounded-concurrency edge phase issues the relation queries (definition,
// references, call/type hierarchy, ...) that become graph.Edges.
package importer

import (
	"time"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// EdgeKind names one row of the edge-direction table driving the edge
// phase. The string value is also the graph.Edge Type written for it,
// with two exceptions captured in edgeDirections: TypeDefinition writes
// "Of_Type" and Implementation writes "Implementation_Of".
type EdgeKind string

const (
	EdgeKindDefinition     EdgeKind = "Definition"
	EdgeKindDeclaration    EdgeKind = "Declaration"
	EdgeKindTypeDefinition EdgeKind = "TypeDefinition"
	EdgeKindImplementation EdgeKind = "Implementation"
	EdgeKindReference      EdgeKind = "Reference"
	EdgeKindCall           EdgeKind = "Call"
	EdgeKindExtend         EdgeKind = "Extend"
)

// AllEdgeKinds lists every edge kind the edge phase knows how to issue, in
// the fixed per-node order step 5 requires.
var AllEdgeKinds = []EdgeKind{
	EdgeKindDefinition, EdgeKindDeclaration, EdgeKindTypeDefinition,
	EdgeKindImplementation, EdgeKindReference, EdgeKindCall, EdgeKindExtend,
}

// Config collects every knob of the importer pipeline: discovery roots,
// enabled kinds, reference-filtering toggles, and concurrency/perf options.
// The zero value is not directly usable; start from DefaultConfig.
type Config struct {
	// ProjectRoot is the absolute path the import is rooted at.
	ProjectRoot string

	// IncludeDirs restricts discovery to these project-relative
	// directories. Empty means the whole project root.
	IncludeDirs []string

	// ExcludeDirs are matched against each discovered path either as a
	// plain string prefix, or as a regular expression if the entry ends
	// in "$".
	ExcludeDirs []string

	// UseGitignore additionally skips paths matched by the .gitignore file
	// at ProjectRoot, layered on top of ExcludeDirs. Nested .gitignore
	// files are not read.
	UseGitignore bool

	// NodeKinds, if non-empty, restricts symbol-node creation to these
	// graph Type names (e.g. "Function", "Class"). Nil/empty enables
	// every kind. "Directory" and "File" are controlled the same way.
	NodeKinds map[string]bool

	// EdgeKinds, if non-empty, restricts the edge phase to these kinds.
	// Nil/empty enables every kind in AllEdgeKinds.
	EdgeKinds map[EdgeKind]bool

	// DiagnosticSeverities, if non-empty, restricts which pushed
	// diagnostics are counted. Nil/empty enables every severity.
	DiagnosticSeverities map[lspclient.DiagnosticSeverity]bool

	// AvoidSelfReferences drops an edge whose source equals its target.
	AvoidSelfReferences bool

	// AvoidParentReferences drops an edge whose target is the source's
	// own parent node.
	AvoidParentReferences bool

	// ParallelTasks bounds the number of concurrent (file, node) edge
	// tasks. The LSP relation fan-out itself is separately capped at 4
	// regardless of this value.
	ParallelTasks int

	// RequestTimeout is the per-LSP-request timeout passed to the handler.
	RequestTimeout time.Duration

	// Unoptimised selects the linear Index fallback over the interval
	// tree for every per-file lookup.
	Unoptimised bool

	// PerfCSVPath, if non-empty, receives one appended line per phase:
	// "<phase>,<milliseconds>\n".
	PerfCSVPath string
}

// relationSemaphoreSize bounds concurrent in-flight LSP relation requests
// across the whole edge phase, independent of ParallelTasks: servers
// throttle poorly under higher fan-out.
const relationSemaphoreSize = 4

// DefaultConfig returns a Config with every kind enabled and conservative
// concurrency defaults.
func DefaultConfig(projectRoot string) Config {
	return Config{
		ProjectRoot:    projectRoot,
		ParallelTasks:  8,
		RequestTimeout: 10 * time.Second,
	}
}

func (c Config) nodeKindEnabled(kind string) bool {
	if len(c.NodeKinds) == 0 {
		return true
	}
	return c.NodeKinds[kind]
}

func (c Config) edgeKindEnabled(kind EdgeKind) bool {
	if len(c.EdgeKinds) == 0 {
		return true
	}
	return c.EdgeKinds[kind]
}

func (c Config) severityEnabled(sev lspclient.DiagnosticSeverity) bool {
	if len(c.DiagnosticSeverities) == 0 {
		return true
	}
	return c.DiagnosticSeverities[sev]
}
