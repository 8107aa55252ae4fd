package importer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lsphandler"
)

// Handler is the subset of *lsphandler.Handler the importer drives. It
// exists as a seam for tests to substitute a fake LSP backend without
// spawning a server subprocess.
type Handler interface {
	Language() string
	Capabilities() lspclient.ServerCapabilities
	OpenDocument(ctx context.Context, path, content string) error
	CloseDocument(ctx context.Context, path string) error
	DocumentSymbols(ctx context.Context, path string) ([]lspclient.DocumentSymbol, error)
	Hover(ctx context.Context, path string, line, character int) (string, error)
	PositionQuery(ctx context.Context, method lsphandler.PositionQueryMethod, path string, line, character int) ([]lspclient.Location, error)
	References(ctx context.Context, path string, line, character int, includeDeclaration bool) ([]lspclient.Location, error)
	OutgoingCalls(ctx context.Context, path string, line, character int) ([]lspclient.CallHierarchyItem, error)
	Supertypes(ctx context.Context, path string, line, character int) ([]lspclient.TypeHierarchyItem, error)
	DrainPushedDiagnostics(path string) []lspclient.Diagnostic
}

// Importer drives Handler against Config.ProjectRoot and builds the
// resulting graph.Graph in the nine steps of spec §4.3.
type Importer struct {
	cfg  Config
	h    Handler
	perf *perfRecorder
}

// NewImporter builds an Importer. h is typically an *lsphandler.Handler
// already initialized against a running LSP server.
func NewImporter(cfg Config, h Handler) *Importer {
	return &Importer{cfg: cfg, h: h, perf: newPerfRecorder(cfg.PerfCSVPath)}
}

// Run executes the full pipeline and returns the built graph. A fatal
// setup error (missing project root, zero discovered files) aborts before
// any node or edge work starts; per-node and per-relation exceptions are
// logged via the metrics/tracing layer and otherwise swallowed, per the
// error-kind table.
func (imp *Importer) Run(ctx context.Context) (*graph.Graph, error) {
	g := graph.NewGraph(filepath.Base(imp.cfg.ProjectRoot))

	var paths []string
	err := imp.perf.timePhase(ctx, "discovery", func() error {
		exts := imp.extensionsForLanguage()
		var discErr error
		paths, discErr = discover(imp.cfg, exts)
		return discErr
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoFilesDiscovered
	}

	var files []*fileRecord
	if err := imp.perf.timePhase(ctx, "nodes", func() error {
		built, nodeErr := imp.runNodePhase(ctx, g, paths)
		files = built
		return nodeErr
	}); err != nil {
		return nil, err
	}

	_ = imp.perf.timePhase(ctx, "java-correction", func() error {
		imp.runJavaCorrection(g, files)
		return nil
	})

	var indexes map[string]*fileIndexEntry
	_ = imp.perf.timePhase(ctx, "index-build", func() error {
		indexes = imp.buildIndexes(files)
		return nil
	})

	if err := imp.perf.timePhase(ctx, "edges", func() error {
		return imp.runEdgePhase(ctx, g, indexes)
	}); err != nil {
		return nil, err
	}

	_ = imp.perf.timePhase(ctx, "diagnostics", func() error {
		imp.runDiagnosticsPhase(ctx, indexes)
		return nil
	})

	_ = imp.perf.timePhase(ctx, "aggregate", func() error {
		g.Aggregate([]string{"Metric.Lines.LOC"}, false, true)
		g.Aggregate([]string{
			"Metrics.LSP_" + lspclient.DiagnosticSeverityError.String(),
			"Metrics.LSP_" + lspclient.DiagnosticSeverityWarning.String(),
			"Metrics.LSP_" + lspclient.DiagnosticSeverityInformation.String(),
			"Metrics.LSP_" + lspclient.DiagnosticSeverityHint.String(),
		}, true, true)
		return nil
	})

	g.SetBasePath(imp.cfg.ProjectRoot)
	return g, nil
}

// extensionsForLanguage looks up the active language's claimed file
// extensions from the default registry, lowercased and dot-prefixed to
// match discover's exts set.
func (imp *Importer) extensionsForLanguage() map[string]bool {
	out := make(map[string]bool)
	registry := lspclient.NewConfigRegistry()
	cfg, ok := registry.Get(imp.h.Language())
	if !ok {
		return out
	}
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = true
	}
	return out
}

