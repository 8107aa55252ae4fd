package importer

import (
	"context"
	"time"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// runDiagnosticsPhase implements spec step 7: after the edge phase settles,
// give the server one more request-timeout window to push any trailing
// textDocument/publishDiagnostics batches, then drain every open file's
// buffer, map each diagnostic to the tightest enclosing node via that
// file's interval index, and increment its per-severity counter. A
// diagnostic outside every indexed range (e.g. an import-line error with
// no enclosing symbol) is counted against the file node instead.
func (imp *Importer) runDiagnosticsPhase(ctx context.Context, indexes map[string]*fileIndexEntry) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(imp.cfg.RequestTimeout):
	}

	for path, entry := range indexes {
		for _, diag := range imp.h.DrainPushedDiagnostics(path) {
			if !imp.cfg.severityEnabled(diag.Severity) {
				continue
			}
			target := imp.resolveDiagnosticTarget(entry, diag)
			if target == nil {
				continue
			}
			target.IncrementInt("Metrics.LSP_"+diag.Severity.String(), 1)
		}
	}
}

func (imp *Importer) resolveDiagnosticTarget(entry *fileIndexEntry, diag lspclient.Diagnostic) *graph.Node {
	hits := entry.index.Stab(convertRange(diag.Range))
	if len(hits) > 0 {
		return hits[0]
	}
	return entry.rec.fileNode
}
