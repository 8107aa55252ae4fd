package importer

import (
	"context"
	"fmt"
	"os"
	"time"
)

// perfRecorder appends one "<phase>,<milliseconds>\n" line per phase to the
// configured CSV path. A zero-value perfRecorder (no path configured) is a
// no-op, so callers can use it unconditionally.
type perfRecorder struct {
	path string
}

func newPerfRecorder(path string) *perfRecorder {
	return &perfRecorder{path: path}
}

// record opens the CSV in append mode, writes one line, and closes it
// immediately: phase counts are low (one per pipeline step) so holding the
// file open across the whole run isn't worth the added lifecycle.
func (p *perfRecorder) record(phase string, d time.Duration) error {
	if p == nil || p.path == "" {
		return nil
	}
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open perf csv: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s,%d\n", phase, d.Milliseconds())
	return err
}

// timePhase runs fn, records its elapsed time against phase name, and
// returns fn's error. Used to wrap every pipeline step uniformly.
func (p *perfRecorder) timePhase(ctx context.Context, phase string, fn func() error) error {
	start := time.Now()
	spanCtx, span := startPhaseSpan(ctx, phase)
	err := fn()
	elapsed := time.Since(start)
	span.End()
	recordPhaseMetrics(spanCtx, phase, elapsed)
	if recErr := p.record(phase, elapsed); recErr != nil && err == nil {
		err = recErr
	}
	return err
}
