package importer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("lsp2gxl.importer")
	meter  = otel.Meter("lsp2gxl.importer")
)

var (
	phaseLatency metric.Float64Histogram
	nodesCreated metric.Int64Counter
	edgesCreated metric.Int64Counter
	nodeErrors   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		phaseLatency, err = meter.Float64Histogram(
			"importer_phase_duration_seconds",
			metric.WithDescription("Duration of each importer pipeline phase"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesCreated, err = meter.Int64Counter(
			"importer_nodes_created_total",
			metric.WithDescription("Total number of graph nodes created"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesCreated, err = meter.Int64Counter(
			"importer_edges_created_total",
			metric.WithDescription("Total number of graph edges created"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodeErrors, err = meter.Int64Counter(
			"importer_node_errors_total",
			metric.WithDescription("Total number of per-node exceptions absorbed during the node phase"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startPhaseSpan(ctx context.Context, phase string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Importer."+phase, trace.WithAttributes(
		attribute.String("importer.phase", phase),
	))
}

func recordPhaseMetrics(ctx context.Context, phase string, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	phaseLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}

func recordNodeCreated(ctx context.Context, kind string) {
	if err := initMetrics(); err != nil {
		return
	}
	nodesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func recordEdgeCreated(ctx context.Context, kind EdgeKind) {
	if err := initMetrics(); err != nil {
		return
	}
	edgesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func recordNodeError(ctx context.Context, phase string) {
	if err := initMetrics(); err != nil {
		return
	}
	nodeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}
