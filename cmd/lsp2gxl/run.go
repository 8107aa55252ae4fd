package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/uni-bremen-agst/LSP2GXL/internal/graph"
	"github.com/uni-bremen-agst/LSP2GXL/internal/gxl"
	"github.com/uni-bremen-agst/LSP2GXL/internal/importer"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lsphandler"
	"github.com/uni-bremen-agst/LSP2GXL/internal/telemetry"
	"github.com/uni-bremen-agst/LSP2GXL/internal/trace"
	"github.com/uni-bremen-agst/LSP2GXL/internal/ux"
)

// runImport wires the Manager, Importer, and gxl.Writer together for one
// end-to-end run and sets the package-level exitCode per spec §6/§7: a
// nil return with HadErrors() true still exits 1.
func runImport(ctx context.Context, o Options) error {
	logger := trace.New(trace.Config{
		Level:   verbosity(o),
		LogDir:  o.LogDir,
		Service: "lsp2gxl",
		JSON:    o.JSONLog,
		Quiet:   o.Quiet,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceVersion: "dev",
		TraceExporter:  o.TraceExporter,
		MetricExporter: o.MetricExporter,
		OTLPEndpoint:   o.OTLPEndpoint,
		OTLPInsecure:   true,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	manager := lsphandler.NewManager(o.ProjectRoot, lsphandler.DefaultManagerConfig())
	defer func() {
		if err := manager.ShutdownAll(context.Background()); err != nil {
			logger.Warn("lsp server shutdown failed", "error", err)
		}
	}()

	ux.Title(fmt.Sprintf("lsp2gxl: importing %s with %s", o.ProjectRoot, o.LSPServer))

	handler, err := manager.GetOrSpawn(ctx, o.LSPServer)
	if err != nil {
		return fmt.Errorf("start language server: %w", err)
	}

	imp := importer.NewImporter(o.ToImporterConfig(), handler)
	g, err := imp.Run(ctx)
	if err != nil {
		if errors.Is(err, importer.ErrNoFilesDiscovered) || errors.Is(err, importer.ErrProjectRootMissing) {
			return err
		}
		return fmt.Errorf("import run: %w", err)
	}

	if err := writeGXL(o.OutputPath, g); err != nil {
		return fmt.Errorf("write gxl output: %w", err)
	}

	ux.Success(fmt.Sprintf("wrote %d nodes, %d edges to %s", g.NodeCount(), g.EdgeCount(), o.OutputPath))

	if logger.HadErrors() {
		exitCode = 1
	}
	return nil
}

// writeGXL creates (or truncates) path and serialises g into it.
func writeGXL(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gxl.Write(f, g)
}

func verbosity(o Options) trace.Level {
	if o.Verbose {
		return trace.LevelDebug
	}
	return trace.LevelInfo
}
