// Command lsp2gxl drives a language server against a project tree and
// writes the resulting cross-reference graph as a GXL file (spec §6).
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/uni-bremen-agst/LSP2GXL/internal/ux"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// exitCode is set by runImport's RunE before returning: 0 on a clean run,
// 1 if the trace listener saw at least one Error-level message even though
// the importer itself returned no error (spec §6, §7 propagation policy).
var exitCode int

var opts Options

var rootCmd = &cobra.Command{
	Use:   "lsp2gxl <project-root>",
	Short: "Build a GXL cross-reference graph from a project using its language server",
	Long: `lsp2gxl drives an LSP server against a project tree, discovering
source files, reifying their document symbols into graph nodes, and
querying definition/reference/call/type relations to build graph edges.
The result is written as a GXL (Graph eXchange Language) file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.ProjectRoot = args[0]
		if opts.NoColor {
			ux.SetPlain(true)
		}
		if err := opts.Validate(); err != nil {
			return err
		}
		return runImport(cmd.Context(), opts)
	},
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVar(&opts.LSPServer, "lsp-server", "", "registered language server to use (required)")
	_ = rootCmd.MarkFlagRequired("lsp-server")

	flags.StringVarP(&opts.OutputPath, "output", "o", "", "GXL output file path (required)")
	_ = rootCmd.MarkFlagRequired("output")
	flags.BoolVar(&opts.Overwrite, "overwrite", false, "overwrite the output file if it already exists")

	flags.StringSliceVar(&opts.IncludeDirs, "include", nil, "project-relative directories to restrict discovery to")
	flags.StringSliceVar(&opts.ExcludeDirs, "exclude", nil, "paths (prefix or trailing-$ regexp) to exclude from discovery")
	flags.BoolVar(&opts.UseGitignore, "use-gitignore", false, "additionally skip paths matched by .gitignore")

	flags.StringSliceVar(&opts.NodeKinds, "node-kinds", nil, "graph node kinds to build (default: all)")
	flags.StringSliceVar(&opts.EdgeKinds, "edge-kinds", nil, "edge kinds to query (default: all)")
	flags.StringSliceVar(&opts.Severities, "diagnostic-severities", nil, "diagnostic severities to count: error,warning,information,hint (default: all)")

	flags.BoolVar(&opts.AvoidSelfReferences, "avoid-self-references", false, "drop edges whose source equals its target")
	flags.BoolVar(&opts.AvoidParentReferences, "avoid-parent-references", false, "drop edges whose target is the source's own parent")

	flags.IntVar(&opts.ParallelTasks, "parallel-tasks", 0, "concurrent edge-phase tasks (default: importer default)")
	flags.DurationVar(&opts.RequestTimeout, "request-timeout", 0, "per-LSP-request timeout (default: importer default)")
	flags.BoolVar(&opts.Unoptimised, "unoptimised", false, "use the linear lookup path instead of the interval tree")
	flags.StringVar(&opts.PerfCSVPath, "perf-csv", "", "append one '<phase>,<milliseconds>' line per phase to this file")

	flags.StringVar(&opts.LogDir, "log-dir", "", "additionally write JSON logs to this directory")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug-level logging")
	flags.BoolVar(&opts.JSONLog, "json-log", false, "format stderr logs as JSON")
	flags.BoolVar(&opts.Quiet, "quiet", false, "suppress stderr logging")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable styled terminal output")

	flags.StringVar(&opts.TraceExporter, "trace-exporter", "stdout", "tracing exporter: otlp, stdout, or none")
	flags.StringVar(&opts.MetricExporter, "metric-exporter", "none", "metrics exporter: prometheus, stdout, or none")
	flags.StringVar(&opts.OTLPEndpoint, "otlp-endpoint", "localhost:4317", "OTLP collector endpoint, used when --trace-exporter=otlp")
}
