package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uni-bremen-agst/LSP2GXL/internal/importer"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// optionsValidate is the shared validator instance for Options. Initialized
// in init() with the registry-membership custom rule.
var optionsValidate *validator.Validate

func init() {
	optionsValidate = validator.New()
	_ = optionsValidate.RegisterValidation("knownserver", validateKnownServer)
}

// validateKnownServer checks that the --lsp-server flag value names a
// registered server (spec §6: "required --lsp-server (one of the
// registered names)").
func validateKnownServer(fl validator.FieldLevel) bool {
	_, ok := lspclient.NewConfigRegistry().Get(fl.Field().String())
	return ok
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options is the validated, parsed form of every lsp2gxl flag. Command
// flags populate it directly; runImport never reads *cobra.Command.
type Options struct {
	ProjectRoot string `validate:"required,dir"`
	LSPServer   string `validate:"required,knownserver"`

	OutputPath string `validate:"required"`
	Overwrite  bool

	IncludeDirs []string
	ExcludeDirs []string
	UseGitignore bool

	NodeKinds  []string
	EdgeKinds  []string
	Severities []string

	AvoidSelfReferences   bool
	AvoidParentReferences bool

	ParallelTasks  int `validate:"omitempty,gte=1"`
	RequestTimeout time.Duration `validate:"omitempty,gt=0"`
	Unoptimised    bool
	PerfCSVPath    string

	LogDir  string
	Verbose bool
	JSONLog bool
	Quiet   bool
	NoColor bool

	TraceExporter  string `validate:"oneof=otlp stdout none"`
	MetricExporter string `validate:"oneof=prometheus stdout none"`
	OTLPEndpoint   string
}

// Validate runs struct-tag validation and the setup-error checks spec §7
// lists as fatal-before-import: a missing project root is caught by the
// "dir" tag; an existing output file without --overwrite is checked here
// since it depends on two fields together.
func (o Options) Validate() error {
	if err := optionsValidate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if !o.Overwrite {
		if _, err := os.Stat(o.OutputPath); err == nil {
			return fmt.Errorf("output file %q already exists (use --overwrite)", o.OutputPath)
		}
	}
	return nil
}

// ToImporterConfig maps validated Options onto importer.Config. Any flag
// left at its zero value (empty kind lists, zero timeouts) falls back to
// importer.DefaultConfig's permissive "everything enabled" behavior.
func (o Options) ToImporterConfig() importer.Config {
	cfg := importer.DefaultConfig(o.ProjectRoot)
	cfg.IncludeDirs = o.IncludeDirs
	cfg.ExcludeDirs = o.ExcludeDirs
	cfg.UseGitignore = o.UseGitignore
	cfg.AvoidSelfReferences = o.AvoidSelfReferences
	cfg.AvoidParentReferences = o.AvoidParentReferences
	cfg.Unoptimised = o.Unoptimised
	cfg.PerfCSVPath = o.PerfCSVPath

	if o.ParallelTasks > 0 {
		cfg.ParallelTasks = o.ParallelTasks
	}
	if o.RequestTimeout > 0 {
		cfg.RequestTimeout = o.RequestTimeout
	}

	if len(o.NodeKinds) > 0 {
		cfg.NodeKinds = make(map[string]bool, len(o.NodeKinds))
		for _, k := range o.NodeKinds {
			cfg.NodeKinds[k] = true
		}
	}
	if len(o.EdgeKinds) > 0 {
		cfg.EdgeKinds = make(map[importer.EdgeKind]bool, len(o.EdgeKinds))
		for _, k := range o.EdgeKinds {
			cfg.EdgeKinds[importer.EdgeKind(k)] = true
		}
	}
	if len(o.Severities) > 0 {
		cfg.DiagnosticSeverities = make(map[lspclient.DiagnosticSeverity]bool, len(o.Severities))
		for _, s := range o.Severities {
			if sev, ok := severityByName[s]; ok {
				cfg.DiagnosticSeverities[sev] = true
			}
		}
	}
	return cfg
}

// severityByName maps the CLI's lowercase severity names onto
// lspclient.DiagnosticSeverity, the inverse of DiagnosticSeverity.String's
// capitalised form.
var severityByName = map[string]lspclient.DiagnosticSeverity{
	"error":       lspclient.DiagnosticSeverityError,
	"warning":     lspclient.DiagnosticSeverityWarning,
	"information": lspclient.DiagnosticSeverityInformation,
	"hint":        lspclient.DiagnosticSeverityHint,
}
