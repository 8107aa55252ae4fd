package importer

import "errors"

// Sentinel errors for the import pipeline. See spec §7's error-kind table:
// these back the "setup error" and "output write failure" kinds, which are
// fatal; "per-node exception" and "LSP timeout" kinds are logged and
// swallowed deeper in the pipeline instead of surfacing here.
var (
	// ErrNoFilesDiscovered indicates discovery matched zero files: a setup
	// error, fatal before any node or edge work starts.
	ErrNoFilesDiscovered = errors.New("no files matched the include/exclude configuration")

	// ErrProjectRootMissing indicates the project root does not exist or
	// is not a directory.
	ErrProjectRootMissing = errors.New("project root does not exist or is not a directory")
)
