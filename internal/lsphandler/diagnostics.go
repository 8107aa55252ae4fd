package lsphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// diagnosticBuffer accumulates the latest textDocument/publishDiagnostics
// push per URI. Servers push diagnostics asynchronously and unprompted;
// the importer drains the buffer once per file after its edge phase
// instead of issuing a pull request, since pull-diagnostics support is not
// trusted across the registered servers (see ServerCapabilities.HasDiagnosticProvider).
type diagnosticBuffer struct {
	mu    sync.Mutex
	byURI map[string][]lspclient.Diagnostic
}

func newDiagnosticBuffer() *diagnosticBuffer {
	return &diagnosticBuffer{byURI: make(map[string][]lspclient.Diagnostic)}
}

func (b *diagnosticBuffer) store(uri string, diags []lspclient.Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byURI[uri] = diags
}

// DrainPushedDiagnostics returns and clears the diagnostics most recently pushed for path,
// or nil if the server has not pushed any for it yet.
func (h *Handler) DrainPushedDiagnostics(path string) []lspclient.Diagnostic {
	uri := PathToURI(path)
	h.diagnostics.mu.Lock()
	defer h.diagnostics.mu.Unlock()
	diags := h.diagnostics.byURI[uri]
	delete(h.diagnostics.byURI, uri)
	return diags
}

// PullDiagnostics issues textDocument/diagnostic directly. Unused by the
// default import pipeline (see HasDiagnosticProvider's doc comment) but
// kept available for servers known to implement pull-diagnostics reliably.
func (h *Handler) PullDiagnostics(ctx context.Context, path string) ([]lspclient.Diagnostic, error) {
	reqCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	params := lspclient.DocumentDiagnosticParams{
		TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
	}
	resp, err := h.client.Request(reqCtx, "textDocument/diagnostic", params)
	if err != nil {
		return nil, err
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, nil
	}

	var report lspclient.DocumentDiagnosticReport
	if err := json.Unmarshal(resp.Result, &report); err != nil {
		return nil, err
	}
	if report.Kind == "unchanged" {
		return nil, nil
	}
	return report.Items, nil
}

// benignLogSubstrings are known-harmless server messages that would
// otherwise spam the trace sink at a misleadingly alarming severity. They
// are logged at debug instead of forwarded at their reported severity.
var benignLogSubstrings = []string{
	"shutting down",
	"connection closed",
	"no package metadata for file", // gopls, before a module has been fully loaded
	"Unable to find metadata for",  // OmniSharp during early didOpen
	"textDocument/didOpen has not been called",
	"context canceled",
}

func isBenignMessage(message string) bool {
	for _, s := range benignLogSubstrings {
		if strings.Contains(message, s) {
			return true
		}
	}
	return false
}

// handleNotification demultiplexes every server->client notification the
// importer cares about: it buffers pushed diagnostics, forwards
// log/show messages (after benign-message filtering) to the installed
// MessageSink, and silently drops everything else ($/progress is already
// consumed by the underlying Client for Ready-state gating).
func (h *Handler) handleNotification(method string, params json.RawMessage) {
	switch method {
	case "textDocument/publishDiagnostics":
		var p lspclient.PublishDiagnosticsParams
		if err := json.Unmarshal(params, &p); err != nil {
			slog.Warn("malformed publishDiagnostics notification", slog.String("error", err.Error()))
			return
		}
		h.diagnostics.store(p.URI, p.Diagnostics)

	case "window/logMessage":
		var p lspclient.LogMessageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		h.forwardMessage(p.Type, p.Message)

	case "window/showMessage":
		var p lspclient.ShowMessageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		h.forwardMessage(p.Type, p.Message)

	case "$/progress", "window/workDoneProgress/cancel":
		// $/progress already consumed by Client for burst detection;
		// cancel requests from the server are not actionable here.

	default:
	}
}

func (h *Handler) forwardMessage(severity lspclient.MessageType, message string) {
	if isBenignMessage(message) {
		slog.Debug("benign server message", slog.String("language", h.client.Language()), slog.String("message", message))
		return
	}
	if h.sink != nil {
		h.sink.LogMessage(severity, message)
		return
	}
	switch severity {
	case lspclient.MessageTypeError:
		slog.Error("lsp server message", slog.String("language", h.client.Language()), slog.String("message", message))
	case lspclient.MessageTypeWarning:
		slog.Warn("lsp server message", slog.String("language", h.client.Language()), slog.String("message", message))
	default:
		slog.Info("lsp server message", slog.String("language", h.client.Language()), slog.String("message", message))
	}
}
