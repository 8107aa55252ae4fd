package lsphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// Handler is the one-method-per-feature facade over a single language's
// lspclient.Client: it applies the manager's uniform per-request timeout,
// demultiplexes notifications into the diagnostics buffer and the message
// sink (or slog when none is installed), and filters known-benign server
// errors. One Handler exists per
// language per import run, owned by a Manager.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Handler struct {
	client         *lspclient.Client
	config         lspclient.LanguageConfig
	requestTimeout time.Duration

	diagnostics *diagnosticBuffer
	sink        MessageSink
}

// MessageSink receives forwarded window/logMessage and window/showMessage
// notifications after benign-message filtering. The CLI installs no sink,
// so forwarded messages go to the default slog logger at a level matching
// their severity; tests may supply a stub.
type MessageSink interface {
	LogMessage(severity lspclient.MessageType, message string)
}

func newHandler(client *lspclient.Client, config lspclient.LanguageConfig, requestTimeout time.Duration) *Handler {
	h := &Handler{
		client:         client,
		config:         config,
		requestTimeout: requestTimeout,
		diagnostics:    newDiagnosticBuffer(),
	}
	client.OnNotification(h.handleNotification)
	return h
}

// SetMessageSink installs the destination for forwarded server log/show
// messages. Nil disables forwarding (the default).
func (h *Handler) SetMessageSink(sink MessageSink) { h.sink = sink }

// Language returns the language this handler serves.
func (h *Handler) Language() string { return h.client.Language() }

// Capabilities returns the server's advertised capabilities.
func (h *Handler) Capabilities() lspclient.ServerCapabilities { return h.client.Capabilities() }

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}

// =============================================================================
// URI HELPERS
// =============================================================================

// PathToURI converts an absolute file path to a file:// URI, percent-encoding
// reserved characters.
func PathToURI(path string) string {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	u := &url.URL{Scheme: "file", Path: path}
	return u.String()
}

// URIToPath converts a file:// URI back to an absolute file path.
func URIToPath(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return strings.TrimPrefix(uri, "file://")
}

// =============================================================================
// DOCUMENT LIFECYCLE
// =============================================================================

// OpenDocument sends textDocument/didOpen. LanguageId is looked up from the
// server registry by file extension.
func (h *Handler) OpenDocument(ctx context.Context, path, content string) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}
	ext := filepath.Ext(path)
	params := lspclient.DidOpenTextDocumentParams{
		TextDocument: lspclient.TextDocumentItem{
			URI:        PathToURI(path),
			LanguageID: h.config.LanguageIDForExtension(ext),
			Version:    1,
			Text:       content,
		},
	}
	return h.client.Notify("textDocument/didOpen", params)
}

// CloseDocument sends textDocument/didClose.
func (h *Handler) CloseDocument(ctx context.Context, path string) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}
	params := lspclient.DidCloseTextDocumentParams{
		TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
	}
	return h.client.Notify("textDocument/didClose", params)
}

// =============================================================================
// DOCUMENT SYMBOLS
// =============================================================================

// DocumentSymbols requests the hierarchical symbol tree for path. A server
// that answers with the deprecated flat SymbolInformation shape produces
// ErrFlatSymbolInformation, which the importer treats as fatal.
func (h *Handler) DocumentSymbols(ctx context.Context, path string) ([]lspclient.DocumentSymbol, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	ctx, span := startOperationSpan(ctx, "documentSymbols", h.client.Language(), path)
	defer span.End()
	start := time.Now()

	reqCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	params := lspclient.DocumentSymbolParams{
		TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
	}
	resp, err := h.client.Request(reqCtx, "textDocument/documentSymbol", params)
	if err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "documentSymbols", h.client.Language(), time.Since(start), 0, false)
		if isTimeout(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("documentSymbol request: %w", err)
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		setOperationSpanResult(span, 0, true)
		recordOperationMetrics(ctx, "documentSymbols", h.client.Language(), time.Since(start), 0, true)
		return nil, nil
	}

	// A flat SymbolInformation[] reply has a "location" field per element
	// instead of "range"/"selectionRange"; sniff the first element's shape
	// before committing to the hierarchical parse.
	var probe []json.RawMessage
	if err := json.Unmarshal(resp.Result, &probe); err != nil {
		return nil, fmt.Errorf("parse documentSymbol result: %w", err)
	}
	if len(probe) > 0 {
		var shape struct {
			Location json.RawMessage `json:"location"`
			Range    json.RawMessage `json:"range"`
		}
		if err := json.Unmarshal(probe[0], &shape); err == nil && shape.Location != nil && shape.Range == nil {
			return nil, lspclient.ErrFlatSymbolInformation
		}
	}

	var symbols []lspclient.DocumentSymbol
	if err := json.Unmarshal(resp.Result, &symbols); err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "documentSymbols", h.client.Language(), time.Since(start), 0, false)
		return nil, fmt.Errorf("parse documentSymbol result: %w", err)
	}

	setOperationSpanResult(span, len(symbols), true)
	recordOperationMetrics(ctx, "documentSymbols", h.client.Language(), time.Since(start), len(symbols), true)
	return symbols, nil
}

// =============================================================================
// HOVER
// =============================================================================

// goNoPackageMetadataSubstring is a Go-server-specific benign error message:
// hovering over a file gopls has not yet indexed returns this error instead
// of an empty hover result.
const goNoPackageMetadataSubstring = "no package metadata for file"

// Hover returns hover text for the symbol at (line, character), or "" if
// none is available. The Go server's "no package metadata for file" error
// is swallowed as an empty result rather than propagated.
func (h *Handler) Hover(ctx context.Context, path string, line, character int) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("ctx must not be nil")
	}
	caps := h.client.Capabilities()
	if !caps.HasHoverProvider() {
		return "", nil
	}

	ctx, span := startOperationSpan(ctx, "hover", h.client.Language(), path)
	defer span.End()
	start := time.Now()

	reqCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	params := lspclient.TextDocumentPositionParams{
		TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
		Position:     lspclient.Position{Line: line, Character: character},
	}
	resp, err := h.client.Request(reqCtx, "textDocument/hover", params)
	if err != nil {
		if isTimeout(err) {
			setOperationSpanResult(span, 0, true)
			recordOperationMetrics(ctx, "hover", h.client.Language(), time.Since(start), 0, true)
			return "", nil
		}
		if strings.Contains(err.Error(), goNoPackageMetadataSubstring) {
			setOperationSpanResult(span, 0, true)
			recordOperationMetrics(ctx, "hover", h.client.Language(), time.Since(start), 0, true)
			return "", nil
		}
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "hover", h.client.Language(), time.Since(start), 0, false)
		return "", fmt.Errorf("hover request: %w", err)
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		setOperationSpanResult(span, 0, true)
		recordOperationMetrics(ctx, "hover", h.client.Language(), time.Since(start), 0, true)
		return "", nil
	}

	var result lspclient.HoverResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "hover", h.client.Language(), time.Since(start), 0, false)
		return "", fmt.Errorf("parse hover result: %w", err)
	}

	setOperationSpanResult(span, 1, true)
	recordOperationMetrics(ctx, "hover", h.client.Language(), time.Since(start), 1, true)
	return result.Contents.Value, nil
}

// =============================================================================
// POSITION QUERIES (shared generic adaptor)
// =============================================================================

// PositionQueryMethod names the LSP methods addressable by the shared
// definition/declaration/typeDefinition/implementation adaptor.
type PositionQueryMethod string

const (
	MethodDefinition     PositionQueryMethod = "textDocument/definition"
	MethodDeclaration    PositionQueryMethod = "textDocument/declaration"
	MethodTypeDefinition PositionQueryMethod = "textDocument/typeDefinition"
	MethodImplementation PositionQueryMethod = "textDocument/implementation"
)

// PositionQuery issues one of the definition-shaped LSP requests and
// normalizes the Location | LocationLink response shape into a flat
// []lspclient.Location sequence. A per-request timeout truncates the result
// to empty rather than erroring.
func (h *Handler) PositionQuery(ctx context.Context, method PositionQueryMethod, path string, line, character int) ([]lspclient.Location, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	ctx, span := startOperationSpan(ctx, string(method), h.client.Language(), path)
	defer span.End()
	start := time.Now()

	reqCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	params := lspclient.TextDocumentPositionParams{
		TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
		Position:     lspclient.Position{Line: line, Character: character},
	}
	resp, err := h.client.Request(reqCtx, string(method), params)
	if err != nil {
		if isTimeout(err) {
			setOperationSpanResult(span, 0, true)
			recordOperationMetrics(ctx, string(method), h.client.Language(), time.Since(start), 0, true)
			return nil, nil
		}
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, string(method), h.client.Language(), time.Since(start), 0, false)
		return nil, fmt.Errorf("%s request: %w", method, err)
	}

	locations, err := parseLocationResponse(resp.Result)
	if err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, string(method), h.client.Language(), time.Since(start), 0, false)
		return nil, err
	}

	setOperationSpanResult(span, len(locations), true)
	recordOperationMetrics(ctx, string(method), h.client.Language(), time.Since(start), len(locations), true)
	return locations, nil
}

// parseLocationResponse accepts any of: null, a single Location, a single
// LocationLink, an array of Location, or an array of LocationLink.
func parseLocationResponse(data json.RawMessage) ([]lspclient.Location, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	if data[0] == '[' {
		var links []lspclient.LocationLink
		if err := json.Unmarshal(data, &links); err == nil && len(links) > 0 && links[0].TargetURI != "" {
			out := make([]lspclient.Location, len(links))
			for i, l := range links {
				out[i] = lspclient.Location{URI: l.TargetURI, Range: l.TargetSelectionRange}
			}
			return out, nil
		}
		var locations []lspclient.Location
		if err := json.Unmarshal(data, &locations); err == nil {
			return locations, nil
		}
		return nil, lspclient.ErrInvalidResponse
	}

	var single lspclient.Location
	if err := json.Unmarshal(data, &single); err == nil && single.URI != "" {
		return []lspclient.Location{single}, nil
	}

	var link lspclient.LocationLink
	if err := json.Unmarshal(data, &link); err == nil && link.TargetURI != "" {
		return []lspclient.Location{{URI: link.TargetURI, Range: link.TargetSelectionRange}}, nil
	}

	return nil, lspclient.ErrInvalidResponse
}

// =============================================================================
// REFERENCES
// =============================================================================

// References finds all references to the symbol at (line, character).
func (h *Handler) References(ctx context.Context, path string, line, character int, includeDeclaration bool) ([]lspclient.Location, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	ctx, span := startOperationSpan(ctx, "references", h.client.Language(), path)
	defer span.End()
	start := time.Now()

	reqCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	params := lspclient.ReferenceParams{
		TextDocumentPositionParams: lspclient.TextDocumentPositionParams{
			TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
			Position:     lspclient.Position{Line: line, Character: character},
		},
		Context: lspclient.ReferenceContext{IncludeDeclaration: includeDeclaration},
	}
	resp, err := h.client.Request(reqCtx, "textDocument/references", params)
	if err != nil {
		if isTimeout(err) {
			setOperationSpanResult(span, 0, true)
			recordOperationMetrics(ctx, "references", h.client.Language(), time.Since(start), 0, true)
			return nil, nil
		}
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "references", h.client.Language(), time.Since(start), 0, false)
		return nil, fmt.Errorf("references request: %w", err)
	}

	locations, err := parseLocationResponse(resp.Result)
	if err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "references", h.client.Language(), time.Since(start), 0, false)
		return nil, err
	}

	setOperationSpanResult(span, len(locations), true)
	recordOperationMetrics(ctx, "references", h.client.Language(), time.Since(start), len(locations), true)
	return locations, nil
}

// =============================================================================
// CALL HIERARCHY
// =============================================================================

// OutgoingCalls performs callHierarchy/prepare at (line, character), keeps
// only the prepared item(s) whose selection range starts on that line (the
// character is not compared), then queries
// callHierarchy/outgoingCalls for each, returning a flat list of callee
// items. Some servers mis-marshal the outgoingCalls params when sent
// through typed helpers, so the request is issued with a raw map instead
// of the typed CallHierarchyOutgoingCallsParams.
func (h *Handler) OutgoingCalls(ctx context.Context, path string, line, character int) ([]lspclient.CallHierarchyItem, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	caps := h.client.Capabilities()
	if !caps.HasCallHierarchyProvider() {
		return nil, nil
	}

	ctx, span := startOperationSpan(ctx, "outgoingCalls", h.client.Language(), path)
	defer span.End()
	start := time.Now()

	prepareCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	prepareParams := lspclient.CallHierarchyPrepareParams{
		TextDocumentPositionParams: lspclient.TextDocumentPositionParams{
			TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
			Position:     lspclient.Position{Line: line, Character: character},
		},
	}
	resp, err := h.client.Request(prepareCtx, "textDocument/prepareCallHierarchy", prepareParams)
	if err != nil {
		// prepare failures warn and continue per the cancellation/timeout policy.
		slog.Warn("callHierarchy/prepare failed", slog.String("path", path), slog.String("error", err.Error()))
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "outgoingCalls", h.client.Language(), time.Since(start), 0, false)
		return nil, nil
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		setOperationSpanResult(span, 0, true)
		recordOperationMetrics(ctx, "outgoingCalls", h.client.Language(), time.Since(start), 0, true)
		return nil, nil
	}

	var items []lspclient.CallHierarchyItem
	if err := json.Unmarshal(resp.Result, &items); err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "outgoingCalls", h.client.Language(), time.Since(start), 0, false)
		return nil, fmt.Errorf("parse prepareCallHierarchy result: %w", err)
	}

	var out []lspclient.CallHierarchyItem
	for _, item := range items {
		if item.SelectionRange.Start.Line != line {
			continue
		}

		callCtx, callCancel := h.withTimeout(ctx)
		// Raw map bypasses a known server marshaling bug in the typed
		// CallHierarchyOutgoingCallsParams wrapper.
		rawParams := map[string]interface{}{"item": item}
		callResp, err := h.client.Request(callCtx, "callHierarchy/outgoingCalls", rawParams)
		callCancel()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			slog.Warn("callHierarchy/outgoingCalls failed", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		if len(callResp.Result) == 0 || string(callResp.Result) == "null" {
			continue
		}

		var calls []lspclient.CallHierarchyOutgoingCall
		if err := json.Unmarshal(callResp.Result, &calls); err != nil {
			continue
		}
		for _, c := range calls {
			out = append(out, c.To)
		}
	}

	setOperationSpanResult(span, len(out), true)
	recordOperationMetrics(ctx, "outgoingCalls", h.client.Language(), time.Since(start), len(out), true)
	return out, nil
}

// =============================================================================
// TYPE HIERARCHY
// =============================================================================

// Supertypes performs typeHierarchy/prepare at (line, character) followed
// by typeHierarchy/supertypes for each matching prepared item, analogous to
// OutgoingCalls.
func (h *Handler) Supertypes(ctx context.Context, path string, line, character int) ([]lspclient.TypeHierarchyItem, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	caps := h.client.Capabilities()
	if !caps.HasTypeHierarchyProvider() {
		return nil, nil
	}

	ctx, span := startOperationSpan(ctx, "supertypes", h.client.Language(), path)
	defer span.End()
	start := time.Now()

	prepareCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	prepareParams := lspclient.TypeHierarchyPrepareParams{
		TextDocumentPositionParams: lspclient.TextDocumentPositionParams{
			TextDocument: lspclient.TextDocumentIdentifier{URI: PathToURI(path)},
			Position:     lspclient.Position{Line: line, Character: character},
		},
	}
	resp, err := h.client.Request(prepareCtx, "textDocument/prepareTypeHierarchy", prepareParams)
	if err != nil {
		slog.Warn("typeHierarchy/prepare failed", slog.String("path", path), slog.String("error", err.Error()))
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "supertypes", h.client.Language(), time.Since(start), 0, false)
		return nil, nil
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		setOperationSpanResult(span, 0, true)
		recordOperationMetrics(ctx, "supertypes", h.client.Language(), time.Since(start), 0, true)
		return nil, nil
	}

	var items []lspclient.TypeHierarchyItem
	if err := json.Unmarshal(resp.Result, &items); err != nil {
		setOperationSpanResult(span, 0, false)
		recordOperationMetrics(ctx, "supertypes", h.client.Language(), time.Since(start), 0, false)
		return nil, fmt.Errorf("parse prepareTypeHierarchy result: %w", err)
	}

	var out []lspclient.TypeHierarchyItem
	for _, item := range items {
		if item.SelectionRange.Start.Line != line {
			continue
		}

		superCtx, superCancel := h.withTimeout(ctx)
		params := lspclient.TypeHierarchySupertypesParams{Item: item}
		superResp, err := h.client.Request(superCtx, "typeHierarchy/supertypes", params)
		superCancel()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			slog.Warn("typeHierarchy/supertypes failed", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		if len(superResp.Result) == 0 || string(superResp.Result) == "null" {
			continue
		}

		var supers []lspclient.TypeHierarchyItem
		if err := json.Unmarshal(superResp.Result, &supers); err != nil {
			continue
		}
		out = append(out, supers...)
	}

	setOperationSpanResult(span, len(out), true)
	recordOperationMetrics(ctx, "supertypes", h.client.Language(), time.Since(start), len(out), true)
	return out, nil
}

// isTimeout reports whether err resulted from the per-request timeout
// expiring, as opposed to a genuine server- or transport-level error.
func isTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), "timeout")
}
