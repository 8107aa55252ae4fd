package lspclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// =============================================================================
// CLIENT STATE
// =============================================================================

// ClientState represents the lifecycle state of a spawned LSP server process.
type ClientState int

const (
	// ClientStateUninitialized is the initial state before Start is called.
	ClientStateUninitialized ClientState = iota

	// ClientStateStarting means the process has been spawned and the
	// initialize handshake (including the post-initialize progress-burst
	// wait) is in flight.
	ClientStateStarting

	// ClientStateReady means the server is initialized and ready for requests.
	ClientStateReady

	// ClientStateStopping means the client is shutting down.
	ClientStateStopping

	// ClientStateStopped means the process has terminated.
	ClientStateStopped
)

// String returns a human-readable state name.
func (s ClientState) String() string {
	names := []string{"uninitialized", "starting", "ready", "stopping", "stopped"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// progressBurstSettle is how long the client waits with no active or newly
// created work-done progress tokens before declaring the server ready.
const progressBurstSettle = 500 * time.Millisecond

// =============================================================================
// CLIENT
// =============================================================================

// Client owns one spawned LSP server subprocess: its pipes, the JSON-RPC
// Protocol framing them, and the initialize/shutdown handshake. It is the
// lowest layer of the LSP stack; lsphandler.Handler builds the
// one-method-per-feature facade on top of it.
//
// Thread Safety:
//
//	Safe for concurrent use after Start() returns successfully.
type Client struct {
	config   LanguageConfig
	rootPath string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	protocol     *Protocol
	capabilities ServerCapabilities

	state   ClientState
	stateMu sync.RWMutex

	ctx      context.Context
	cancel   context.CancelFunc
	readDone chan struct{}

	lastUsed   time.Time
	lastUsedMu sync.Mutex

	progress progressTracker

	notifyMu sync.RWMutex
	onNotify func(method string, params json.RawMessage)
}

// progressTracker records the set of open work-done progress tokens so
// Start can detect the end of a server's initial progress burst: all
// observed tokens have ended, and no new token has been created for
// progressBurstSettle.
type progressTracker struct {
	mu        sync.Mutex
	open      map[string]bool
	lastEvent time.Time
}

func (t *progressTracker) begin(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open == nil {
		t.open = make(map[string]bool)
	}
	t.open[token] = true
	t.lastEvent = time.Now()
}

func (t *progressTracker) end(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.open, token)
	t.lastEvent = time.Now()
}

// settled reports whether no tokens are open and the last event was at
// least progressBurstSettle ago (or no event was ever observed).
func (t *progressTracker) settled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.open) > 0 {
		return false
	}
	return t.lastEvent.IsZero() || time.Since(t.lastEvent) >= progressBurstSettle
}

// NewClient creates a new client instance (not started).
//
// Inputs:
//
//	config - Language configuration for the server, sourced from the registry
//	rootPath - Absolute path to the workspace root
func NewClient(config LanguageConfig, rootPath string) *Client {
	return &Client{
		config:   config,
		rootPath: rootPath,
		state:    ClientStateUninitialized,
		readDone: make(chan struct{}),
		lastUsed: time.Now(),
	}
}

// Start spawns the process, performs the initialize handshake, and waits
// for the server's initial work-done progress burst to settle before
// returning.
//
// Inputs:
//
//	ctx - Context for cancellation and the initialize request's timeout
//	requestTimeout - The handler's uniform per-request timeout; the
//	  progress-burst wait gives up (without error) after 8x this duration,
//	  since some servers never announce progress at all. Zero disables
//	  the wait entirely.
//
// Errors:
//
//	ErrServerNotInstalled - Server binary not found
//	ErrServerAlreadyStarted - Start called on a non-uninitialized client
//	ErrInitializeFailed - LSP initialize handshake failed
func (c *Client) Start(ctx context.Context, requestTimeout time.Duration) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}

	c.stateMu.Lock()
	if c.state != ClientStateUninitialized {
		c.stateMu.Unlock()
		return ErrServerAlreadyStarted
	}
	c.state = ClientStateStarting
	c.stateMu.Unlock()

	path, err := exec.LookPath(c.config.Command)
	if err != nil {
		c.setState(ClientStateStopped)
		slog.Warn("LSP server not installed",
			slog.String("language", c.config.Language),
			slog.String("command", c.config.Command),
		)
		return fmt.Errorf("%w: %s", ErrServerNotInstalled, c.config.Command)
	}

	slog.Info("starting LSP server",
		slog.String("language", c.config.Language),
		slog.String("command", path),
		slog.String("root_path", c.rootPath),
	)

	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.cmd = exec.CommandContext(c.ctx, path, c.config.Args...)
	c.cmd.Dir = c.rootPath

	c.stdin, err = c.cmd.StdinPipe()
	if err != nil {
		c.cleanup()
		return fmt.Errorf("stdin pipe: %w", err)
	}

	c.stdout, err = c.cmd.StdoutPipe()
	if err != nil {
		c.cleanup()
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := c.cmd.Start(); err != nil {
		c.cleanup()
		return fmt.Errorf("start process: %w", err)
	}

	c.protocol = NewProtocol(c.stdout, c.stdin)
	c.protocol.OnNotification(c.handleBuiltinNotification)

	go func() {
		defer close(c.readDone)
		_ = c.protocol.ReadLoop(c.ctx)
	}()

	if err := c.initialize(ctx); err != nil {
		c.Shutdown(ctx)
		return fmt.Errorf("%w: %v", ErrInitializeFailed, err)
	}

	c.awaitProgressBurst(requestTimeout)

	c.setState(ClientStateReady)
	c.touchLastUsed()

	slog.Info("LSP server ready",
		slog.String("language", c.config.Language),
		slog.Bool("documentSymbol", c.capabilities.HasDocumentSymbolProvider()),
		slog.Bool("definition", c.capabilities.HasDefinitionProvider()),
		slog.Bool("references", c.capabilities.HasReferencesProvider()),
		slog.Bool("callHierarchy", c.capabilities.HasCallHierarchyProvider()),
		slog.Bool("typeHierarchy", c.capabilities.HasTypeHierarchyProvider()),
	)

	return nil
}

// awaitProgressBurst blocks until the progress tracker settles or the
// 8x-requestTimeout budget is exhausted. Giving up is not an error: many
// servers never send work-done progress at all.
func (c *Client) awaitProgressBurst(requestTimeout time.Duration) {
	if requestTimeout <= 0 {
		return
	}
	deadline := time.Now().Add(8 * requestTimeout)
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		if c.progress.settled() {
			return
		}
		if time.Now().After(deadline) {
			slog.Debug("giving up on work-done progress burst detection",
				slog.String("language", c.config.Language))
			return
		}
		<-ticker.C
	}
}

// handleBuiltinNotification intercepts $/progress to feed the burst
// detector; everything else is forwarded to a handler-supplied callback.
func (c *Client) handleBuiltinNotification(method string, params json.RawMessage) {
	if method == "$/progress" {
		var p struct {
			Token interface{}      `json:"token"`
			Value WorkDoneProgress `json:"value"`
		}
		if err := json.Unmarshal(params, &p); err == nil {
			token := fmt.Sprintf("%v", p.Token)
			switch p.Value.Kind {
			case "begin":
				c.progress.begin(token)
			case "end":
				c.progress.end(token)
			}
		}
	}

	c.notifyMu.RLock()
	fn := c.onNotify
	c.notifyMu.RUnlock()
	if fn != nil {
		fn(method, params)
	}
}

// OnNotification registers the callback the Handler layer uses to receive
// every server notification (diagnostics, log/show message, progress).
func (c *Client) OnNotification(fn func(method string, params json.RawMessage)) {
	c.notifyMu.Lock()
	c.onNotify = fn
	c.notifyMu.Unlock()
}

// initialize performs the LSP initialize handshake.
func (c *Client) initialize(ctx context.Context) error {
	params := InitializeParams{
		ProcessID: os.Getpid(),
		RootURI:   "file://" + c.rootPath,
		RootPath:  c.rootPath,
		Capabilities: ClientCapabilities{
			TextDocument: TextDocumentClientCapabilities{
				Synchronization: &TextDocumentSyncClientCapabilities{DidSave: true},
				DocumentSymbol: &DocumentSymbolCapabilities{
					HierarchicalDocumentSymbolSupport: true,
					SymbolKind: &SymbolKindCapabilities{ValueSet: allSymbolKinds()},
					TagSupport: &TagSupportCapabilities{ValueSet: []SymbolTag{SymbolTagDeprecated}},
				},
				Definition:     &DefinitionCapabilities{},
				Declaration:    &DefinitionCapabilities{},
				TypeDefinition: &DefinitionCapabilities{},
				Implementation: &DefinitionCapabilities{},
				References:     &ReferencesCapabilities{},
				Hover: &HoverCapabilities{
					ContentFormat: []string{"markdown", "plaintext"},
				},
				CallHierarchy: &DynamicRegistrationCapabilities{},
				TypeHierarchy: &DynamicRegistrationCapabilities{},
				PublishDiagnostics: &PublishDiagnosticsCapabilities{
					RelatedInformation: true,
					TagSupport:         &TagSupportCapabilities{ValueSet: []SymbolTag{SymbolTagDeprecated}},
				},
				SemanticTokens: &SemanticTokensCapabilities{
					TokenTypes:     semanticTokenTypes,
					TokenModifiers: semanticTokenModifiers,
				},
			},
			Workspace: WorkspaceClientCapabilities{
				WorkspaceFolders: false,
			},
			Window: WindowClientCapabilities{
				WorkDoneProgress: true,
			},
		},
		WorkspaceFolders: []WorkspaceFolder{
			{URI: "file://" + c.rootPath, Name: "workspace"},
		},
	}

	if c.config.InitializationOptions != nil {
		params.InitializationOptions = c.config.InitializationOptions
	}

	resp, err := c.protocol.SendRequest(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("initialize request: %w", err)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return fmt.Errorf("parse initialize result: %w", err)
	}

	c.capabilities = result.Capabilities

	if err := c.protocol.SendNotification("initialized", struct{}{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}

	return nil
}

// bypassShutdownHandshake names servers known to block indefinitely on a
// graceful "shutdown" request/"exit" notification exchange; for these the
// process is terminated directly instead.
var bypassShutdownHandshake = map[string]bool{
	"typescript-language-server": true,
	"pyright-langserver":         true,
}

// Shutdown gracefully shuts down the client. Safe to call multiple times.
func (c *Client) Shutdown(ctx context.Context) error {
	c.stateMu.Lock()
	if c.state == ClientStateStopped || c.state == ClientStateStopping {
		c.stateMu.Unlock()
		return nil
	}
	c.state = ClientStateStopping
	c.stateMu.Unlock()

	slog.Info("shutting down LSP server", slog.String("language", c.config.Language))

	defer c.cleanup()

	if c.protocol != nil && !bypassShutdownHandshake[c.config.Command] {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, _ = c.protocol.SendRequest(shutdownCtx, "shutdown", nil)
		_ = c.protocol.SendNotification("exit", nil)
	}
	if c.protocol != nil {
		c.protocol.Close()
	}

	if c.stdin != nil {
		_ = c.stdin.Close()
	}

	if c.cmd != nil && c.cmd.Process != nil {
		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()

		select {
		case <-time.After(5 * time.Second):
			_ = c.cmd.Process.Kill()
			<-done
		case <-done:
		}
	}

	if c.cancel != nil {
		c.cancel()
	}

	select {
	case <-c.readDone:
	case <-time.After(time.Second):
	}

	return nil
}

// cleanup releases resources and sets state to stopped.
func (c *Client) cleanup() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	if c.stdout != nil {
		_ = c.stdout.Close()
	}
	c.setState(ClientStateStopped)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current client state.
func (c *Client) State() ClientState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Language returns the language this client handles.
func (c *Client) Language() string { return c.config.Language }

// RootPath returns the workspace root path.
func (c *Client) RootPath() string { return c.rootPath }

// Capabilities returns the capabilities reported during initialization.
func (c *Client) Capabilities() ServerCapabilities { return c.capabilities }

// LastUsed returns when the client was last used.
func (c *Client) LastUsed() time.Time {
	c.lastUsedMu.Lock()
	defer c.lastUsedMu.Unlock()
	return c.lastUsed
}

// =============================================================================
// REQUEST METHODS
// =============================================================================

// Request sends an LSP request and waits for the response.
func (c *Client) Request(ctx context.Context, method string, params interface{}) (*Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if c.State() != ClientStateReady {
		return nil, ErrServerNotRunning
	}
	c.touchLastUsed()
	return c.protocol.SendRequest(ctx, method, params)
}

// Notify sends an LSP notification (fire-and-forget).
func (c *Client) Notify(method string, params interface{}) error {
	if c.State() != ClientStateReady {
		return ErrServerNotRunning
	}
	c.touchLastUsed()
	return c.protocol.SendNotification(method, params)
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func (c *Client) setState(state ClientState) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

func (c *Client) touchLastUsed() {
	c.lastUsedMu.Lock()
	c.lastUsed = time.Now()
	c.lastUsedMu.Unlock()
}

func allSymbolKinds() []SymbolKind {
	kinds := make([]SymbolKind, 0, 26)
	for k := SymbolKindFile; k <= SymbolKindTypeParameter; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

var semanticTokenTypes = []string{
	"namespace", "type", "class", "enum", "interface", "struct", "typeParameter",
	"parameter", "variable", "property", "enumMember", "event", "function",
	"method", "macro", "keyword", "modifier", "comment", "string", "number",
	"regexp", "operator", "decorator",
}

var semanticTokenModifiers = []string{
	"declaration", "definition", "readonly", "static", "deprecated", "abstract",
	"async", "modification", "documentation", "defaultLibrary",
}
