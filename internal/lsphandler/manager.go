// Package lsphandler is the high-level facade over internal/lspclient: one
// Manager per import run, spawning at most one Client per language, with a
// single uniform request timeout, notification demultiplexing into
// diagnostics/log streams, and benign-error filtering.
package lsphandler

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
)

// =============================================================================
// MANAGER CONFIG
// =============================================================================

// ManagerConfig configures the handler manager.
type ManagerConfig struct {
	// IdleTimeout is how long a server can be idle before being shut down.
	// Zero disables idle shutdown.
	IdleTimeout time.Duration

	// StartupTimeout bounds the initialize handshake and progress-burst wait.
	StartupTimeout time.Duration

	// RequestTimeout is the uniform per-request timeout applied to every
	// LSP operation issued through a Handler. The progress-burst wait also
	// gives up after 8x this value.
	RequestTimeout time.Duration
}

// DefaultManagerConfig returns sensible defaults for the manager.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		IdleTimeout:    10 * time.Minute,
		StartupTimeout: 30 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns at most one Handler per language for a single workspace root,
// spawning servers lazily and shutting them down on idle or on request.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Manager struct {
	config   ManagerConfig
	rootPath string
	configs  *lspclient.ConfigRegistry

	handlers   map[string]*Handler
	handlersMu sync.RWMutex
	startMu    sync.Map // language -> *sync.Mutex, serializes concurrent spawns

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager for the given workspace root.
func NewManager(rootPath string, config ManagerConfig) *Manager {
	return &Manager{
		config:   config,
		rootPath: rootPath,
		configs:  lspclient.NewConfigRegistry(),
		handlers: make(map[string]*Handler),
		stopped:  make(chan struct{}),
	}
}

// GetOrSpawn returns a ready Handler for the language, starting its server
// if one is not already running.
//
// Errors:
//
//	ErrUnsupportedLanguage - No configuration for the language
//	ErrServerNotInstalled - Server binary not found
//	ErrInitializeFailed - Server initialization failed
func (m *Manager) GetOrSpawn(ctx context.Context, language string) (*Handler, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	select {
	case <-m.stopped:
		return nil, fmt.Errorf("manager is stopped")
	default:
	}

	if h := m.readyHandler(language); h != nil {
		return h, nil
	}

	lockI, _ := m.startMu.LoadOrStore(language, &sync.Mutex{})
	lock := lockI.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	if h := m.readyHandler(language); h != nil {
		return h, nil
	}

	m.handlersMu.Lock()
	if h, ok := m.handlers[language]; ok && h.client.State() == lspclient.ClientStateStopped {
		delete(m.handlers, language)
	}
	m.handlersMu.Unlock()

	config, ok := m.configs.Get(language)
	if !ok {
		return nil, fmt.Errorf("%w: %s", lspclient.ErrUnsupportedLanguage, language)
	}

	client := lspclient.NewClient(config, m.rootPath)

	startCtx := ctx
	if m.config.StartupTimeout > 0 {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithTimeout(ctx, m.config.StartupTimeout)
		defer cancel()
	}

	if err := client.Start(startCtx, m.config.RequestTimeout); err != nil {
		return nil, err
	}

	handler := newHandler(client, config, m.config.RequestTimeout)

	m.handlersMu.Lock()
	m.handlers[language] = handler
	m.handlersMu.Unlock()

	return handler, nil
}

func (m *Manager) readyHandler(language string) *Handler {
	m.handlersMu.RLock()
	defer m.handlersMu.RUnlock()
	h, ok := m.handlers[language]
	if ok && h.client.State() == lspclient.ClientStateReady {
		return h
	}
	return nil
}

// Get returns the running Handler for the language, or nil if none is ready.
// Does not start a new server.
func (m *Manager) Get(language string) *Handler {
	return m.readyHandler(language)
}

// Shutdown shuts down a specific language's server. No-op if none is running.
func (m *Manager) Shutdown(ctx context.Context, language string) error {
	m.handlersMu.Lock()
	h, ok := m.handlers[language]
	if ok {
		delete(m.handlers, language)
	}
	m.handlersMu.Unlock()

	if !ok {
		return nil
	}
	return h.client.Shutdown(ctx)
}

// ShutdownAll shuts down every running server and stops the manager. After
// this call, GetOrSpawn returns an error. Idempotent.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.stopOnce.Do(func() {
		close(m.stopped)
	})

	m.handlersMu.Lock()
	handlers := make(map[string]*Handler, len(m.handlers))
	for lang, h := range m.handlers {
		handlers[lang] = h
	}
	m.handlers = make(map[string]*Handler)
	m.handlersMu.Unlock()

	var lastErr error
	for _, h := range handlers {
		if err := h.client.Shutdown(ctx); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// IsAvailable reports whether language is supported and its server binary
// is present on PATH, without starting it.
func (m *Manager) IsAvailable(language string) bool {
	config, ok := m.configs.Get(language)
	if !ok {
		return false
	}
	_, err := exec.LookPath(config.Command)
	return err == nil
}

// RunningHandlers returns the languages with a currently-ready server.
func (m *Manager) RunningHandlers() []string {
	m.handlersMu.RLock()
	defer m.handlersMu.RUnlock()

	langs := make([]string, 0, len(m.handlers))
	for lang, h := range m.handlers {
		if h.client.State() == lspclient.ClientStateReady {
			langs = append(langs, lang)
		}
	}
	return langs
}

// Config returns the manager configuration.
func (m *Manager) Config() ManagerConfig { return m.config }

// RootPath returns the workspace root path.
func (m *Manager) RootPath() string { return m.rootPath }

// Configs returns the language configuration registry, so callers can
// register additional or overriding server configurations before import.
func (m *Manager) Configs() *lspclient.ConfigRegistry { return m.configs }

// =============================================================================
// IDLE MONITOR
// =============================================================================

// StartIdleMonitor starts a background goroutine that shuts down servers
// idle longer than config.IdleTimeout. No-op if IdleTimeout is zero.
func (m *Manager) StartIdleMonitor() {
	if m.config.IdleTimeout <= 0 {
		return
	}

	go func() {
		interval := m.config.IdleTimeout / 2
		if interval < time.Second {
			interval = time.Second
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopped:
				return
			case <-ticker.C:
				m.shutdownIdle()
			}
		}
	}()
}

func (m *Manager) shutdownIdle() {
	m.handlersMu.RLock()
	var toShutdown []string
	for lang, h := range m.handlers {
		if h.client.State() == lspclient.ClientStateReady && time.Since(h.client.LastUsed()) > m.config.IdleTimeout {
			toShutdown = append(toShutdown, lang)
		}
	}
	m.handlersMu.RUnlock()

	ctx := context.Background()
	for _, lang := range toShutdown {
		slog.Info("shutting down idle LSP server",
			slog.String("language", lang),
			slog.Duration("idle_timeout", m.config.IdleTimeout),
		)
		_ = m.Shutdown(ctx, lang)
	}
}
