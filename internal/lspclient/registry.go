package lspclient

import "sync"

// LanguageConfig contains configuration for an LSP server.
//
// Language is the registry's own canonical key and is distinct from
// LanguageID, the identifier put on the wire in TextDocumentItem.LanguageID:
// the registry groups ".ts"/".tsx" under one server and one canonical
// Language ("typescript"), but the two extensions announce different
// LSP language IDs to that server.
type LanguageConfig struct {
	// Language is the registry's canonical name for this configuration
	// (e.g., "go", "python", "typescript").
	Language string

	// Command is the executable name or path.
	Command string

	// Args are command-line arguments to pass to the server.
	Args []string

	// Extensions are file extensions this server handles (e.g., ".go").
	Extensions []string

	// LanguageID is the default wire language identifier sent in
	// TextDocumentItem.LanguageID for files matched by Extensions.
	LanguageID string

	// ExtensionLanguageIDs overrides LanguageID for specific extensions,
	// for servers where one process answers for several wire language IDs
	// (e.g. typescript-language-server serving both "typescript" and
	// "typescriptreact").
	ExtensionLanguageIDs map[string]string

	// RootFiles are files that indicate a project root (e.g., "go.mod").
	RootFiles []string

	// InfoURL is an informational link to the server's homepage or
	// documentation, surfaced by the CLI when a server cannot be found.
	InfoURL string

	// InitializationOptions are custom options passed during initialize.
	InitializationOptions interface{}
}

// LanguageIDForExtension returns the wire language ID to announce for a
// file with the given extension under this configuration.
func (c LanguageConfig) LanguageIDForExtension(ext string) string {
	if id, ok := c.ExtensionLanguageIDs[ext]; ok {
		return id
	}
	if c.LanguageID != "" {
		return c.LanguageID
	}
	return c.Language
}

// ConfigRegistry manages LSP configurations for different languages.
//
// Thread Safety: Safe for concurrent use.
type ConfigRegistry struct {
	mu         sync.RWMutex
	byLanguage map[string]LanguageConfig
	byExt      map[string]string // extension -> language
}

// NewConfigRegistry creates a registry with default configurations.
//
// Description:
//
//	Creates a new configuration registry pre-populated with configurations
//	for common languages: Go (gopls), Python (pyright), TypeScript,
//	JavaScript, Rust (rust-analyzer), Java (jdtls), C and C++ (clangd).
//
// Outputs:
//
//	*ConfigRegistry - The configured registry
func NewConfigRegistry() *ConfigRegistry {
	r := &ConfigRegistry{
		byLanguage: make(map[string]LanguageConfig),
		byExt:      make(map[string]string),
	}
	r.registerDefaults()
	return r
}

// registerDefaults adds default language server configurations.
func (r *ConfigRegistry) registerDefaults() {
	// Go - gopls
	r.Register(LanguageConfig{
		Language:   "go",
		Command:    "gopls",
		Args:       []string{"serve"},
		Extensions: []string{".go"},
		LanguageID: "go",
		RootFiles:  []string{"go.mod", "go.sum"},
		InfoURL:    "https://pkg.go.dev/golang.org/x/tools/gopls",
	})

	// Python - pyright
	r.Register(LanguageConfig{
		Language:   "python",
		Command:    "pyright-langserver",
		Args:       []string{"--stdio"},
		Extensions: []string{".py", ".pyi"},
		LanguageID: "python",
		RootFiles:  []string{"pyproject.toml", "requirements.txt", "setup.py"},
		InfoURL:    "https://microsoft.github.io/pyright/",
	})

	// TypeScript
	r.Register(LanguageConfig{
		Language:             "typescript",
		Command:              "typescript-language-server",
		Args:                 []string{"--stdio"},
		Extensions:           []string{".ts", ".tsx"},
		LanguageID:           "typescript",
		ExtensionLanguageIDs: map[string]string{".tsx": "typescriptreact"},
		RootFiles:            []string{"tsconfig.json", "package.json"},
		InfoURL:              "https://github.com/typescript-language-server/typescript-language-server",
	})

	// JavaScript
	r.Register(LanguageConfig{
		Language:             "javascript",
		Command:              "typescript-language-server",
		Args:                 []string{"--stdio"},
		Extensions:           []string{".js", ".jsx", ".mjs", ".cjs"},
		LanguageID:           "javascript",
		ExtensionLanguageIDs: map[string]string{".jsx": "javascriptreact"},
		RootFiles:            []string{"package.json", "jsconfig.json"},
		InfoURL:              "https://github.com/typescript-language-server/typescript-language-server",
	})

	// Rust - rust-analyzer
	r.Register(LanguageConfig{
		Language:   "rust",
		Command:    "rust-analyzer",
		Args:       []string{},
		Extensions: []string{".rs"},
		LanguageID: "rust",
		RootFiles:  []string{"Cargo.toml"},
		InfoURL:    "https://rust-analyzer.github.io/",
	})

	// Java - jdtls
	r.Register(LanguageConfig{
		Language:   "java",
		Command:    "jdtls",
		Args:       []string{},
		Extensions: []string{".java"},
		LanguageID: "java",
		RootFiles:  []string{"pom.xml", "build.gradle", "build.gradle.kts"},
		InfoURL:    "https://github.com/eclipse-jdtls/eclipse.jdt.ls",
	})

	// C/C++ - clangd
	r.Register(LanguageConfig{
		Language:   "c",
		Command:    "clangd",
		Args:       []string{},
		Extensions: []string{".c", ".h"},
		LanguageID: "c",
		RootFiles:  []string{"compile_commands.json", "CMakeLists.txt", "Makefile"},
		InfoURL:    "https://clangd.llvm.org/",
	})

	r.Register(LanguageConfig{
		Language:   "cpp",
		Command:    "clangd",
		Args:       []string{},
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		LanguageID: "cpp",
		RootFiles:  []string{"compile_commands.json", "CMakeLists.txt", "Makefile"},
		InfoURL:    "https://clangd.llvm.org/",
	})
}

// Register adds or updates a language configuration.
//
// Description:
//
//	Registers a language server configuration. If a configuration already
//	exists for the language, it is replaced. Also updates the extension
//	mapping for quick lookups.
//
// Inputs:
//
//	config - The language configuration to register
//
// Thread Safety:
//
//	Safe for concurrent use.
func (r *ConfigRegistry) Register(config LanguageConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[config.Language] = config

	// Update extension mapping
	for _, ext := range config.Extensions {
		r.byExt[ext] = config.Language
	}
}

// Get returns the configuration for a language.
//
// Description:
//
//	Looks up the configuration for the specified language identifier.
//
// Inputs:
//
//	language - The language identifier (e.g., "go", "python")
//
// Outputs:
//
//	LanguageConfig - The configuration (zero value if not found)
//	bool - True if the configuration was found
//
// Thread Safety:
//
//	Safe for concurrent use.
func (r *ConfigRegistry) Get(language string) (LanguageConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.byLanguage[language]
	return config, ok
}

// GetByExtension returns the configuration for a file extension.
//
// Description:
//
//	Looks up the configuration for the language that handles the given
//	file extension.
//
// Inputs:
//
//	ext - The file extension including dot (e.g., ".go", ".py")
//
// Outputs:
//
//	LanguageConfig - The configuration (zero value if not found)
//	bool - True if the configuration was found
//
// Thread Safety:
//
//	Safe for concurrent use.
func (r *ConfigRegistry) GetByExtension(ext string) (LanguageConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lang, ok := r.byExt[ext]
	if !ok {
		return LanguageConfig{}, false
	}
	config, ok := r.byLanguage[lang]
	return config, ok
}

// Languages returns all registered language names.
//
// Description:
//
//	Returns a slice of all language identifiers that have configurations.
//
// Outputs:
//
//	[]string - Language identifiers
//
// Thread Safety:
//
//	Safe for concurrent use.
func (r *ConfigRegistry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		langs = append(langs, lang)
	}
	return langs
}

// Extensions returns all file extensions mapped to a language.
//
// Description:
//
//	Returns a slice of all file extensions that have configurations.
//
// Outputs:
//
//	[]string - File extensions including dots
//
// Thread Safety:
//
//	Safe for concurrent use.
func (r *ConfigRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// LanguageForExtension returns the language identifier for a file extension.
//
// Description:
//
//	Maps a file extension to its language identifier.
//
// Inputs:
//
//	ext - The file extension including dot (e.g., ".go")
//
// Outputs:
//
//	string - The language identifier (empty if not found)
//	bool - True if a mapping was found
//
// Thread Safety:
//
//	Safe for concurrent use.
func (r *ConfigRegistry) LanguageForExtension(ext string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.byExt[ext]
	return lang, ok
}
