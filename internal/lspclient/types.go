package lspclient

// =============================================================================
// POSITION & RANGE TYPES
// =============================================================================

// Position represents a position in a text document.
// Line and character are 0-indexed per LSP specification.
type Position struct {
	// Line is the 0-indexed line number.
	Line int `json:"line"`

	// Character is the 0-indexed character offset within the line.
	Character int `json:"character"`
}

// Range represents a range in a text document.
type Range struct {
	// Start is the inclusive start position.
	Start Position `json:"start"`

	// End is the exclusive end position.
	End Position `json:"end"`
}

// Location represents a location in a document.
type Location struct {
	// URI is the document URI (file:// scheme).
	URI string `json:"uri"`

	// Range is the range within the document.
	Range Range `json:"range"`
}

// LocationLink represents a link between a source and target location.
//
// Some servers return LocationLink instead of Location for definition,
// declaration, typeDefinition and implementation requests when the client
// advertises linkSupport. This client does not advertise linkSupport but
// parses both shapes defensively since servers vary.
type LocationLink struct {
	// OriginSelectionRange is the span in the source that was used.
	OriginSelectionRange *Range `json:"originSelectionRange,omitempty"`

	// TargetURI is the target document URI.
	TargetURI string `json:"targetUri"`

	// TargetRange is the full range of the target (for highlighting).
	TargetRange Range `json:"targetRange"`

	// TargetSelectionRange is the precise range to reveal. Stored when
	// available; callers that only need containment use TargetRange.
	TargetSelectionRange Range `json:"targetSelectionRange"`
}

// =============================================================================
// DOCUMENT IDENTIFIERS
// =============================================================================

// TextDocumentIdentifier identifies a text document by URI.
type TextDocumentIdentifier struct {
	// URI is the document's URI.
	URI string `json:"uri"`
}

// TextDocumentItem represents a text document with its content.
type TextDocumentItem struct {
	// URI is the document's URI.
	URI string `json:"uri"`

	// LanguageID is the language identifier (e.g., "go", "python").
	LanguageID string `json:"languageId"`

	// Version is the version number of this document.
	Version int `json:"version"`

	// Text is the content of the document.
	Text string `json:"text"`
}

// =============================================================================
// REQUEST PARAMETER TYPES
// =============================================================================

// TextDocumentPositionParams identifies a position in a text document.
type TextDocumentPositionParams struct {
	// TextDocument is the document identifier.
	TextDocument TextDocumentIdentifier `json:"textDocument"`

	// Position is the position within the document.
	Position Position `json:"position"`
}

// DocumentSymbolParams contains params for textDocument/documentSymbol.
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// ReferenceParams extends TextDocumentPositionParams for find references.
type ReferenceParams struct {
	TextDocumentPositionParams

	// Context contains additional context for the request.
	Context ReferenceContext `json:"context"`
}

// ReferenceContext contains options for find references requests.
type ReferenceContext struct {
	// IncludeDeclaration indicates whether to include the declaration.
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// DidOpenTextDocumentParams contains params for textDocument/didOpen.
type DidOpenTextDocumentParams struct {
	// TextDocument is the document that was opened.
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidCloseTextDocumentParams contains params for textDocument/didClose.
type DidCloseTextDocumentParams struct {
	// TextDocument is the document that was closed.
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// HoverResult contains hover information.
type HoverResult struct {
	// Contents is the hover content.
	Contents MarkupContent `json:"contents"`

	// Range is the range this hover applies to.
	Range *Range `json:"range,omitempty"`
}

// MarkupContent represents documentation content.
type MarkupContent struct {
	// Kind is the type of markup: "plaintext" or "markdown".
	Kind string `json:"kind"`

	// Value is the actual content.
	Value string `json:"value"`
}

// SymbolInformation represents the deprecated flat symbol shape some
// servers still return from textDocument/documentSymbol. Its presence on
// a documentSymbol response is treated as a fatal, clearly-named error by
// the handler: it carries no hierarchy, so the importer cannot build a
// nested node tree from it.
type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Tags          []SymbolTag `json:"tags,omitempty"`
	Location      Location   `json:"location"`
	ContainerName string     `json:"containerName,omitempty"`
}

// SymbolKind represents the kind of a symbol.
type SymbolKind int

// Symbol kinds as defined by the LSP specification.
const (
	SymbolKindFile          SymbolKind = 1
	SymbolKindModule        SymbolKind = 2
	SymbolKindNamespace     SymbolKind = 3
	SymbolKindPackage       SymbolKind = 4
	SymbolKindClass         SymbolKind = 5
	SymbolKindMethod        SymbolKind = 6
	SymbolKindProperty      SymbolKind = 7
	SymbolKindField         SymbolKind = 8
	SymbolKindConstructor   SymbolKind = 9
	SymbolKindEnum          SymbolKind = 10
	SymbolKindInterface     SymbolKind = 11
	SymbolKindFunction      SymbolKind = 12
	SymbolKindVariable      SymbolKind = 13
	SymbolKindConstant      SymbolKind = 14
	SymbolKindString        SymbolKind = 15
	SymbolKindNumber        SymbolKind = 16
	SymbolKindBoolean       SymbolKind = 17
	SymbolKindArray         SymbolKind = 18
	SymbolKindObject        SymbolKind = 19
	SymbolKindKey           SymbolKind = 20
	SymbolKindNull          SymbolKind = 21
	SymbolKindEnumMember    SymbolKind = 22
	SymbolKindStruct        SymbolKind = 23
	SymbolKindEvent         SymbolKind = 24
	SymbolKindOperator      SymbolKind = 25
	SymbolKindTypeParameter SymbolKind = 26
)

// String returns the conventional name for the symbol kind, used both as
// the graph node Type and for capability-table lookups.
func (k SymbolKind) String() string {
	names := map[SymbolKind]string{
		SymbolKindFile: "File", SymbolKindModule: "Module", SymbolKindNamespace: "Namespace",
		SymbolKindPackage: "Package", SymbolKindClass: "Class", SymbolKindMethod: "Method",
		SymbolKindProperty: "Property", SymbolKindField: "Field", SymbolKindConstructor: "Constructor",
		SymbolKindEnum: "Enum", SymbolKindInterface: "Interface", SymbolKindFunction: "Function",
		SymbolKindVariable: "Variable", SymbolKindConstant: "Constant", SymbolKindString: "String",
		SymbolKindNumber: "Number", SymbolKindBoolean: "Boolean", SymbolKindArray: "Array",
		SymbolKindObject: "Object", SymbolKindKey: "Key", SymbolKindNull: "Null",
		SymbolKindEnumMember: "EnumMember", SymbolKindStruct: "Struct", SymbolKindEvent: "Event",
		SymbolKindOperator: "Operator", SymbolKindTypeParameter: "TypeParameter",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "UNKNOWNTYPE"
}

// SymbolTag represents additional symbol attributes.
type SymbolTag int

// Symbol tags as defined by the LSP specification.
const (
	SymbolTagDeprecated SymbolTag = 1
)

// =============================================================================
// INITIALIZE TYPES
// =============================================================================

// InitializeParams contains initialization parameters.
type InitializeParams struct {
	// ProcessID is the process ID of the parent process.
	ProcessID int `json:"processId"`

	// RootURI is the root URI of the workspace (preferred over rootPath).
	RootURI string `json:"rootUri"`

	// RootPath is the root path of the workspace (deprecated).
	RootPath string `json:"rootPath,omitempty"`

	// Capabilities describes what the client supports.
	Capabilities ClientCapabilities `json:"capabilities"`

	// InitializationOptions are custom, per-server initialization options
	// sourced from the server registry entry.
	InitializationOptions interface{} `json:"initializationOptions,omitempty"`

	// Trace sets the initial trace setting.
	Trace string `json:"trace,omitempty"`

	// WorkspaceFolders are the workspace folders if supported. Dynamic
	// registration of additional folders is never offered.
	WorkspaceFolders []WorkspaceFolder `json:"workspaceFolders,omitempty"`
}

// WorkspaceFolder represents a workspace folder.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ClientCapabilities describes what the client supports. Workspace folder
// change notifications and dynamic registration are never advertised.
type ClientCapabilities struct {
	TextDocument TextDocumentClientCapabilities `json:"textDocument,omitempty"`
	Workspace    WorkspaceClientCapabilities     `json:"workspace,omitempty"`
	Window       WindowClientCapabilities        `json:"window,omitempty"`
}

// TextDocumentClientCapabilities describes text document capabilities.
type TextDocumentClientCapabilities struct {
	Synchronization    *TextDocumentSyncClientCapabilities `json:"synchronization,omitempty"`
	DocumentSymbol     *DocumentSymbolCapabilities          `json:"documentSymbol,omitempty"`
	Definition         *DefinitionCapabilities              `json:"definition,omitempty"`
	Declaration        *DefinitionCapabilities              `json:"declaration,omitempty"`
	TypeDefinition     *DefinitionCapabilities               `json:"typeDefinition,omitempty"`
	Implementation     *DefinitionCapabilities               `json:"implementation,omitempty"`
	References         *ReferencesCapabilities               `json:"references,omitempty"`
	Hover              *HoverCapabilities                    `json:"hover,omitempty"`
	CallHierarchy      *DynamicRegistrationCapabilities       `json:"callHierarchy,omitempty"`
	TypeHierarchy      *DynamicRegistrationCapabilities       `json:"typeHierarchy,omitempty"`
	PublishDiagnostics *PublishDiagnosticsCapabilities        `json:"publishDiagnostics,omitempty"`
	Diagnostic         *DynamicRegistrationCapabilities       `json:"diagnostic,omitempty"`
	SemanticTokens     *SemanticTokensCapabilities            `json:"semanticTokens,omitempty"`
}

// DynamicRegistrationCapabilities is the shared shape of capabilities that
// only ever carry a dynamicRegistration flag (always false here).
type DynamicRegistrationCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

// DocumentSymbolCapabilities describes document symbol support.
type DocumentSymbolCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
	HierarchicalDocumentSymbolSupport bool `json:"hierarchicalDocumentSymbolSupport,omitempty"`
	SymbolKind *SymbolKindCapabilities `json:"symbolKind,omitempty"`
	TagSupport *TagSupportCapabilities `json:"tagSupport,omitempty"`
}

// SymbolKindCapabilities advertises the set of symbol kind values understood.
type SymbolKindCapabilities struct {
	ValueSet []SymbolKind `json:"valueSet,omitempty"`
}

// TagSupportCapabilities advertises the set of symbol/diagnostic tag values understood.
type TagSupportCapabilities struct {
	ValueSet []SymbolTag `json:"valueSet,omitempty"`
}

// PublishDiagnosticsCapabilities describes push-diagnostics support.
type PublishDiagnosticsCapabilities struct {
	RelatedInformation bool `json:"relatedInformation,omitempty"`
	TagSupport         *TagSupportCapabilities `json:"tagSupport,omitempty"`
	VersionSupport     bool `json:"versionSupport,omitempty"`
}

// SemanticTokensCapabilities advertises the token types/modifiers understood.
// The importer does not consume semantic tokens; this is advertised only
// because gopls and several other servers gate unrelated features behind it.
type SemanticTokensCapabilities struct {
	DynamicRegistration bool     `json:"dynamicRegistration,omitempty"`
	TokenTypes          []string `json:"tokenTypes"`
	TokenModifiers      []string `json:"tokenModifiers"`
	Formats             []string `json:"formats"`
}

// TextDocumentSyncClientCapabilities describes sync capabilities.
type TextDocumentSyncClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
	WillSave            bool `json:"willSave,omitempty"`
	WillSaveWaitUntil   bool `json:"willSaveWaitUntil,omitempty"`
	DidSave             bool `json:"didSave,omitempty"`
}

// WorkspaceClientCapabilities describes workspace capabilities. Workspace
// folders and dynamic registration are disabled per the external contract.
type WorkspaceClientCapabilities struct {
	WorkspaceFolders bool `json:"workspaceFolders,omitempty"`
	Symbol           *DynamicRegistrationCapabilities `json:"symbol,omitempty"`
}

// WindowClientCapabilities describes window capabilities (progress, messages).
type WindowClientCapabilities struct {
	WorkDoneProgress bool `json:"workDoneProgress,omitempty"`
}

// DefinitionCapabilities describes go-to-definition-shaped support
// (definition, declaration, typeDefinition, implementation). LinkSupport
// is never advertised per the external contract, so servers are expected
// to answer with plain Location values (though some answer with
// LocationLink regardless; the handler parses both).
type DefinitionCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
	LinkSupport         bool `json:"linkSupport,omitempty"`
}

// ReferencesCapabilities describes find-references support.
type ReferencesCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

// HoverCapabilities describes hover support.
type HoverCapabilities struct {
	DynamicRegistration bool     `json:"dynamicRegistration,omitempty"`
	ContentFormat       []string `json:"contentFormat,omitempty"`
}

// InitializeResult contains the server's response to initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo contains information about the server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapabilities describes what the server supports. Each Provider
// field may arrive as a bool, an object, or be absent; the Has* helpers
// normalize that into the capability-gated dispatch the importer relies on.
type ServerCapabilities struct {
	TextDocumentSync     interface{} `json:"textDocumentSync,omitempty"`
	DocumentSymbolProvider interface{} `json:"documentSymbolProvider,omitempty"`
	DefinitionProvider     interface{} `json:"definitionProvider,omitempty"`
	DeclarationProvider    interface{} `json:"declarationProvider,omitempty"`
	TypeDefinitionProvider interface{} `json:"typeDefinitionProvider,omitempty"`
	ImplementationProvider interface{} `json:"implementationProvider,omitempty"`
	ReferencesProvider     interface{} `json:"referencesProvider,omitempty"`
	HoverProvider          interface{} `json:"hoverProvider,omitempty"`
	CallHierarchyProvider  interface{} `json:"callHierarchyProvider,omitempty"`
	TypeHierarchyProvider  interface{} `json:"typeHierarchyProvider,omitempty"`
	DiagnosticProvider     interface{} `json:"diagnosticProvider,omitempty"`
}

func providerEnabled(v interface{}) bool {
	return v != nil && v != false
}

// HasDocumentSymbolProvider returns true if documentSymbol is supported.
func (c *ServerCapabilities) HasDocumentSymbolProvider() bool {
	return providerEnabled(c.DocumentSymbolProvider)
}

// HasDefinitionProvider returns true if definition is supported.
func (c *ServerCapabilities) HasDefinitionProvider() bool {
	return providerEnabled(c.DefinitionProvider)
}

// HasDeclarationProvider returns true if declaration is supported.
func (c *ServerCapabilities) HasDeclarationProvider() bool {
	return providerEnabled(c.DeclarationProvider)
}

// HasTypeDefinitionProvider returns true if typeDefinition is supported.
func (c *ServerCapabilities) HasTypeDefinitionProvider() bool {
	return providerEnabled(c.TypeDefinitionProvider)
}

// HasImplementationProvider returns true if implementation is supported.
func (c *ServerCapabilities) HasImplementationProvider() bool {
	return providerEnabled(c.ImplementationProvider)
}

// HasReferencesProvider returns true if references is supported.
func (c *ServerCapabilities) HasReferencesProvider() bool {
	return providerEnabled(c.ReferencesProvider)
}

// HasHoverProvider returns true if hover is supported.
func (c *ServerCapabilities) HasHoverProvider() bool {
	return providerEnabled(c.HoverProvider)
}

// HasCallHierarchyProvider returns true if call hierarchy is supported.
func (c *ServerCapabilities) HasCallHierarchyProvider() bool {
	return providerEnabled(c.CallHierarchyProvider)
}

// HasTypeHierarchyProvider returns true if type hierarchy is supported.
func (c *ServerCapabilities) HasTypeHierarchyProvider() bool {
	return providerEnabled(c.TypeHierarchyProvider)
}

// HasDiagnosticProvider returns true if pull-diagnostics is supported.
//
// NOTE: wiring this into the diagnostics phase is intentionally dead
// (always treated as false) until a server-capability audit confirms
// gopls/pyright/jdtls pull-diagnostics implementations are trustworthy
// across versions; see the handler's diagnostics.go for the push path
// that is used unconditionally today.
func (c *ServerCapabilities) HasDiagnosticProvider() bool {
	return providerEnabled(c.DiagnosticProvider)
}
