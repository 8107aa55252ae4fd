package importer

import (
	"context"
	"fmt"

	"github.com/uni-bremen-agst/LSP2GXL/internal/lspclient"
	"github.com/uni-bremen-agst/LSP2GXL/internal/lsphandler"
)

// fakeHandler is an in-memory Handler stand-in for tests: every query is a
// plain map lookup keyed by (path, line, character), with no subprocess
// and no network I/O.
type fakeHandler struct {
	language string
	caps     lspclient.ServerCapabilities

	symbols     map[string][]lspclient.DocumentSymbol
	hover       map[string]string
	definitions map[string][]lspclient.Location
	references  map[string][]lspclient.Location
	calls       map[string][]lspclient.CallHierarchyItem
	supertypes  map[string][]lspclient.TypeHierarchyItem
	diagnostics map[string][]lspclient.Diagnostic

	opened []string
}

func posKey(path string, line, character int) string {
	return fmt.Sprintf("%s|%d|%d", path, line, character)
}

func (f *fakeHandler) Language() string                           { return f.language }
func (f *fakeHandler) Capabilities() lspclient.ServerCapabilities { return f.caps }

func (f *fakeHandler) OpenDocument(ctx context.Context, path, content string) error {
	f.opened = append(f.opened, path)
	return nil
}

func (f *fakeHandler) CloseDocument(ctx context.Context, path string) error { return nil }

func (f *fakeHandler) DocumentSymbols(ctx context.Context, path string) ([]lspclient.DocumentSymbol, error) {
	return f.symbols[path], nil
}

func (f *fakeHandler) Hover(ctx context.Context, path string, line, character int) (string, error) {
	return f.hover[posKey(path, line, character)], nil
}

func (f *fakeHandler) PositionQuery(ctx context.Context, method lsphandler.PositionQueryMethod, path string, line, character int) ([]lspclient.Location, error) {
	if method == lsphandler.MethodDefinition {
		return f.definitions[posKey(path, line, character)], nil
	}
	return nil, nil
}

func (f *fakeHandler) References(ctx context.Context, path string, line, character int, includeDeclaration bool) ([]lspclient.Location, error) {
	return f.references[posKey(path, line, character)], nil
}

func (f *fakeHandler) OutgoingCalls(ctx context.Context, path string, line, character int) ([]lspclient.CallHierarchyItem, error) {
	return f.calls[posKey(path, line, character)], nil
}

func (f *fakeHandler) Supertypes(ctx context.Context, path string, line, character int) ([]lspclient.TypeHierarchyItem, error) {
	return f.supertypes[posKey(path, line, character)], nil
}

func (f *fakeHandler) DrainPushedDiagnostics(path string) []lspclient.Diagnostic {
	out := f.diagnostics[path]
	delete(f.diagnostics, path)
	return out
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{
		language:    "rust",
		definitions: map[string][]lspclient.Location{},
		references:  map[string][]lspclient.Location{},
		calls:       map[string][]lspclient.CallHierarchyItem{},
		supertypes:  map[string][]lspclient.TypeHierarchyItem{},
		diagnostics: map[string][]lspclient.Diagnostic{},
		hover:       map[string]string{},
		symbols:     map[string][]lspclient.DocumentSymbol{},
	}
}

func rng(startLine, startChar, endLine, endChar int) lspclient.Range {
	return lspclient.Range{
		Start: lspclient.Position{Line: startLine, Character: startChar},
		End:   lspclient.Position{Line: endLine, Character: endChar},
	}
}
