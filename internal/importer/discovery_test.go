package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDiscover_EmptyIncludeSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}")

	cfg := DefaultConfig(root)
	cfg.IncludeDirs = []string{"nonexistent"}

	got, err := discover(cfg, map[string]bool{".rs": true})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_SingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}")
	writeFile(t, root, "README.md", "hello")

	cfg := DefaultConfig(root)
	got, err := discover(cfg, map[string]bool{".rs": true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lib.rs", filepath.Base(got[0]))
}

func TestDiscover_ExcludeByPrefix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}")
	writeFile(t, root, "vendor/dep.rs", "fn bar() {}")

	cfg := DefaultConfig(root)
	cfg.ExcludeDirs = []string{"vendor"}

	got, err := discover(cfg, map[string]bool{".rs": true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lib.rs", filepath.Base(got[0]))
}

func TestDiscover_ExcludeByRegex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn foo() {}")
	writeFile(t, root, "src/lib_test.rs", "fn test_foo() {}")

	cfg := DefaultConfig(root)
	cfg.ExcludeDirs = []string{`.*_test\.rs$`}

	got, err := discover(cfg, map[string]bool{".rs": true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lib.rs", filepath.Base(got[0]))
}

func TestDiscover_ProjectRootMissing(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := discover(cfg, map[string]bool{".rs": true})
	assert.ErrorIs(t, err, ErrProjectRootMissing)
}
