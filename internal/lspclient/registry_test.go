package lspclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigRegistry(t *testing.T) {
	r := NewConfigRegistry()

	assert.NotEmpty(t, r.Languages())

	config, ok := r.Get("go")
	require.True(t, ok, "go should be registered by default")
	assert.Equal(t, "gopls", config.Command)
	assert.NotEmpty(t, config.InfoURL)
}

func TestConfigRegistry_Register(t *testing.T) {
	r := NewConfigRegistry()

	r.Register(LanguageConfig{
		Language:   "custom",
		Command:    "custom-lsp",
		Args:       []string{"--stdio"},
		Extensions: []string{".custom", ".cust"},
		LanguageID: "custom",
		RootFiles:  []string{"custom.config"},
	})

	got, ok := r.Get("custom")
	require.True(t, ok, "custom language should be registered")
	assert.Len(t, got.Extensions, 2)
}

func TestConfigRegistry_GetByExtension(t *testing.T) {
	r := NewConfigRegistry()

	t.Run("go extension", func(t *testing.T) {
		config, ok := r.GetByExtension(".go")
		require.True(t, ok, ".go should be mapped")
		assert.Equal(t, "go", config.Language)
	})

	t.Run("unmapped extension", func(t *testing.T) {
		_, ok := r.GetByExtension(".nope")
		assert.False(t, ok)
	})
}

func TestLanguageConfig_LanguageIDForExtension(t *testing.T) {
	r := NewConfigRegistry()
	ts, _ := r.Get("typescript")

	t.Run("default extension uses LanguageID", func(t *testing.T) {
		assert.Equal(t, "typescript", ts.LanguageIDForExtension(".ts"))
	})

	t.Run("overridden extension uses ExtensionLanguageIDs", func(t *testing.T) {
		assert.Equal(t, "typescriptreact", ts.LanguageIDForExtension(".tsx"))
	})
}
