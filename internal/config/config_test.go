package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DOXYDECOR_CONFIG", "")
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	opts := cfg.DecorOptions()
	assert.Equal(t, "\nMacros", opts.MacrosTitle)
	assert.Equal(t, "174px", opts.ViewportOffset)
	assert.Equal(t, 250*time.Millisecond, opts.FadeIn)
	assert.False(t, opts.RequireTypedefs)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doxydecor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: build/docs/html
workers: 2
cache_ttl: 1m
decor:
  viewport_offset: 120px
  require_typedefs: true
  disabled: [fadein]
`), 0o644))
	t.Setenv("DOXYDECOR_WORKERS", "8")
	t.Setenv("DOXYDECOR_DISABLE", "reflow, fadein")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "build/docs/html", cfg.Input)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "120px", cfg.Decor.ViewportOffset)
	assert.True(t, cfg.Decor.RequireTypedefs)
	assert.Equal(t, []string{"reflow", "fadein"}, cfg.Decor.Disabled)
	assert.Equal(t, "\nTypedefs", cfg.Decor.TypedefsTitle, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Input = " "
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Decor.Disabled = []string{"sparkles"}
	assert.ErrorContains(t, cfg.Validate(), "sparkles")
}

func TestPortOverridesAddr(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DOXYDECOR_CONFIG", "")
	t.Setenv("PORT", "9000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
