package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.SrcDir)
	assert.Equal(t, "dist", cfg.OutDir)
	assert.Equal(t, "  ", cfg.Compiler.Indent)
	assert.Equal(t, []string{".psr", ".tsx"}, cfg.Compiler.Extensions)
	assert.Equal(t, 5173, cfg.Dev.Port)
	assert.Equal(t, "localhost", cfg.Dev.Host)
	assert.Equal(t, 100, cfg.Dev.Debounce)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `srcDir: app
dev:
  port: 3000
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.SrcDir)
	assert.Equal(t, "dist", cfg.OutDir)
	assert.Equal(t, 3000, cfg.Dev.Port)
	assert.Equal(t, "localhost", cfg.Dev.Host)
}

func TestLoadFullFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `srcDir: source
outDir: build
compiler:
  indent: "    "
  strict: true
  extensions: [".psr"]
dev:
  port: 8080
  host: 0.0.0.0
  debounce: 250
cache:
  enabled: false
  maxSizeMB: 64
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "source", cfg.SrcDir)
	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, "    ", cfg.Compiler.Indent)
	assert.True(t, cfg.Compiler.Strict)
	assert.Equal(t, []string{".psr"}, cfg.Compiler.Extensions)
	assert.Equal(t, 8080, cfg.Dev.Port)
	assert.Equal(t, "0.0.0.0", cfg.Dev.Host)
	assert.Equal(t, 250, cfg.Dev.Debounce)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 64, cfg.Cache.MaxSizeMB)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "srcDir: [unclosed")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dev.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SrcDir = "same"
	cfg.OutDir = "same"
	assert.Error(t, cfg.Validate())

	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `srcDir: out
outDir: out
`)
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.SrcDir = "pages"
	cfg.Dev.Port = 4000
	require.NoError(t, Save(cfg, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "pages", loaded.SrcDir)
	assert.Equal(t, 4000, loaded.Dev.Port)
	assert.True(t, loaded.CacheEnabled())
}
