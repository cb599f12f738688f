package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, time.Monday, cfg.Weekday())
	assert.Equal(t, "basic", cfg.CSVVariant)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "timetag.db", filepath.Base(cfg.DBPath))
	assert.NotEmpty(t, cfg.ExportDir)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
db_path: /tmp/tt.db
export_dir: /tmp/exports
week_start: Sunday
csv_variant: extended
language: ja
log:
  level: debug
  pretty: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tt.db", cfg.DBPath)
	assert.Equal(t, "/tmp/exports", cfg.ExportDir)
	assert.Equal(t, time.Sunday, cfg.Weekday())
	assert.Equal(t, "extended", cfg.CSVVariant)
	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, path, cfg.File)
}

func TestLoadDefaultLocation(t *testing.T) {
	isolate(t)
	dir, err := DefaultDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("language: es\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "es", cfg.Language)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TIMETAG_LANGUAGE", "ja")
	t.Setenv("TIMETAG_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidationErrors(t *testing.T) {
	isolate(t)
	for _, content := range []string{
		"week_start: friday\n",
		"csv_variant: fancy\n",
		"language: de\n",
		"log:\n  level: loud\n",
	} {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, content)
	}
}

func TestMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExampleYAMLIsValid(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, ExampleYAML()))
	assert.NoError(t, err)
}
