package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 800*time.Millisecond, cfg.Engine.SettleDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.PollInterval)
	assert.Equal(t, 10, cfg.Engine.MaxScrolls)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.True(t, cfg.Mirror.Headless)
	assert.False(t, cfg.Analyzer.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mirror:
  url: "http://localhost:9100/mirror"
  headless: false
engine:
  settle_delay: 1200ms
  max_scrolls: 6
ocr:
  language: fra
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9100/mirror", cfg.Mirror.URL)
	assert.False(t, cfg.Mirror.Headless)
	assert.Equal(t, 1200*time.Millisecond, cfg.Engine.SettleDelay)
	assert.Equal(t, 6, cfg.Engine.MaxScrolls)
	assert.Equal(t, "fra", cfg.OCR.Language)
	// Untouched keys keep their defaults.
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.PollInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  max_scrolls: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_scrolls")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MIRROIR_OCR_LANGUAGE", "deu")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "deu", cfg.OCR.Language)
}
