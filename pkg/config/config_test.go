package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "enhanced", cfg.Widget.Variant)
	assert.Equal(t, "hash", cfg.Widget.ColorPolicy)
	assert.Equal(t, 580.0, cfg.Card.Width)
	assert.Equal(t, 0.85, cfg.Card.HeightRatio)
	assert.Equal(t, []string{"espeak-ng", "-v", "{lang}", "-s", "{wpm}", "{text}"}, cfg.Speech.Command)
	assert.Equal(t, 0.9, cfg.Speech.Rate)
	assert.Equal(t, "vocabmark.db", cfg.Storage.Path)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.EqualValues(t, 10<<20, cfg.Fetch.MaxBodySize)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.False(t, cfg.Dictionary.Enabled)
	assert.True(t, cfg.Dictionary.AutoDownload)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabmark.yaml")
	data := `
widget:
  variant: complete
  color_policy: random
  seed: 42
card:
  width: 400
batch:
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	t.Setenv("VOCABMARK_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "complete", cfg.Widget.Variant)
	assert.Equal(t, "random", cfg.Widget.ColorPolicy)
	assert.EqualValues(t, 42, cfg.Widget.Seed)
	assert.Equal(t, 400.0, cfg.Card.Width)
	assert.Equal(t, 500.0, cfg.Card.MaxHeight)
	assert.Equal(t, 8, cfg.Batch.Workers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOCABMARK_VARIANT", "fancy")
	t.Setenv("VOCABMARK_CARD_HEIGHT_RATIO", "1.5")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widget.variant")
	assert.Contains(t, err.Error(), "card.height_ratio")
}

func TestDumpRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, cfg))
	assert.Contains(t, buf.String(), "color_policy: hash")

	var back Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *cfg, back)
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vocabmark.log")
	log, err := NewLogger("debug", path)
	require.NoError(t, err)
	log.Debug("Logger ready")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), " | DEBUG | ")
	assert.Contains(t, string(data), "Logger ready")
}
