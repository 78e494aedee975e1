package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(dir, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults("/home/u")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.MaxInteractions)
	assert.Equal(t, filepath.Join("/home/u", ".config", "aiusage", "interactions.json"), cfg.StorePath)
	assert.Equal(t, filepath.Join("/home/u", ".config", "aiusage", "transcripts"), cfg.TranscriptDir)
	assert.Equal(t, "copilot", cfg.ModelName)

	assert.Equal(t, 20, cfg.Heuristic.MultiLineMinChars)
	assert.Equal(t, 50, cfg.Heuristic.SingleLineMinChars)
	assert.Equal(t, 30, cfg.Heuristic.PendingTTLSeconds)
	assert.Equal(t, 50, cfg.Heuristic.ContextLines)

	assert.Equal(t, 15, cfg.Ingest.RescanSeconds)
	assert.Equal(t, 5000, cfg.Ingest.ProcessedCap)
}

func TestLoadAppliesConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "aiusage")
	require.NoError(t, writeConfigFile(dir, `
enabled = false
max_interactions = 250
store_path = "~/logs/ai.json"
model_name = "claude"

[heuristic]
single_line_min_chars = 80
`))

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 250, cfg.MaxInteractions)
	assert.Equal(t, "claude", cfg.ModelName)
	// ~ expansion
	assert.Equal(t, filepath.Join(home, "logs", "ai.json"), cfg.StorePath)
	// overridden value applies, untouched values keep defaults
	assert.Equal(t, 80, cfg.Heuristic.SingleLineMinChars)
	assert.Equal(t, 20, cfg.Heuristic.MultiLineMinChars)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.MaxInteractions)
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u/x/y", expandHome("~/x/y", "/home/u"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path", "/home/u"))
	assert.Equal(t, "~", expandHome("~", "/home/u"))
}
