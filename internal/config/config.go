package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Enabled         bool   `toml:"enabled"`
	MaxInteractions int    `toml:"max_interactions"`
	StorePath       string `toml:"store_path"`
	TranscriptDir   string `toml:"transcript_dir"`
	ModelName       string `toml:"model_name"`

	Heuristic HeuristicConfig `toml:"heuristic"`
	Ingest    IngestConfig    `toml:"ingest"`
}

// HeuristicConfig carries the completion-capture thresholds. The
// defaults match the observed behavior and should not be re-derived;
// there is no ground-truth accuracy data to tune against.
type HeuristicConfig struct {
	MultiLineMinChars  int `toml:"multi_line_min_chars"`
	SingleLineMinChars int `toml:"single_line_min_chars"`
	PendingTTLSeconds  int `toml:"pending_ttl_seconds"`
	ContextLines       int `toml:"context_lines"`
}

type IngestConfig struct {
	RescanSeconds int `toml:"rescan_seconds"`
	ProcessedCap  int `toml:"processed_cap"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Defaults(home)

	cfgPath := filepath.Join(home, ".config", "aiusage", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.StorePath = expandHome(cfg.StorePath, home)
	cfg.TranscriptDir = expandHome(cfg.TranscriptDir, home)

	return cfg, nil
}

func Defaults(home string) *Config {
	return &Config{
		Enabled:         true,
		MaxInteractions: 1000,
		StorePath:       filepath.Join(home, ".config", "aiusage", "interactions.json"),
		TranscriptDir:   filepath.Join(home, ".config", "aiusage", "transcripts"),
		ModelName:       "copilot",
		Heuristic: HeuristicConfig{
			MultiLineMinChars:  20,
			SingleLineMinChars: 50,
			PendingTTLSeconds:  30,
			ContextLines:       50,
		},
		Ingest: IngestConfig{
			RescanSeconds: 15,
			ProcessedCap:  5000,
		},
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
