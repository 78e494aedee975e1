package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aiusage/internal/config"
	"aiusage/internal/record"
	"aiusage/internal/store"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify paths, store health, and show counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Capture ===")
			if cfg.Enabled {
				fmt.Println("  Enabled: yes")
			} else {
				fmt.Println("  Enabled: no")
			}
			fmt.Printf("  Model:   %s\n", cfg.ModelName)

			// check transcript dir
			fmt.Println("\n=== Transcripts ===")
			checkDir("Dir", cfg.TranscriptDir)
			if entries, err := os.ReadDir(cfg.TranscriptDir); err == nil {
				count := 0
				for _, e := range entries {
					if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
						count++
					}
				}
				fmt.Printf("  Session files: %d\n", count)
			}

			// check store
			fmt.Println("\n=== Store ===")
			fmt.Printf("  Path: %s\n", cfg.StorePath)
			if _, err := os.Stat(cfg.StorePath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'aiusage run' first)")
				return nil
			}

			st := store.Open(cfg.StorePath, cfg.MaxInteractions, newLogger(verbose))
			completions, chats := 0, 0
			for _, in := range st.Query(store.Filter{}) {
				if in.Kind == record.KindChat {
					chats++
				} else {
					completions++
				}
			}
			fmt.Printf("  Interactions: %d / %d cap\n", st.Len(), st.Cap())
			fmt.Printf("  Completions:  %d\n", completions)
			fmt.Printf("  Chat turns:   %d\n", chats)

			if st.Len() >= st.Cap() {
				fmt.Println("  Status: AT CAP (oldest entries are evicted)")
			} else {
				fmt.Println("  Status: OK")
			}

			// check store file size
			if info, err := os.Stat(cfg.StorePath); err == nil {
				sizeKB := float64(info.Size()) / 1024
				fmt.Printf("\n=== Store Size: %.1f KB ===\n", sizeKB)
			}

			configPath := filepath.Join(filepath.Dir(cfg.StorePath), "config.toml")
			if _, err := os.Stat(configPath); err == nil {
				fmt.Printf("\n=== Config: %s ===\n", configPath)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
