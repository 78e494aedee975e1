package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aiusage/internal/config"
	"aiusage/internal/store"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the interaction log to a JSON or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			st := store.Open(cfg.StorePath, cfg.MaxInteractions, newLogger(verbose))
			if err := st.ExportTo(args[0]); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Printf("exported %d interactions to %s\n", st.Len(), args[0])
			return nil
		},
	}
}
