package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aiusage/internal/config"
	"aiusage/internal/store"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate usage analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			st := store.Open(cfg.StorePath, cfg.MaxInteractions, newLogger(verbose))
			sum := st.Analytics()

			fmt.Println("=== Totals ===")
			fmt.Printf("  Interactions:    %d\n", sum.TotalCount)
			fmt.Printf("  Avg latency:     %d ms\n", sum.AverageLatency)
			fmt.Printf("  Acceptance rate: %d%%\n", sum.AcceptanceRate)

			if len(sum.TopLanguages) > 0 {
				fmt.Println("\n=== Top Languages ===")
				for _, lc := range sum.TopLanguages {
					fmt.Printf("  %-16s %d\n", lc.Language, lc.Count)
				}
			}

			if len(sum.DailySeries) > 0 {
				fmt.Println("\n=== Last 7 Days ===")
				for _, dc := range sum.DailySeries {
					fmt.Printf("  %s  %d\n", dc.Date, dc.Count)
				}
			}
			return nil
		},
	}
}
