package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aiusage/internal/config"
	"aiusage/internal/store"
)

func clearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all captured interactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			st := store.Open(cfg.StorePath, cfg.MaxInteractions, newLogger(verbose))

			if st.Len() == 0 {
				fmt.Println("nothing to clear")
				return nil
			}

			if !force {
				fmt.Printf("delete %d interactions from %s? [y/N] ", st.Len(), st.Path())
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if strings.TrimSpace(strings.ToLower(answer)) != "y" {
					fmt.Println("aborted")
					return nil
				}
			}

			n := st.Len()
			st.Clear()
			fmt.Printf("cleared %d interactions\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
