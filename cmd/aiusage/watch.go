package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"aiusage/internal/record"
	"aiusage/internal/tui"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of captured interactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)
			p, err := newPipeline(log)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !p.cfg.Enabled {
				fmt.Fprintln(os.Stderr, "capture is disabled in config")
				return nil
			}

			if err := p.ing.Start(); err != nil {
				return fmt.Errorf("start ingestor: %w", err)
			}
			defer p.ing.Stop()

			// Interactive TUI when stdout is a terminal; TSV stream for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(p.st, p.bus)
			}

			sub := p.bus.Subscribe(func(in record.Interaction) {
				fmt.Printf("%s\t%s\t%s\t%d\t%s\n",
					time.UnixMilli(in.Timestamp).Format(time.RFC3339),
					in.Kind, in.Language, in.CharacterCount, in.ModelName)
			})
			defer p.bus.Unsubscribe(sub)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
}
