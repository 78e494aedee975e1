package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"aiusage/internal/monitor"
)

func runCmd() *cobra.Command {
	var signalsPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture assistant activity until interrupted",
		Long: `Run the capture pipeline: watch the transcript directory for new
chat turns and, when an editor signal stream is supplied, infer accepted
completions from cursor and mutation signals.

The signal stream is newline-delimited JSON, one object per signal:
  {"type":"cursor","document":"main.go","language":"go","line":5,"lines":[...]}
  {"type":"change","document":"main.go","language":"go","spans":[{"startLine":5,"text":"..."}]}
  {"type":"editorSwitch"}
Use "-" to read signals from stdin.`,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := p.ing.Start(); err != nil {
				return fmt.Errorf("start ingestor: %w", err)
			}
			defer p.ing.Stop()

			p.mon.Start()
			defer p.mon.Stop()

			if signalsPath == "" {
				<-ctx.Done()
				return nil
			}

			stream, err := openSignalStream(signalsPath)
			if err != nil {
				return fmt.Errorf("open signal stream: %w", err)
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				// closing the stream unblocks the reader
				<-ctx.Done()
				stream.Close()
				return nil
			})
			g.Go(func() error {
				defer stop()
				err := monitor.ReadSignals(stream, p.mon)
				if err != nil && !errors.Is(err, fs.ErrClosed) {
					return fmt.Errorf("read signals: %w", err)
				}
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&signalsPath, "signals", "", "Editor signal stream (file, FIFO, or - for stdin)")
	return cmd
}

func openSignalStream(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
