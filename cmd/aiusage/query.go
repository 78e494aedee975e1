package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aiusage/internal/config"
	"aiusage/internal/store"
)

func queryCmd() *cobra.Command {
	var since, until, language, model string
	var limit int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List captured interactions",
		Long: `List interactions matching the given filters. Output is TSV:
  id, timestamp, kind, language, accepted, latencyMs, model, excerpt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			st := store.Open(cfg.StorePath, cfg.MaxInteractions, newLogger(verbose))

			var f store.Filter
			if f.Since, err = parseDayBound(since, false); err != nil {
				return err
			}
			if f.Until, err = parseDayBound(until, true); err != nil {
				return err
			}
			f.Language = language
			f.Model = model

			results := st.Query(f)
			if limit > 0 && len(results) > limit {
				results = results[len(results)-limit:]
			}

			for _, in := range results {
				excerpt := strings.ReplaceAll(in.Response, "\n", " ")
				excerpt = strings.ReplaceAll(excerpt, "\t", " ")
				if len(excerpt) > 80 {
					excerpt = excerpt[:80]
				}
				fmt.Printf("%s\t%s\t%s\t%s\t%t\t%d\t%s\t%s\n",
					in.ID,
					time.UnixMilli(in.Timestamp).Format(time.RFC3339),
					in.Kind,
					in.Language,
					in.Accepted,
					in.LatencyMs,
					in.ModelName,
					excerpt,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Include interactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Include interactions before the end of this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&language, "language", "", "Exact language match")
	cmd.Flags().StringVar(&model, "model", "", "Exact model name match")
	cmd.Flags().IntVar(&limit, "limit", 0, "Keep only the most recent N matches")
	return cmd
}

// parseDayBound converts a YYYY-MM-DD date to epoch milliseconds; end
// selects the exclusive end of that day.
func parseDayBound(s string, end bool) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return t.UnixMilli(), nil
}
