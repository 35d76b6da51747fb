package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/journal"
)

func newHistoryCmd(o *options) *cobra.Command {
	var (
		limit int
		stats bool
		since time.Duration
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded request attempts from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.JournalPath == "" {
				return fmt.Errorf("JOURNAL_PATH is not set in %s", cfg.Source)
			}

			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch {
			case prune > 0:
				n, err := j.Prune(ctx, time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d attempts older than %s\n", n, prune)
				return nil

			case stats:
				rows, err := j.Stats(ctx, time.Now().Add(-since))
				if err != nil {
					return err
				}
				return o.print(out, rows, func(t table.Writer) {
					t.SetTitle(fmt.Sprintf("Last %s", since))
					t.AppendHeader(table.Row{"Endpoint", "Attempts", "Rate limited", "Errors", "Avg duration"})
					for _, r := range rows {
						t.AppendRow(table.Row{r.Endpoint, r.Attempts, r.RateLimited, r.Errors, r.AvgDuration.Round(time.Millisecond)})
					}
				})
			}

			attempts, err := j.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return o.print(out, attempts, func(t table.Writer) {
				t.AppendHeader(table.Row{"Time", "Endpoint", "Status", "Try", "Token", "Duration", "Error"})
				for _, a := range attempts {
					status := fmt.Sprint(a.Status)
					if a.RateLimited {
						status += " (limited)"
					}
					t.AppendRow(table.Row{a.At.Local().Format("01-02 15:04:05"), a.Endpoint, status, a.Attempt,
						a.Token, a.Duration.Round(time.Millisecond), truncate(a.Err, 40)})
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of attempts to show")
	cmd.Flags().BoolVar(&stats, "stats", false, "Aggregate per endpoint instead of listing attempts")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Window for --stats")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete attempts older than this and exit")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
