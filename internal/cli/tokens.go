package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/Sternrassler/idlemmo-client/pkg/tokenpool"
)

type tokenRow struct {
	Fingerprint string `json:"fingerprint"`
	Remaining   int    `json:"remaining"`
}

func newTokensCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "List the rotating tokens from the token file",
		Long: `List the rotating tokens loaded from TOKEN_FILE in selection order.

Only fingerprints are printed, never the tokens themselves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.UseRotatingTokens {
				return fmt.Errorf("USE_ROTATING_TOKENS is off in %s", cfg.Source)
			}

			pool := cfg.BuildTokenPool(logging.NewLogger("tokenpool"))
			rows := make([]tokenRow, 0, pool.Len())
			for _, e := range pool.Snapshot() {
				rows = append(rows, tokenRow{Fingerprint: tokenpool.Fingerprint(e.Token), Remaining: e.Remaining})
			}

			return o.print(cmd.OutOrStdout(), rows, func(t table.Writer) {
				t.SetTitle(cfg.TokenFile)
				t.AppendHeader(table.Row{"Fingerprint", "Remaining"})
				for _, r := range rows {
					t.AppendRow(table.Row{r.Fingerprint, r.Remaining})
				}
				t.AppendFooter(table.Row{"Total", len(rows)})
			})
		},
	}
}
