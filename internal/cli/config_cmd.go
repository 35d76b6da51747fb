package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/config"
	"github.com/Sternrassler/idlemmo-client/pkg/tokenpool"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(o), newConfigShowCmd(o))
	return cmd
}

func newConfigInitCmd(o *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(o.configPath, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", o.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}

			shown := *cfg
			if shown.APIKey != "" {
				shown.APIKey = "sha256:" + tokenpool.Fingerprint(shown.APIKey)
			}

			return o.print(cmd.OutOrStdout(), shown, func(t table.Writer) {
				t.SetTitle("Source: " + cfg.Source)
				t.AppendRows([]table.Row{
					{"API_KEY", shown.APIKey},
					{"APPLICATION", cfg.ApplicationName + "/" + cfg.ApplicationVersion},
					{"CONTACT_EMAIL", cfg.ContactEmail},
					{"USE_ROTATING_TOKENS", cfg.UseRotatingTokens},
					{"TOKEN_FILE", cfg.TokenFile},
					{"BASE_URL", cfg.BaseURL},
					{"REQUESTS_PER_SECOND", cfg.RequestsPerSecond},
					{"REDIS_URL", orDash(cfg.RedisURL)},
					{"CACHE_TTL", cfg.CacheTTL},
					{"JOURNAL_PATH", orDash(cfg.JournalPath)},
					{"LOG_LEVEL", cfg.LogLevel},
					{"LOG_PRETTY", cfg.LogPretty},
				})
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
