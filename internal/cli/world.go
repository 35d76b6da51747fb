package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newAuthCmd(o *options) *cobra.Command {
	var checkScopes bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Show the API key in use and its scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				auth, err := a.svc.Authentication(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if err := o.print(out, auth, func(t table.Writer) {
					t.SetTitle("API key")
					t.AppendRows([]table.Row{
						{"Authenticated", auth.Authenticated},
						{"Name", auth.Name},
						{"Character", auth.Character.Name},
						{"Rate limit", fmt.Sprintf("%d/min", auth.RateLimit)},
						{"Expires", fmtTime(auth.ExpiresAt)},
						{"Scopes", strings.Join(auth.Scopes, "\n")},
					})
				}); err != nil {
					return err
				}

				if !checkScopes {
					return nil
				}
				missing, err := a.svc.CheckScopes(ctx)
				if err != nil {
					return err
				}
				if len(missing) == 0 {
					fmt.Fprintln(out, "All endpoints are available to this key.")
					return nil
				}
				return o.print(out, missing, func(t table.Writer) {
					t.SetTitle("Endpoints not available to this key")
					t.AppendHeader(table.Row{"Endpoint", "Scope"})
					for _, e := range missing {
						t.AppendRow(table.Row{e.Name, e.Scope})
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&checkScopes, "check-scopes", false, "List endpoints the key lacks a scope for")
	return cmd
}

func newShrineCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shrine",
		Short: "Show global shrine progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				info, err := a.svc.Shrine(ctx)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), info, func(t table.Writer) {
					t.AppendHeader(table.Row{"Tier", "Progress", "Target", "%", "Active", "Goal reached"})
					for _, s := range info.Progress {
						t.AppendRow(table.Row{s.Tier.Name, s.CurrentValue, s.TargetValue,
							fmt.Sprintf("%.1f", s.Percentage), s.Active, fmtTime(s.GoalReachedAt)})
					}
				})
			})
		},
	}
}

func newBossesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bosses",
		Short: "List world bosses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				bosses, err := a.svc.WorldBosses(ctx)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), bosses, func(t table.Writer) {
					t.AppendHeader(table.Row{"ID", "Name", "Level", "Location", "Status", "Starts", "Ends"})
					for _, b := range bosses.WorldBosses {
						t.AppendRow(table.Row{b.ID, b.Name, b.Level, b.Location.Name, b.Status,
							fmtTime(b.BattleStartsAt), fmtTime(b.BattleEndsAt)})
					}
				})
			})
		},
	}
}

func newDungeonsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dungeons",
		Short: "List dungeons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				dungeons, err := a.svc.Dungeons(ctx)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), dungeons, func(t table.Writer) {
					t.AppendHeader(table.Row{"ID", "Name", "Level", "Difficulty", "Cost", "Location", "Loot"})
					for _, d := range dungeons.Dungeons {
						t.AppendRow(table.Row{d.ID, d.Name, d.LevelRequired, d.Difficulty, d.Cost, d.Location.Name, len(d.Loot)})
					}
				})
			})
		},
	}
}

func newEnemiesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "enemies",
		Short: "List enemies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				enemies, err := a.svc.Enemies(ctx)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), enemies, func(t table.Writer) {
					t.AppendHeader(table.Row{"ID", "Name", "Level", "Health", "XP", "Location"})
					for _, e := range enemies.Enemies {
						t.AppendRow(table.Row{e.ID, e.Name, e.Level, e.Health, e.Experience, e.Location.Name})
					}
				})
			})
		},
	}
}
