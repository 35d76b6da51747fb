package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/model"
)

func newGuildCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "guild <id>",
		Short: "Show guild information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("guild id must be a number: %w", err)
			}

			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				view, err := a.svc.Guild(ctx, id)
				if err != nil {
					return err
				}
				g := view.Guild
				return o.print(cmd.OutOrStdout(), view, func(t table.Writer) {
					t.SetTitle(fmt.Sprintf("[%s] %s", g.Tag, g.Name))
					t.AppendRows([]table.Row{
						{"Level", g.Level},
						{"Experience", g.Experience},
						{"Members", g.MemberCount},
						{"Season position", fmtOptional(g.SeasonPosition)},
						{"Marks", g.Marks},
					})
				})
			})
		},
	}
}

func newConquestCmd(o *options) *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "conquest",
		Short: "Show guild conquest zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				conquest, err := a.svc.GuildConquest(ctx, season)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), conquest, func(t table.Writer) {
					t.AppendHeader(table.Row{"Zone", "Status", "Leader", "Kills", "Guilds"})
					for _, key := range sortedKeys(conquest.Zones) {
						z := conquest.Zones[key]
						t.AppendRow(table.Row{z.Location.Name, z.Status, zoneLeader(z), z.Kills, z.GuildsCount})
					}
				})
			})
		},
	}

	cmd.PersistentFlags().IntVar(&season, "season", 0, "Season number (default current)")
	cmd.AddCommand(newConquestZoneCmd(o, &season))
	return cmd
}

func newConquestZoneCmd(o *options, season *int) *cobra.Command {
	return &cobra.Command{
		Use:   "zone <zone>",
		Short: "Inspect one conquest zone (name like ELDORIA or id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone, err := model.ParseZone(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				res, err := a.svc.ConquestZone(ctx, zone, *season)
				if err != nil {
					return err
				}
				z := res.Zone
				return o.print(cmd.OutOrStdout(), res, func(t table.Writer) {
					t.SetTitle(fmt.Sprintf("%s (%s)", z.Location.Name, z.Status))
					t.AppendHeader(table.Row{"#", "Guild", "Kills", "Experience"})
					for _, g := range z.Guilds {
						t.AppendRow(table.Row{g.Position, fmt.Sprintf("[%s] %s", g.Guild.Tag, g.Guild.Name), g.Kills, g.Experience})
					}
				})
			})
		},
	}
}

func zoneLeader(z model.Zone) string {
	for _, g := range z.Guilds {
		if g.Position == 1 {
			return fmt.Sprintf("[%s] %s", g.Guild.Tag, g.Guild.Name)
		}
	}
	return "-"
}
