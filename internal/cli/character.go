package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/api"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/Sternrassler/idlemmo-client/pkg/pagination"
)

func newCharacterCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Inspect characters by hashed id",
	}

	cmd.AddCommand(
		newCharacterInfoCmd(o),
		newCharacterMetricsCmd(o),
		newCharacterEffectsCmd(o),
		newCharacterAltsCmd(o),
		newCharacterMuseumCmd(o),
		newCharacterActionCmd(o),
		newCharacterPetsCmd(o),
	)
	return cmd
}

func newCharacterInfoCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <hashed-id>",
		Short: "Show a character profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				view, err := a.svc.Character(ctx, args[0])
				if err != nil {
					return err
				}
				c := view.Character
				return o.print(cmd.OutOrStdout(), view, func(t table.Writer) {
					t.SetTitle(fmt.Sprintf("%s (%s)", c.Name, c.Class))
					t.AppendRows([]table.Row{
						{"Total level", c.TotalLevel},
						{"Gold", c.Gold},
						{"Tokens", c.Tokens},
						{"Shards", c.Shards},
						{"Last activity", fmtTime(c.LastActivity)},
					})
					if c.Guild != nil {
						t.AppendRow(table.Row{"Guild", fmt.Sprintf("[%s] %s", c.Guild.Tag, c.Guild.Position)})
					}
					t.AppendSeparator()
					for _, name := range sortedKeys(c.Skills) {
						t.AppendRow(table.Row{name, c.Skills[name].Level})
					}
				})
			})
		},
	}
}

func newCharacterMetricsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <hashed-id>",
		Short: "Show activity counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				m, err := a.svc.CharacterMetrics(ctx, args[0])
				if err != nil {
					return err
				}
				groups := map[string]map[string]int64{
					"dungeon": m.Metrics.Dungeon, "battle": m.Metrics.Battle, "hunt": m.Metrics.Hunt,
					"market": m.Metrics.Market, "world_boss": m.Metrics.WorldBoss, "shrine": m.Metrics.Shrine,
					"woodcutting": m.Metrics.Woodcutting, "mining": m.Metrics.Mining, "fishing": m.Metrics.Fishing,
					"smelting": m.Metrics.Smelting, "cooking": m.Metrics.Cooking, "forge": m.Metrics.Forge,
					"alchemy": m.Metrics.Alchemy, "pet_battle": m.Metrics.PetBattle, "travel": m.Metrics.Travel,
				}
				return o.print(cmd.OutOrStdout(), m, func(t table.Writer) {
					t.AppendHeader(table.Row{"Group", "Counter", "Value"})
					for _, g := range sortedKeys(groups) {
						for _, k := range sortedKeys(groups[g]) {
							t.AppendRow(table.Row{g, k, groups[g][k]})
						}
					}
				})
			})
		},
	}
}

func newCharacterEffectsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "effects <hashed-id>",
		Short: "List active effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				effects, err := a.svc.CharacterEffects(ctx, args[0])
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), effects, func(t table.Writer) {
					t.AppendHeader(table.Row{"Source", "Attribute", "Value", "Expires"})
					for _, e := range effects.Effects {
						t.AppendRow(table.Row{e.Source, e.Attribute, fmt.Sprintf("%d %s", e.Value, e.ValueType), fmtTime(e.ExpireAt)})
					}
				})
			})
		},
	}
}

func newCharacterAltsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "alts <hashed-id>",
		Short: "List the other characters on the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				alts, err := a.svc.CharacterAlts(ctx, args[0])
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), alts, func(t table.Writer) {
					t.AppendHeader(table.Row{"Hashed ID", "Name", "Class", "Total level"})
					for _, c := range alts.Characters {
						t.AppendRow(table.Row{c.HashedID, c.Name, c.Class, c.TotalLevel})
					}
				})
			})
		},
	}
}

func newCharacterMuseumCmd(o *options) *cobra.Command {
	var (
		category string
		page     int
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "museum <hashed-id>",
		Short: "List museum items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cat model.MuseumCategory
			if category != "" {
				c, err := model.ParseMuseumCategory(category)
				if err != nil {
					return err
				}
				cat = c
			}

			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				var items []model.MuseumItem
				if all {
					pages, err := pagination.NewBatchFetcher[[]model.MuseumItem](a.svc.MuseumPages(args[0], cat), pagination.DefaultConfig()).FetchAllPages(ctx)
					if err != nil {
						return err
					}
					for _, p := range pagination.Ordered(pages) {
						items = append(items, p...)
					}
				} else {
					museum, err := a.svc.CharacterMuseum(ctx, args[0], api.MuseumOptions{Category: cat, Page: page})
					if err != nil {
						return err
					}
					items = museum.Items
				}

				return o.print(cmd.OutOrStdout(), items, func(t table.Writer) {
					t.AppendHeader(table.Row{"Category", "Name", "Quantity"})
					for _, it := range items {
						t.AppendRow(table.Row{it.Category, it.Name, it.Quantity})
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Museum category (skins, backgrounds, guild_icons, pets, collectibles, bestiary)")
	cmd.Flags().IntVar(&page, "page", 0, "Page to fetch")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	return cmd
}

func newCharacterActionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "action <hashed-id>",
		Short: "Show what the character is doing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				action, err := a.svc.CharacterAction(ctx, args[0])
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), action, func(t table.Writer) {
					t.AppendRows([]table.Row{
						{"Type", action.Type},
						{"Title", action.Title},
						{"Item", action.Item},
						{"Started", fmtTime(action.StartedAt)},
						{"Expires", fmtTime(action.ExpiresAt)},
					})
				})
			})
		},
	}
}

func newCharacterPetsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pets <hashed-id>",
		Short: "List pets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				pets, err := a.svc.CharacterPets(ctx, args[0])
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), pets, func(t table.Writer) {
					t.AppendHeader(table.Row{"ID", "Name", "Level", "Quality", "Health", "Hunger", "Equipped"})
					for _, p := range pets.Pets {
						name := p.Name
						if p.CustomName != "" {
							name = p.CustomName
						}
						t.AppendRow(table.Row{p.ID, name, p.Level, p.Quality,
							fmt.Sprintf("%d%%", p.Health.Percentage), fmt.Sprintf("%d%%", p.Hunger.Percentage), p.Equipped})
					}
				})
			})
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
