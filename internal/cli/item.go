package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/api"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/Sternrassler/idlemmo-client/pkg/pagination"
)

func newItemCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Search and inspect items",
	}
	cmd.AddCommand(newItemSearchCmd(o), newItemInspectCmd(o), newItemMarketCmd(o))
	return cmd
}

func newItemSearchCmd(o *options) *cobra.Command {
	var (
		itemType string
		page     int
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search items by name and/or type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := api.ItemSearch{Page: page}
			if len(args) == 1 {
				opts.Query = args[0]
			}
			if itemType != "" {
				t, err := model.ParseItemType(itemType)
				if err != nil {
					return err
				}
				opts.Type = t
			}
			if opts.Query == "" && opts.Type == "" {
				return fmt.Errorf("a query or --type is required")
			}

			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				var items []model.Item
				if all {
					pages, err := pagination.NewBatchFetcher[[]model.Item](a.svc.ItemSearchPages(opts), pagination.DefaultConfig()).FetchAllPages(ctx)
					if err != nil {
						return err
					}
					for _, p := range pagination.Ordered(pages) {
						items = append(items, p...)
					}
				} else {
					res, err := a.svc.SearchItems(ctx, opts)
					if err != nil {
						return err
					}
					items = res.Items
					if !o.json && res.Pagination.HasMore() {
						defer fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d, use --page or --all for more.\n",
							res.Pagination.CurrentPage, res.Pagination.LastPage)
					}
				}

				return o.print(cmd.OutOrStdout(), items, func(t table.Writer) {
					t.AppendHeader(table.Row{"Hashed ID", "Name", "Type", "Quality", "Vendor price"})
					for _, it := range items {
						t.AppendRow(table.Row{it.HashedID, it.Name, it.Type, it.Quality, fmtOptional(it.VendorPrice)})
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&itemType, "type", "", "Item type, e.g. ore or FISHING_ROD")
	cmd.Flags().IntVar(&page, "page", 0, "Page to fetch")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	return cmd
}

func newItemInspectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <hashed-id>",
		Short: "Show item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				res, err := a.svc.InspectItem(ctx, args[0])
				if err != nil {
					return err
				}
				it := res.Item
				return o.print(cmd.OutOrStdout(), res, func(t table.Writer) {
					t.SetTitle(it.Name)
					t.AppendRows([]table.Row{
						{"Type", it.Type},
						{"Quality", it.Quality},
						{"Tradeable", it.Tradeable},
						{"Vendor price", fmtOptional(it.VendorPrice)},
						{"Max tier", it.MaxTier},
					})
					if len(it.Stats) > 0 {
						t.AppendSeparator()
						for _, k := range sortedKeys(it.Stats) {
							t.AppendRow(table.Row{k, it.Stats[k]})
						}
					}
					if it.WhereToFind != nil {
						t.AppendSeparator()
						for _, e := range it.WhereToFind.Enemies {
							t.AppendRow(table.Row{"Dropped by", e.Name})
						}
						for _, d := range it.WhereToFind.Dungeons {
							t.AppendRow(table.Row{"Found in", d.Name})
						}
						for _, b := range it.WhereToFind.WorldBosses {
							t.AppendRow(table.Row{"World boss", b.Name})
						}
					}
				})
			})
		},
	}
}

func newItemMarketCmd(o *options) *cobra.Command {
	var (
		tier       int
		marketType string
	)

	cmd := &cobra.Command{
		Use:   "market <hashed-id>",
		Short: "Show market price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := model.ParseMarketType(marketType)
			if err != nil {
				return err
			}

			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				history, err := a.svc.MarketHistory(ctx, args[0], api.MarketHistoryOptions{Tier: tier, Type: mt})
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), history, func(t table.Writer) {
					t.SetTitle(fmt.Sprintf("Market history (%s, tier %d)", mt, tier))
					t.AppendHeader(table.Row{"Date", "Sold", "Average price"})
					for _, h := range history.HistoryData {
						t.AppendRow(table.Row{fmtTime(h.Date), h.TotalSold, fmt.Sprintf("%.2f", h.AveragePrice)})
					}
					if len(history.LatestSold) > 0 {
						t.AppendSeparator()
						for _, s := range history.LatestSold {
							t.AppendRow(table.Row{fmtTime(s.SoldAt), s.Quantity, s.PricePerItem})
						}
					}
				})
			})
		},
	}

	cmd.Flags().IntVar(&tier, "tier", 0, "Item tier")
	cmd.Flags().StringVar(&marketType, "type", string(model.MarketListings), "listings or orders")
	return cmd
}
