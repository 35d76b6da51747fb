package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/itemmatch"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
)

// DefaultItemsFile caches the item names used for fuzzy matching.
const DefaultItemsFile = "idlemmo-items.txt"

func newMatchCmd(o *options) *cobra.Command {
	var (
		file    string
		top     int
		refresh bool
		types   []string
	)

	cmd := &cobra.Command{
		Use:   "match [name]",
		Short: "Find the item names closest to a (misspelled) name",
		Long: `Find the item names closest to a (misspelled) name.

Names come from a local file. Use --refresh to rebuild it from the item
search endpoint, which pages through every item type.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("itemmatch")
			m, err := itemmatch.Load(file, logger)
			if err != nil && !(refresh && errors.Is(err, fs.ErrNotExist)) {
				return fmt.Errorf("%w (run with --refresh to build it)", err)
			}

			if refresh {
				itemTypes := make([]model.ItemType, 0, len(types))
				for _, s := range types {
					t, err := model.ParseItemType(s)
					if err != nil {
						return err
					}
					itemTypes = append(itemTypes, t)
				}

				err := withApp(cmd, o, func(ctx context.Context, a *app) error {
					n, err := m.Refresh(ctx, a.svc, itemTypes...)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d item names\n", n)
					return nil
				})
				if err != nil {
					return err
				}
				if err := m.Save(file); err != nil {
					return err
				}
			}

			if len(args) == 0 {
				if !refresh {
					return fmt.Errorf("a name is required")
				}
				return nil
			}

			matches := m.Top(args[0], top)
			if len(matches) == 0 {
				return fmt.Errorf("no item names in %s", file)
			}
			return o.print(cmd.OutOrStdout(), matches, func(t table.Writer) {
				t.AppendHeader(table.Row{"Name", "Score"})
				for _, mt := range matches {
					t.AppendRow(table.Row{mt.Name, fmt.Sprintf("%.3f", mt.Score)})
				}
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", DefaultItemsFile, "Item name file")
	cmd.Flags().IntVar(&top, "top", 5, "Number of matches to show")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rebuild the name file from the API first")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Limit --refresh to these item types")
	return cmd
}
