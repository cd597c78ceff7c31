package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/idwrap"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/orderstore"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/service/sorder"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage ordered lists stored in a SQLite database",
	}
	cmd.PersistentFlags().String("db", "", "SQLite database path (default \"orderctl.db\")")
	_ = a.v.BindPFlag("database", cmd.PersistentFlags().Lookup("db"))

	cmd.AddCommand(
		newListImportCmd(a),
		newListLsCmd(a),
		newListShowCmd(a),
		newListReorderCmd(a),
		newListMoveCmd(a),
		newListRepairCmd(a),
		newListAppendCmd(a),
		newListDeleteCmd(a),
	)
	return cmd
}

// withService opens the configured database for the duration of fn.
func (a *app) withService(ctx context.Context, fn func(store *orderstore.Store, svc sorder.OrderService) error) error {
	store, err := orderstore.Open(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := ordering.NewItemEngine(a.cfg.Ordering)
	return fn(store, sorder.New(store, engine, a.logger))
}

func parseListID(s string) (idwrap.IDWrap, error) {
	id, err := idwrap.NewText(s)
	if err != nil {
		return idwrap.IDWrap{}, fmt.Errorf("invalid list id %q: %w", s, err)
	}
	return id, nil
}

func newListImportCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a collection document as a new list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, _, err := readRecords(args[0])
			if err != nil {
				return err
			}
			if err := ordering.NewRecordEngine(a.cfg.Ordering).Validate(records, false); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if name == "" {
				name = args[0]
			}
			return a.withService(cmd.Context(), func(_ *orderstore.Store, svc sorder.OrderService) error {
				list, err := svc.Import(cmd.Context(), name, itemsFromRecords(records, a.cfg.Ordering))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), list.ID.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "list name (default is the file path)")
	return cmd
}

func newListLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Show all lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(store *orderstore.Store, _ sorder.OrderService) error {
				lists, err := store.Lists(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCREATED")
				for _, l := range lists {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", l.ID, l.Name, l.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return tw.Flush()
			})
		},
	}
}

func newListShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show LIST_ID",
		Short: "Print the items of a list in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseListID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(_ *orderstore.Store, svc sorder.OrderService) error {
				items, err := svc.Items(cmd.Context(), listID)
				if err != nil {
					return err
				}
				return writeItems(cmd.OutOrStdout(), items)
			})
		},
	}
}

func newListReorderCmd(a *app) *cobra.Command {
	var (
		sets  []string
		flags engineFlags
	)
	cmd := &cobra.Command{
		Use:   "reorder LIST_ID",
		Short: "Apply reorder changes to a stored list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseListID(args[0])
			if err != nil {
				return err
			}
			parsed, err := parseChanges(sets)
			if err != nil {
				return err
			}
			changes := make([]ordering.Item, len(parsed))
			for i, c := range parsed {
				changes[i] = ordering.NewItem(c.key, c.order)
			}
			return a.withService(cmd.Context(), func(_ *orderstore.Store, svc sorder.OrderService) error {
				items, err := svc.Reorder(cmd.Context(), listID, changes, flags.options(cmd)...)
				if err != nil {
					return err
				}
				return writeItems(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "change as key=order, may be repeated")
	flags.register(cmd.Flags())
	return cmd
}

func newListMoveCmd(a *app) *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "move LIST_ID",
		Short: "Move an item of a stored list by position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseListID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(_ *orderstore.Store, svc sorder.OrderService) error {
				items, err := svc.Move(cmd.Context(), listID, from, to)
				if err != nil {
					return err
				}
				return writeItems(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "current index of the item")
	cmd.Flags().IntVar(&to, "to", 0, "target index of the item")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newListRepairCmd(a *app) *cobra.Command {
	var flags engineFlags
	cmd := &cobra.Command{
		Use:   "repair LIST_ID",
		Short: "Assign positions to items with empty or duplicate positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseListID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(_ *orderstore.Store, svc sorder.OrderService) error {
				items, err := svc.Repair(cmd.Context(), listID, flags.options(cmd)...)
				if err != nil {
					return err
				}
				return writeItems(cmd.OutOrStdout(), items)
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newListAppendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "append LIST_ID ITEM_ID",
		Short: "Add an item after the last one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseListID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(_ *orderstore.Store, svc sorder.OrderService) error {
				item, err := svc.Append(cmd.Context(), listID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", item.OrderValue(), item.ID)
				return nil
			})
		},
	}
}

func newListDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete LIST_ID",
		Short: "Delete a list and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseListID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(store *orderstore.Store, _ sorder.OrderService) error {
				return store.DeleteList(cmd.Context(), listID)
			})
		},
	}
}

func writeItems(w io.Writer, items []ordering.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tID")
	for _, item := range items {
		pos := "-"
		if item.Order != nil {
			pos = strconv.Itoa(*item.Order)
		}
		fmt.Fprintf(tw, "%s\t%s\n", pos, item.ID)
	}
	return tw.Flush()
}
