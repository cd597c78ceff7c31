package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/codec"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

func newMoveCmd(a *app) *cobra.Command {
	var (
		from, to int
		inPlace  bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "move FILE",
		Short: "Move an item by position and renumber the items in between",
		Long: `Move takes the item at index --from and places it at index --to. The moved
item takes the order of the item it replaces and every item in between steps
by one. Indices are clamped into range. Every item must already carry a key
and an order; run "orderctl reorder" first to repair a collection.`,
		Example: `  orderctl move tasks.json --from 4 --to 0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			records, inFormat, err := readRecords(path)
			if err != nil {
				return err
			}
			outFormat, err := outputFormat(format, inFormat)
			if err != nil {
				return err
			}

			engine := ordering.NewRecordEngine(a.cfg.Ordering).WithLogger(a.logger)
			result, err := engine.ReorderByIndexInPlace(records, from, to)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out, err := codec.Encode(result, outFormat)
			if err != nil {
				return err
			}

			if inPlace {
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				a.logger.Info("moved item", "file", path, "from", from, "to", to)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "current index of the item")
	cmd.Flags().IntVar(&to, "to", 0, "target index of the item")
	cmd.Flags().BoolVarP(&inPlace, "write", "w", false, "write the result back to FILE")
	cmd.Flags().StringVar(&format, "format", "", "output format: json, yaml or msgpack (default is the input format)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
