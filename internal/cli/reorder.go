package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/codec"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

func newReorderCmd(a *app) *cobra.Command {
	var (
		sets      []string
		outputDir string
		format    string
		flags     engineFlags
	)

	cmd := &cobra.Command{
		Use:   "reorder FILE...",
		Short: "Repair and reorder collection documents",
		Long: `Reorder repairs empty and duplicate order values of every FILE and applies
the requested changes. Each change moves one item to a new order value and
shifts the items in between.

Results are printed to stdout, or written to --output DIR under the input
file name. Files are processed concurrently.`,
		Example: `  orderctl reorder tasks.json --set task-7=0
  orderctl reorder a.yaml b.yaml --refresh --output out/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseChanges(sets)
			if err != nil {
				return err
			}
			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			engine := ordering.NewRecordEngine(a.cfg.Ordering).WithLogger(a.logger)
			opts := flags.options(cmd)
			results := make([][]byte, len(args))

			var g errgroup.Group
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range args {
				g.Go(func() error {
					out, err := reorderFile(engine, path, changes, format, opts)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					if outputDir != "" {
						dst := filepath.Join(outputDir, filepath.Base(path))
						if err := os.WriteFile(dst, out, 0o644); err != nil {
							return fmt.Errorf("failed to write %s: %w", dst, err)
						}
						a.logger.Info("wrote reordered collection", "src", path, "dst", dst)
						return nil
					}
					results[i] = out
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if outputDir != "" {
				return nil
			}
			w := cmd.OutOrStdout()
			for i, out := range results {
				if len(args) > 1 {
					fmt.Fprintf(w, "==> %s <==\n", args[i])
				}
				if _, err := w.Write(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "change as key=order, may be repeated")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "write results into this directory instead of stdout")
	cmd.Flags().StringVar(&format, "format", "", "output format: json, yaml or msgpack (default is the input format)")
	flags.register(cmd.Flags())
	return cmd
}

func reorderFile(engine *ordering.Engine[ordering.Record, any], path string, changes []change, format string, opts []ordering.Option) ([]byte, error) {
	records, inFormat, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	outFormat, err := outputFormat(format, inFormat)
	if err != nil {
		return nil, err
	}
	result, err := engine.Reorder(records, changeRecords(records, changes, engine.Config()), opts...)
	if err != nil {
		return nil, err
	}
	return codec.Encode(result, outFormat)
}
