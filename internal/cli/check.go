package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/codec"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

// checkResult is the structured form of one checked file.
type checkResult struct {
	File         string               `json:"file" yaml:"file"`
	Report       ordering.Report[any] `json:"report" yaml:"report"`
	FirstProblem any                  `json:"firstProblem,omitempty" yaml:"first_problem,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Report empty, duplicate and missing order values",
		Long: `Check inspects every FILE without changing it. It exits with status 2 when
any collection has items without an order, duplicate keys or duplicate
orders. Gaps between orders are reported but are not problems.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := ordering.NewRecordEngine(a.cfg.Ordering).WithLogger(a.logger)

			results := make([]checkResult, 0, len(args))
			healthy := true
			for _, path := range args {
				records, _, err := readRecords(path)
				if err != nil {
					return err
				}
				report, err := engine.Inspect(records)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				res := checkResult{File: path, Report: report}
				if first, found, err := engine.HasDuplicateOrEmptyOrders(records); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				} else if found {
					res.FirstProblem = first
				}
				healthy = healthy && report.Healthy()
				results = append(results, res)
			}

			if err := writeCheckResults(cmd.OutOrStdout(), results, format); err != nil {
				return err
			}
			if !healthy {
				return errProblemsFound
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "print the reports as json or yaml instead of text")
	return cmd
}

func writeCheckResults(w io.Writer, results []checkResult, format string) error {
	if format != "" {
		f, err := codec.ParseFormat(format)
		if err != nil {
			return err
		}
		out, err := codec.EncodeValue(results, f)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	for _, res := range results {
		r := res.Report
		status := "ok"
		if !r.Healthy() {
			status = "problems found"
		}
		fmt.Fprintf(w, "%s: %s\n", res.File, status)
		fmt.Fprintf(w, "  items:            %d (%d ordered)\n", r.Total, r.Ordered)
		if r.Ordered > 0 {
			fmt.Fprintf(w, "  range:            [%d, %d]\n", r.Min, r.Max)
		}
		fmt.Fprintf(w, "  empty orders:     %s\n", joinValues(r.EmptyKeys))
		fmt.Fprintf(w, "  duplicate keys:   %s\n", joinValues(r.DuplicateKeys))
		fmt.Fprintf(w, "  duplicate orders: %s\n", joinValues(r.DuplicateOrders))
		fmt.Fprintf(w, "  gaps:             %s\n", joinGaps(r.Gaps))
		if res.FirstProblem != nil {
			fmt.Fprintf(w, "  first problem:    %v\n", res.FirstProblem)
		}
	}
	return nil
}

func joinValues[V any](values []V) string {
	if len(values) == 0 {
		return "none"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

func joinGaps(gaps []ordering.Gap) string {
	if len(gaps) == 0 {
		return "none"
	}
	parts := make([]string, len(gaps))
	for i, g := range gaps {
		if g.Start == g.End {
			parts[i] = fmt.Sprint(g.Start)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", g.Start, g.End)
		}
	}
	return strings.Join(parts, ", ")
}
