package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/codec"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

// engineFlags are the per-call ordering options shared by the reorder
// commands. A flag only overrides the configuration when it was given.
type engineFlags struct {
	clamp       bool
	outOfRange  bool
	insertAfter bool
	refresh     bool
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.clamp, "clamp", false, "clamp requested orders into the current range")
	fs.BoolVar(&f.outOfRange, "allow-out-of-range", false, "accept requested orders outside the current range")
	fs.BoolVar(&f.insertAfter, "insert-after", false, "place repaired items after the current maximum")
	fs.BoolVar(&f.refresh, "refresh", false, "renumber the result densely from zero")
}

func (f *engineFlags) options(cmd *cobra.Command) []ordering.Option {
	var opts []ordering.Option
	fs := cmd.Flags()
	if fs.Changed("clamp") {
		opts = append(opts, ordering.WithClampRange(f.clamp))
	}
	if fs.Changed("allow-out-of-range") {
		opts = append(opts, ordering.WithAllowOrdersOutOfRange(f.outOfRange))
	}
	if fs.Changed("insert-after") {
		opts = append(opts, ordering.WithInsertAfterOnly(f.insertAfter))
	}
	if fs.Changed("refresh") {
		opts = append(opts, ordering.WithRefreshSequence(f.refresh))
	}
	return opts
}

// change is one parsed --set key=order argument.
type change struct {
	key   string
	order int
}

func parseChanges(args []string) ([]change, error) {
	changes := make([]change, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid change %q: expected key=order", arg)
		}
		order, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || order < 0 {
			return nil, fmt.Errorf("invalid change %q: order must be a non-negative integer", arg)
		}
		changes = append(changes, change{key: key, order: order})
	}
	return changes, nil
}

// changeRecords turns changes into records, resolving each textual key to
// the typed key of the matching record so numeric keys work from the
// command line. Unmatched keys are kept as strings and reported by the
// engine as unknown items.
func changeRecords(records []ordering.Record, changes []change, cfg ordering.Config) []ordering.Record {
	acc := ordering.NewRecordAccessor(cfg)
	byText := make(map[string]any, len(records))
	for _, rec := range records {
		if key, ok := acc.Key(rec); ok {
			byText[fmt.Sprint(key)] = key
		}
	}
	out := make([]ordering.Record, 0, len(changes))
	for _, c := range changes {
		var key any = c.key
		if typed, ok := byText[c.key]; ok {
			key = typed
		}
		out = append(out, ordering.Record{cfg.PrimaryKey: key, cfg.OrderKey: c.order})
	}
	return out
}

func readRecords(path string) ([]ordering.Record, codec.Format, error) {
	format, err := codec.FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := codec.Decode(data, format)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, format, nil
}

// outputFormat returns the --format override or the input format.
func outputFormat(flag string, input codec.Format) (codec.Format, error) {
	if flag == "" {
		return input, nil
	}
	return codec.ParseFormat(flag)
}

func itemsFromRecords(records []ordering.Record, cfg ordering.Config) []ordering.Item {
	acc := ordering.NewRecordAccessor(cfg)
	items := make([]ordering.Item, 0, len(records))
	for _, rec := range records {
		var id string
		if key, ok := acc.Key(rec); ok {
			id = fmt.Sprint(key)
		}
		order, field := acc.Order(rec)
		if field == ordering.FieldSet {
			items = append(items, ordering.NewItem(id, order))
		} else {
			items = append(items, ordering.NewUnorderedItem(id))
		}
	}
	return items
}
