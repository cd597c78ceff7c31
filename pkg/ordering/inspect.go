package ordering

import "slices"

// Gap is a run of unused order values between two used ones.
type Gap struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
	Size  int `json:"size" yaml:"size"`
}

// Report summarises the ordering health of a collection.
type Report[K comparable] struct {
	Total int `json:"total" yaml:"total"`
	// Min and Max are meaningful only when Ordered > 0.
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Ordered int `json:"ordered" yaml:"ordered"`

	EmptyKeys       []K   `json:"emptyKeys,omitempty" yaml:"empty_keys,omitempty"`
	DuplicateKeys   []K   `json:"duplicateKeys,omitempty" yaml:"duplicate_keys,omitempty"`
	DuplicateOrders []int `json:"duplicateOrders,omitempty" yaml:"duplicate_orders,omitempty"`
	Gaps            []Gap `json:"gaps,omitempty" yaml:"gaps,omitempty"`

	// ZeroBased is true when the orders are exactly 0..Total-1.
	ZeroBased bool `json:"zeroBased" yaml:"zero_based"`
}

// Healthy reports whether every item has a unique order and every key is
// unique. Gaps are allowed.
func (r Report[K]) Healthy() bool {
	return len(r.EmptyKeys) == 0 && len(r.DuplicateKeys) == 0 && len(r.DuplicateOrders) == 0
}

// Inspect builds a Report for items. Structurally invalid collections fail
// with CodeInvalidItem.
func (e *Engine[T, K]) Inspect(items []T) (Report[K], error) {
	var report Report[K]
	if err := e.validate(items, false, e.cfg); err != nil {
		return report, err
	}
	report.Total = len(items)

	seenKeys := make(map[K]int, len(items))
	orderCount := make(map[int]int, len(items))
	orders := make([]int, 0, len(items))
	for _, item := range items {
		key, _ := e.acc.Key(item)
		seenKeys[key]++
		if seenKeys[key] == 2 {
			report.DuplicateKeys = append(report.DuplicateKeys, key)
		}

		order, state := e.acc.Order(item)
		if state != FieldSet {
			report.EmptyKeys = append(report.EmptyKeys, key)
			continue
		}
		orderCount[order]++
		if orderCount[order] == 2 {
			report.DuplicateOrders = append(report.DuplicateOrders, order)
		}
		orders = append(orders, order)
	}

	report.Ordered = len(orders)
	if len(orders) == 0 {
		return report, nil
	}
	slices.Sort(orders)
	slices.Sort(report.DuplicateOrders)
	report.Min, report.Max = orders[0], orders[len(orders)-1]
	report.Gaps = findGaps(orders)
	report.ZeroBased = report.Healthy() && report.Min == 0 && report.Max == report.Total-1
	return report, nil
}

// findGaps expects sorted orders.
func findGaps(orders []int) []Gap {
	var gaps []Gap
	for i := 1; i < len(orders); i++ {
		if orders[i] > orders[i-1]+1 {
			gaps = append(gaps, Gap{
				Start: orders[i-1] + 1,
				End:   orders[i] - 1,
				Size:  orders[i] - orders[i-1] - 1,
			})
		}
	}
	return gaps
}

// Compact returns a copy of items renumbered densely as 0..N-1 in their
// current order. Items must be well formed.
func (e *Engine[T, K]) Compact(items []T) ([]T, error) {
	if items == nil {
		return nil, invalidArgumentError(e.cfg)
	}
	if err := e.validateComplete(items, e.cfg); err != nil {
		return nil, err
	}
	return e.compactInPlace(slices.Clone(items)), nil
}

// KeysInOrder returns the primary keys of items sorted by order, items without
// an order last.
func (e *Engine[T, K]) KeysInOrder(items []T) []K {
	sorted := slices.Clone(items)
	e.sortByOrder(sorted)
	keys := make([]K, 0, len(sorted))
	for _, item := range sorted {
		if key, ok := e.acc.Key(item); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// PlanAppend returns the order a new item appended at the end should take:
// the current maximum plus one, or 0 for a collection without orders.
func (e *Engine[T, K]) PlanAppend(items []T) int {
	_, hi, ok := e.bounds(items)
	if !ok {
		return 0
	}
	return hi + 1
}
