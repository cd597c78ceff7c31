// Package ordering validates, repairs and reorders collections of items that
// carry a primary key and an integer order value.
//
// The engine works on in-memory slices only. It never mutates its input except
// through the explicitly named in-place operations, and it never persists
// anything; callers store the orders it computes.
package ordering

import (
	"cmp"
	"log/slog"
	"slices"
)

// Engine reorders collections of T identified by keys of type K. An Engine
// holds only immutable configuration and is safe for concurrent use.
type Engine[T any, K comparable] struct {
	acc    Accessor[T, K]
	cfg    Config
	logger *slog.Logger
}

func New[T any, K comparable](acc Accessor[T, K], cfg Config) *Engine[T, K] {
	return &Engine[T, K]{
		acc:    acc,
		cfg:    cfg.withDefaults(),
		logger: slog.New(slog.DiscardHandler),
	}
}

func NewItemEngine(cfg Config) *Engine[Item, string] {
	return New[Item, string](ItemAccessor{}, cfg)
}

func NewRecordEngine(cfg Config) *Engine[Record, any] {
	return New[Record, any](NewRecordAccessor(cfg), cfg)
}

// DefaultItemEngine is a default-configured engine for Item collections.
var DefaultItemEngine = NewItemEngine(DefaultConfig())

// WithLogger returns a copy of the engine that reports repairs to logger.
func (e *Engine[T, K]) WithLogger(logger *slog.Logger) *Engine[T, K] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := *e
	out.logger = logger
	return &out
}

func (e *Engine[T, K]) Config() Config {
	return e.cfg
}

func (e *Engine[T, K]) Accessor() Accessor[T, K] {
	return e.acc
}

// Reorder repairs items and then applies changes one at a time, in slice
// order. Each change names an item by primary key and carries its requested
// order. The returned slice is new and sorted ascending by order.
func (e *Engine[T, K]) Reorder(items []T, changes []T, opts ...Option) ([]T, error) {
	cfg := e.cfg.apply(opts)
	if items == nil {
		return nil, invalidArgumentError(cfg)
	}
	if err := e.validate(items, false, cfg); err != nil {
		return nil, err
	}

	result := e.repair(items, cfg)
	if len(changes) == 0 {
		if cfg.RefreshSequence {
			result = e.compactInPlace(result)
		}
		return result, nil
	}

	if err := e.validateComplete(changes, cfg); err != nil {
		return nil, err
	}

	minOrder, maxOrder, _ := e.bounds(result)
	for _, change := range changes {
		key, _ := e.acc.Key(change)
		want, _ := e.acc.Order(change)

		idx := e.indexOf(result, key)
		if idx < 0 {
			return nil, unknownItemError(change, key, cfg)
		}
		if cfg.ClampRange {
			want = min(max(want, minOrder), maxOrder)
		}
		if (want < minOrder || want > maxOrder) && !cfg.AllowOrdersOutOfRange {
			return nil, outOfRangeError(change, key, want, minOrder, maxOrder, cfg)
		}
		e.shift(result, idx, want)
	}

	result = e.repair(result, cfg)
	if cfg.RefreshSequence {
		result = e.compactInPlace(result)
	}
	return result, nil
}

// Repair assigns unique order values to items whose order is empty or
// duplicated and returns a new slice sorted ascending by order.
func (e *Engine[T, K]) Repair(items []T, opts ...Option) ([]T, error) {
	cfg := e.cfg.apply(opts)
	if items == nil {
		return nil, invalidArgumentError(cfg)
	}
	if err := e.validate(items, false, cfg); err != nil {
		return nil, err
	}
	result := e.repair(items, cfg)
	if cfg.RefreshSequence {
		result = e.compactInPlace(result)
	}
	return result, nil
}

// shift moves result[idx] to order want. Items between the old and the new
// order step by one towards the vacated value. result is re-sorted.
func (e *Engine[T, K]) shift(result []T, idx int, want int) {
	prev, _ := e.acc.Order(result[idx])
	if prev == want {
		return
	}
	for i, item := range result {
		if i == idx {
			continue
		}
		order, state := e.acc.Order(item)
		if state != FieldSet {
			continue
		}
		switch {
		case want > prev && order > prev && order <= want:
			result[i] = e.acc.SetOrder(item, order-1)
		case want < prev && order >= want && order < prev:
			result[i] = e.acc.SetOrder(item, order+1)
		}
	}
	result[idx] = e.acc.SetOrder(result[idx], want)
	e.sortByOrder(result)
}

func (e *Engine[T, K]) indexOf(items []T, key K) int {
	return slices.IndexFunc(items, func(item T) bool {
		k, ok := e.acc.Key(item)
		return ok && k == key
	})
}

// bounds returns the smallest and largest set order. ok is false when no item
// has an order.
func (e *Engine[T, K]) bounds(items []T) (lo, hi int, ok bool) {
	for _, item := range items {
		order, state := e.acc.Order(item)
		if state != FieldSet {
			continue
		}
		if !ok {
			lo, hi, ok = order, order, true
			continue
		}
		lo = min(lo, order)
		hi = max(hi, order)
	}
	return lo, hi, ok
}

// compareOrder sorts set orders ascending and everything else last.
func (e *Engine[T, K]) compareOrder(a, b T) int {
	ao, as := e.acc.Order(a)
	bo, bs := e.acc.Order(b)
	aSet, bSet := as == FieldSet, bs == FieldSet
	switch {
	case aSet && bSet:
		return cmp.Compare(ao, bo)
	case aSet:
		return -1
	case bSet:
		return 1
	default:
		return 0
	}
}

func (e *Engine[T, K]) sortByOrder(items []T) {
	slices.SortStableFunc(items, e.compareOrder)
}
