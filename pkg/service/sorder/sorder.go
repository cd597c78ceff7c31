// Package sorder loads ordered lists from the store, runs the ordering engine
// on them and persists the computed positions in one transaction.
package sorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/idwrap"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/orderstore"
)

type OrderService struct {
	store  *orderstore.Store
	engine *ordering.Engine[ordering.Item, string]
	logger *slog.Logger
}

func New(store *orderstore.Store, engine *ordering.Engine[ordering.Item, string], logger *slog.Logger) OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = ordering.DefaultItemEngine
	}
	return OrderService{
		store:  store,
		engine: engine.WithLogger(logger),
		logger: logger,
	}
}

// Import creates a list holding items as given. Missing orders are kept
// empty until the next reorder or repair.
func (s OrderService) Import(ctx context.Context, name string, items []ordering.Item) (orderstore.List, error) {
	if err := s.engine.Validate(items, false); err != nil {
		return orderstore.List{}, s.fail("import", name, err)
	}
	var list orderstore.List
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		repo := s.store.TX(tx)
		list, err = repo.CreateList(ctx, name)
		if err != nil {
			return err
		}
		return repo.Insert(ctx, list.ID, items)
	})
	if err != nil {
		return orderstore.List{}, s.fail("import", name, err)
	}
	s.logger.Info("imported list", "list_id", list.ID.String(), "name", name, "items", len(items))
	return list, nil
}

// Append adds a new item after the current last one. An id already in the
// list fails with orderstore.ErrDuplicateKey.
func (s OrderService) Append(ctx context.Context, listID idwrap.IDWrap, itemID string) (ordering.Item, error) {
	var item ordering.Item
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		items, err := s.load(ctx, tx, listID)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(items, func(it ordering.Item) bool { return it.ID == itemID }) {
			return fmt.Errorf("%w: %s", orderstore.ErrDuplicateKey, itemID)
		}
		item = ordering.NewItem(itemID, s.engine.PlanAppend(items))
		if err := s.engine.Validate([]ordering.Item{item}, true); err != nil {
			return err
		}
		return s.store.TX(tx).Insert(ctx, listID, []ordering.Item{item})
	})
	if err != nil {
		return ordering.Item{}, s.fail("append", listID.String(), err)
	}
	s.logger.Info("ordering operation persisted", "op", "append", "list_id", listID.String(), "item_id", itemID, "order", item.OrderValue())
	return item, nil
}

func (s OrderService) Items(ctx context.Context, listID idwrap.IDWrap) ([]ordering.Item, error) {
	if _, err := s.store.GetList(ctx, listID); err != nil {
		return nil, err
	}
	return s.store.Items(ctx, listID)
}

// Reorder applies changes to the stored list and persists the result.
func (s OrderService) Reorder(ctx context.Context, listID idwrap.IDWrap, changes []ordering.Item, opts ...ordering.Option) ([]ordering.Item, error) {
	return s.mutate(ctx, listID, "reorder", func(items []ordering.Item) ([]ordering.Item, error) {
		return s.engine.Reorder(items, changes, opts...)
	})
}

// Move moves the item at index from to index to in the stored order.
func (s OrderService) Move(ctx context.Context, listID idwrap.IDWrap, from, to int) ([]ordering.Item, error) {
	return s.mutate(ctx, listID, "move", func(items []ordering.Item) ([]ordering.Item, error) {
		return s.engine.ReorderByIndex(items, from, to)
	})
}

// Repair fixes empty and duplicate positions of the stored list.
func (s OrderService) Repair(ctx context.Context, listID idwrap.IDWrap, opts ...ordering.Option) ([]ordering.Item, error) {
	return s.mutate(ctx, listID, "repair", func(items []ordering.Item) ([]ordering.Item, error) {
		return s.engine.Repair(items, opts...)
	})
}

func (s OrderService) Inspect(ctx context.Context, listID idwrap.IDWrap) (ordering.Report[string], error) {
	items, err := s.Items(ctx, listID)
	if err != nil {
		return ordering.Report[string]{}, err
	}
	return s.engine.Inspect(items)
}

func (s OrderService) mutate(ctx context.Context, listID idwrap.IDWrap, op string, fn func([]ordering.Item) ([]ordering.Item, error)) ([]ordering.Item, error) {
	var (
		result  []ordering.Item
		changed []ordering.Item
	)
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		items, err := s.load(ctx, tx, listID)
		if err != nil {
			return err
		}
		result, err = fn(items)
		if err != nil {
			return err
		}
		changed = diff(items, result)
		return s.store.UpdatePositions(ctx, tx, listID, changed)
	})
	if err != nil {
		return nil, s.fail(op, listID.String(), err)
	}
	s.logger.Info("ordering operation persisted",
		"op", op,
		"list_id", listID.String(),
		"items", len(result),
		"updated", len(changed),
	)
	return result, nil
}

// fail logs a failed operation and wraps err as "<op> list <ref>: <err>".
func (s OrderService) fail(op, list string, err error) error {
	s.logger.Warn("ordering operation failed", "op", op, "list", list, "error", err)
	return fmt.Errorf("%s list %s: %w", op, list, err)
}

func (s OrderService) load(ctx context.Context, tx *sql.Tx, listID idwrap.IDWrap) ([]ordering.Item, error) {
	repo := s.store.TX(tx)
	if _, err := repo.GetList(ctx, listID); err != nil {
		return nil, err
	}
	return repo.Items(ctx, listID)
}

// diff returns the items of after whose order differs from before.
func diff(before, after []ordering.Item) []ordering.Item {
	prev := make(map[string]int, len(before))
	for _, item := range before {
		prev[item.ID] = item.OrderValue()
	}
	var changed []ordering.Item
	for _, item := range after {
		if old, ok := prev[item.ID]; !ok || old != item.OrderValue() {
			changed = append(changed, item)
		}
	}
	return changed
}
