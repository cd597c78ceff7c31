package ordering

import "slices"

// MoveItemInArray returns a copy of items with the element at prevIndex moved
// to newIndex. Both indices are clamped into range. Order values are not
// touched. The input is never modified, even when no move happens.
func MoveItemInArray[T any](items []T, prevIndex, newIndex int) []T {
	return MoveItemInPlace(slices.Clone(items), prevIndex, newIndex)
}

// MoveItemInPlace moves the element at prevIndex to newIndex within items and
// returns items. Callers must serialise access to the slice.
func MoveItemInPlace[T any](items []T, prevIndex, newIndex int) []T {
	if len(items) == 0 {
		return items
	}
	from := clampIndex(prevIndex, len(items))
	to := clampIndex(newIndex, len(items))
	if from == to {
		return items
	}
	moved := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = moved
	return items
}

func clampIndex(idx, length int) int {
	return min(max(idx, 0), length-1)
}

// ReorderByIndex moves the item at prevIndex to newIndex and recomputes the
// orders of the items between both positions. Indices address positions in
// the collection sorted by order. The collection must already be well
// formed: every item needs a key and a unique set order, nothing is
// repaired. The result is a new slice sorted by order; when the clamped
// indices are equal only the sorting is applied.
func (e *Engine[T, K]) ReorderByIndex(items []T, prevIndex, newIndex int) ([]T, error) {
	if err := e.validateMovable(items); err != nil {
		return nil, err
	}
	return e.reorderByIndex(slices.Clone(items), prevIndex, newIndex), nil
}

// ReorderByIndexInPlace is ReorderByIndex operating on items itself. Callers
// must serialise access to the slice.
func (e *Engine[T, K]) ReorderByIndexInPlace(items []T, prevIndex, newIndex int) ([]T, error) {
	if err := e.validateMovable(items); err != nil {
		return nil, err
	}
	return e.reorderByIndex(items, prevIndex, newIndex), nil
}

// validateMovable rejects collections the index shift cannot keep unique:
// missing keys or orders and duplicated orders.
func (e *Engine[T, K]) validateMovable(items []T) error {
	if items == nil {
		return invalidArgumentError(e.cfg)
	}
	if err := e.validateComplete(items, e.cfg); err != nil {
		return err
	}
	if dup, found := e.firstDuplicateOrEmpty(items); found {
		return invalidItemError(dup, e.cfg)
	}
	return nil
}

func (e *Engine[T, K]) reorderByIndex(items []T, prevIndex, newIndex int) []T {
	if len(items) == 0 {
		return items
	}
	e.sortByOrder(items)
	from := clampIndex(prevIndex, len(items))
	to := clampIndex(newIndex, len(items))
	if from == to {
		return items
	}

	// The moved item takes over the order of the item it displaces.
	target, _ := e.acc.Order(items[to])
	MoveItemInPlace(items, from, to)

	step, lo, hi := -1, from, to-1
	if from > to {
		step, lo, hi = 1, to+1, from
	}
	for i := lo; i <= hi; i++ {
		order, _ := e.acc.Order(items[i])
		items[i] = e.acc.SetOrder(items[i], order+step)
	}
	items[to] = e.acc.SetOrder(items[to], target)

	e.sortByOrder(items)
	return items
}
