package ordering

import "slices"

// repair returns a sorted copy of items in which every order is set and
// unique. Items that already hold a unique order keep it.
func (e *Engine[T, K]) repair(items []T, cfg Config) []T {
	result := slices.Clone(items)
	if _, found := e.firstDuplicateOrEmpty(result); !found {
		e.sortByOrder(result)
		return result
	}

	used := make([]int, 0, len(result))
	for _, item := range result {
		if order, state := e.acc.Order(item); state == FieldSet {
			used = insertUsed(used, order)
		}
	}

	claimed := make(map[int]struct{}, len(result))
	reassigned := 0
	for i, item := range result {
		order, state := e.acc.Order(item)
		if state == FieldSet {
			if _, taken := claimed[order]; !taken {
				claimed[order] = struct{}{}
				continue
			}
		}
		next := nextFreeOrder(used, cfg.InsertAfterOnly)
		used = insertUsed(used, next)
		claimed[next] = struct{}{}
		result[i] = e.acc.SetOrder(item, next)
		reassigned++
	}

	e.logger.Debug("repaired order values",
		"reassigned", reassigned,
		"items", len(result),
		"insert_after_only", cfg.InsertAfterOnly,
	)
	e.sortByOrder(result)
	return result
}

// nextFreeOrder picks the order for an item that needs one. used is sorted
// and holds distinct values.
func nextFreeOrder(used []int, insertAfterOnly bool) int {
	if len(used) == 0 {
		return 0
	}
	lo, hi := used[0], used[len(used)-1]
	if insertAfterOnly && hi < MaxOrder {
		return hi + 1
	}
	for i := 1; i < len(used); i++ {
		if used[i] > used[i-1]+1 {
			return used[i-1] + 1
		}
	}
	if lo > 0 {
		return lo - 1
	}
	return hi + 1
}

func insertUsed(used []int, order int) []int {
	idx, found := slices.BinarySearch(used, order)
	if found {
		return used
	}
	return slices.Insert(used, idx, order)
}

// compactInPlace sorts items and renumbers them 0..N-1.
func (e *Engine[T, K]) compactInPlace(items []T) []T {
	e.sortByOrder(items)
	for i, item := range items {
		if order, state := e.acc.Order(item); state == FieldSet && order == i {
			continue
		}
		items[i] = e.acc.SetOrder(item, i)
	}
	return items
}
