package ordering

// FirstInvalid returns the index of the first structurally invalid item.
//
// An item is invalid when its primary key is unusable, when its order is
// present but not a non-negative integer, or, if strict is set, when it has no
// order field at all. A present but null order is valid in both modes.
func (e *Engine[T, K]) FirstInvalid(items []T, strict bool) (int, bool) {
	for i, item := range items {
		if !e.isValid(item, strict) {
			return i, true
		}
	}
	return -1, false
}

// Validate fails with a CodeInvalidItem error carrying the first invalid item
// and the active configuration. A nil slice fails with CodeInvalidArgument.
func (e *Engine[T, K]) Validate(items []T, strict bool) error {
	return e.validate(items, strict, e.cfg)
}

func (e *Engine[T, K]) validate(items []T, strict bool, cfg Config) error {
	if items == nil {
		return invalidArgumentError(cfg)
	}
	if idx, found := e.FirstInvalid(items, strict); found {
		return invalidItemError(items[idx], cfg)
	}
	return nil
}

// validateComplete requires every item to carry a key and a set order.
func (e *Engine[T, K]) validateComplete(items []T, cfg Config) error {
	for _, item := range items {
		if !e.isValid(item, true) {
			return invalidItemError(item, cfg)
		}
		if _, state := e.acc.Order(item); state != FieldSet {
			return invalidItemError(item, cfg)
		}
	}
	return nil
}

func (e *Engine[T, K]) isValid(item T, strict bool) bool {
	if _, ok := e.acc.Key(item); !ok {
		return false
	}
	order, state := e.acc.Order(item)
	switch state {
	case FieldMalformed:
		return false
	case FieldAbsent:
		return !strict
	case FieldSet:
		return order >= 0
	default:
		return true
	}
}

// HasDuplicateOrEmptyOrders reports the first item, in ascending order, whose
// order is empty or equal to that of its predecessor. Structurally invalid
// collections fail with CodeInvalidItem.
func (e *Engine[T, K]) HasDuplicateOrEmptyOrders(items []T) (T, bool, error) {
	var zero T
	if err := e.validate(items, false, e.cfg); err != nil {
		return zero, false, err
	}
	item, found := e.firstDuplicateOrEmpty(items)
	return item, found, nil
}

func (e *Engine[T, K]) firstDuplicateOrEmpty(items []T) (T, bool) {
	var zero T
	sorted := make([]T, len(items))
	copy(sorted, items)
	e.sortByOrder(sorted)

	for i, item := range sorted {
		order, state := e.acc.Order(item)
		if state != FieldSet {
			return item, true
		}
		if i == 0 {
			continue
		}
		if prev, _ := e.acc.Order(sorted[i-1]); prev == order {
			return item, true
		}
	}
	return zero, false
}
