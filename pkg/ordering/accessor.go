package ordering

import "math"

// MaxOrder is the largest order value accessors accept. Larger values are
// FieldMalformed so that repair can always pick max+1 without overflow.
const MaxOrder = math.MaxInt32

// Field describes the state of an item's order field.
type Field int

const (
	// FieldAbsent means the item has no order field at all.
	FieldAbsent Field = iota
	// FieldNull means the field exists but holds no value.
	FieldNull
	// FieldSet means the field holds a non-negative integer.
	FieldSet
	// FieldMalformed means the field holds something that is not a
	// non-negative integer.
	FieldMalformed
)

func (f Field) String() string {
	switch f {
	case FieldAbsent:
		return "absent"
	case FieldNull:
		return "null"
	case FieldSet:
		return "set"
	case FieldMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Accessor exposes the primary key and order value of T to the engine.
type Accessor[T any, K comparable] interface {
	// Key returns the primary key. ok is false when the item is nil or the key
	// is absent, null or unusable.
	Key(item T) (key K, ok bool)
	// Order returns the order value; it is meaningful only for FieldSet.
	Order(item T) (order int, state Field)
	// SetOrder returns a copy of item carrying order. Implementations must not
	// modify state shared with the input item.
	SetOrder(item T, order int) T
}
