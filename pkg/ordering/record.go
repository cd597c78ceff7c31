package ordering

import (
	"encoding/json"
	"maps"
	"math"
)

// Record is a dynamic document such as one decoded from JSON or YAML.
type Record map[string]any

// RecordAccessor reads the primary key and order of a Record from the
// configured field names.
//
// Keys are normalised so that documents from different codecs compare equal:
// strings stay strings, integral numbers become int64 and other finite
// numbers float64. Any other key type is unusable.
type RecordAccessor struct {
	KeyField   string
	OrderField string
}

func NewRecordAccessor(cfg Config) RecordAccessor {
	cfg = cfg.withDefaults()
	return RecordAccessor{KeyField: cfg.PrimaryKey, OrderField: cfg.OrderKey}
}

func (a RecordAccessor) Key(item Record) (any, bool) {
	if item == nil {
		return nil, false
	}
	raw, ok := item[a.KeyField]
	if !ok || raw == nil {
		return nil, false
	}
	return NormalizeKey(raw)
}

func (a RecordAccessor) Order(item Record) (int, Field) {
	if item == nil {
		return 0, FieldAbsent
	}
	raw, ok := item[a.OrderField]
	if !ok {
		return 0, FieldAbsent
	}
	if raw == nil {
		return 0, FieldNull
	}
	n, ok := toInt64(raw)
	if !ok || n < 0 || n > MaxOrder {
		return 0, FieldMalformed
	}
	return int(n), FieldSet
}

func (a RecordAccessor) SetOrder(item Record, order int) Record {
	out := maps.Clone(item)
	if out == nil {
		out = Record{}
	}
	out[a.OrderField] = order
	return out
}

// NormalizeKey converts a decoded key value to its canonical comparable form.
func NormalizeKey(v any) (any, bool) {
	switch k := v.(type) {
	case string:
		return k, true
	case json.Number:
		if i, err := k.Int64(); err == nil {
			return i, true
		}
		f, err := k.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	case float32:
		return normalizeFloat(float64(k))
	case float64:
		return normalizeFloat(k)
	}
	if i, ok := toInt64(v); ok {
		return i, true
	}
	return nil, false
}

func normalizeFloat(f float64) (any, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
		return int64(f), true
	}
	return f, true
}

// toInt64 accepts any Go integer kind, integral floats and json.Number.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	default:
		return 0, false
	}
}

func uintToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
