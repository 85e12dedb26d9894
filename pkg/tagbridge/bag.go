package tagbridge

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Bag is the untyped parameter payload handed over by the tag manager for a
// single invocation. Keys are never guaranteed and values may hold any type.
type Bag map[string]any

// String returns the value under key when it is a string.
func (b Bag) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// Has reports whether key is present with a non-nil value.
func (b Bag) Has(key string) bool {
	v, ok := b[key]
	return ok && v != nil
}

// Map returns the nested mapping under key.
func (b Bag) Map(key string) (Bag, bool) {
	return asBag(b[key])
}

// Items returns the ordered sequence of nested mappings under key. A sequence
// holding anything other than mappings is not an item list.
func (b Bag) Items(key string) ([]Bag, bool) {
	switch seq := b[key].(type) {
	case []Bag:
		return seq, true
	case []map[string]any:
		items := make([]Bag, len(seq))
		for i, m := range seq {
			items[i] = Bag(m)
		}
		return items, true
	case []any:
		items := make([]Bag, 0, len(seq))
		for _, v := range seq {
			m, ok := asBag(v)
			if !ok {
				return nil, false
			}
			items = append(items, m)
		}
		return items, true
	default:
		return nil, false
	}
}

// Without returns a shallow copy of b minus the given keys.
func (b Bag) Without(keys ...string) Bag {
	out := make(Bag, len(b))
	for k, v := range b {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Describe renders every key with its dynamic type, sorted by key.
func (b Bag) Describe() string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v (%T)", k, b[k], b[k])
	}
	return sb.String()
}

func asBag(v any) (Bag, bool) {
	switch m := v.(type) {
	case Bag:
		return m, true
	case map[string]any:
		return Bag(m), true
	default:
		return nil, false
	}
}

// asInt accepts integer kinds only.
func asInt(v any) (int64, bool) {
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
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// asFloat accepts floating-point kinds only.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// coercePrice accepts floating-point then integer values. Anything else,
// numeric strings included, yields 0.
func coercePrice(v any) float64 {
	if f, ok := asFloat(v); ok {
		return f
	}
	if n, ok := asInt(v); ok {
		return float64(n)
	}
	return 0
}

// coerceQuantity accepts integer then floating-point values, truncating the
// latter. Anything else, including values outside the int range, yields 1.
func coerceQuantity(v any) int {
	if n, ok := asInt(v); ok && n >= math.MinInt && n <= math.MaxInt {
		return int(n)
	}
	if f, ok := asFloat(v); ok && f >= math.MinInt && f < math.MaxInt {
		return int(f)
	}
	return 1
}
