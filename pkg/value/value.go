// Package value defines the literal value model shared by the catalog, the
// graph, the literal parser and the document emitter.
//
// A [Value] is one of exactly five variants:
//
//   - [String]: a text value
//   - [Float]: a 64-bit number (integers are stored as floats)
//   - [Bool]: true or false
//   - [List]: an ordered sequence of values
//   - [Table]: a mapping from string keys to values
//
// The interface is sealed: only this package can add variants, so a type
// switch over the five types above is exhaustive.
//
// # Conversion
//
// Decoders (TOML, JSON, HCL via go-cty) produce loosely typed data.
// [FromAny] converts that data into a Value and [ToAny] converts back, for
// handing values to encoders.
package value

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindString Kind = iota
	KindFloat
	KindBool
	KindList
	KindTable
)

var kindNames = [...]string{
	KindString: "string",
	KindFloat:  "float",
	KindBool:   "bool",
	KindList:   "list",
	KindTable:  "table",
}

// String returns the lowercase kind name used in catalogs and messages.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Value is a literal value. See the package documentation for the variants.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// String is a text value.
	String string
	// Float is a numeric value.
	Float float64
	// Bool is a boolean value.
	Bool bool
	// List is an ordered sequence of values.
	List []Value
	// Table maps keys to values.
	Table map[string]Value
)

func (String) Kind() Kind { return KindString }
func (Float) Kind() Kind  { return KindFloat }
func (Bool) Kind() Kind   { return KindBool }
func (List) Kind() Kind   { return KindList }
func (Table) Kind() Kind  { return KindTable }

func (String) isValue() {}
func (Float) isValue()  {}
func (Bool) isValue()   {}
func (List) isValue()   {}
func (Table) isValue()  {}

// Keys returns the table's keys in lexical order.
func (t Table) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// Equal reports whether a and b hold the same variant and contents.
// Floats compare by value, except that NaN equals NaN so that round-trip
// comparisons of parsed documents are reflexive.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Table:
		bv, ok := b.(Table)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts decoder output into a Value.
//
// Accepted inputs are strings, booleans, all Go integer and float types,
// []any, []map[string]any, map[string]any and Values themselves. Integers
// become [Float]. Datetimes and nil have no Value representation and are
// rejected.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		if v == nil {
			return nil, fmt.Errorf("nil value")
		}
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Float(v), nil
	case float32:
		return Float(v), nil
	case int:
		return Float(v), nil
	case int8:
		return Float(v), nil
	case int16:
		return Float(v), nil
	case int32:
		return Float(v), nil
	case int64:
		return Float(v), nil
	case uint:
		return Float(v), nil
	case uint8:
		return Float(v), nil
	case uint16:
		return Float(v), nil
	case uint32:
		return Float(v), nil
	case uint64:
		return Float(v), nil
	case []any:
		out := make(List, len(v))
		for i, e := range v {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case []map[string]any:
		out := make(List, len(v))
		for i, e := range v {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(Table, len(v))
		for k, e := range v {
			ev, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = ev
		}
		return out, nil
	case time.Time:
		return nil, fmt.Errorf("datetime values are not supported")
	case nil:
		return nil, fmt.Errorf("nil value")
	default:
		return nil, fmt.Errorf("unsupported value of type %T", x)
	}
}

// ToAny converts a Value into plain Go data suitable for encoders:
// string, float64, bool, []any and map[string]any. A nil Value yields nil.
func ToAny(v Value) any {
	switch x := v.(type) {
	case String:
		return string(x)
	case Float:
		return float64(x)
	case Bool:
		return bool(x)
	case List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToAny(e)
		}
		return out
	case Table:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = ToAny(e)
		}
		return out
	}
	return nil
}

// MapFromAny converts a decoded key/value mapping into a map of Values.
func MapFromAny(m map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(m))
	for k, x := range m {
		v, err := FromAny(x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// MapToAny is the inverse of [MapFromAny].
func MapToAny(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = ToAny(v)
	}
	return out
}
