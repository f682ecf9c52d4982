package tag

import (
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
)

var _ fmt.Stringer = Kind(0)

// Kind is the kind of value a Tag accepts. The set of kinds is closed.
type Kind int

const (
	// KindString accepts Go strings.
	KindString Kind = 1 + iota
	// KindInt accepts any Go integer type whose value fits in an int64.
	KindInt
	// KindBool accepts Go bools.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Integer"
	case KindBool:
		return "Boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ValidKind returns true if k is one of KindString, KindInt or KindBool.
func ValidKind(k Kind) bool {
	return KindString <= k && k <= KindBool
}

// KindOf returns the Kind of v, and false if v has no Kind.
func KindOf(v interface{}) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case bool:
		return KindBool, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt, true
	default:
		return 0, false
	}
}

// kindOfValue maps an attribute.Value type back to a Kind.
func kindOfValue(v attribute.Value) (Kind, bool) {
	switch v.Type() {
	case attribute.STRING:
		return KindString, true
	case attribute.INT64:
		return KindInt, true
	case attribute.BOOL:
		return KindBool, true
	default:
		return 0, false
	}
}

// toValue converts v into an attribute.Value of kind want. No conversion
// between kinds takes place; an integer is never turned into a string or
// the other way around.
func toValue(want Kind, v interface{}) (attribute.Value, error) {
	got, ok := KindOf(v)
	if !ok || got != want {
		return attribute.Value{}, &KindMismatchError{Want: want, Got: got, Value: v}
	}

	switch t := v.(type) {
	case string:
		return attribute.StringValue(t), nil
	case bool:
		return attribute.BoolValue(t), nil
	case int:
		return attribute.Int64Value(int64(t)), nil
	case int8:
		return attribute.Int64Value(int64(t)), nil
	case int16:
		return attribute.Int64Value(int64(t)), nil
	case int32:
		return attribute.Int64Value(int64(t)), nil
	case int64:
		return attribute.Int64Value(t), nil
	case uint8:
		return attribute.Int64Value(int64(t)), nil
	case uint16:
		return attribute.Int64Value(int64(t)), nil
	case uint32:
		return attribute.Int64Value(int64(t)), nil
	case uint:
		return uintValue(uint64(t), v)
	case uint64:
		return uintValue(t, v)
	}
	// Unreachable as long as KindOf and the switch above agree.
	return attribute.Value{}, &KindMismatchError{Want: want, Got: got, Value: v}
}

func uintValue(u uint64, orig interface{}) (attribute.Value, error) {
	if u > math.MaxInt64 {
		return attribute.Value{}, &ValueRangeError{Value: orig}
	}
	return attribute.Int64Value(int64(u)), nil
}
