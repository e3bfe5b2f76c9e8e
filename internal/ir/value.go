package ir

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the representation of a PrimitiveValue.
type ValueKind string

const (
	// KindLong holds all integer types. Unsigned 64-bit values are carried
	// as their bit pattern in Long and must be read back with Uint.
	KindLong ValueKind = "long"

	// KindDouble holds float and double values.
	KindDouble ValueKind = "double"

	// KindBytes holds char-array constants.
	KindBytes ValueKind = "bytes"
)

// PrimitiveValue is a schema-time constant: a null sentinel, a range bound,
// a constant field value, an enum member value or a set choice bit.
type PrimitiveValue struct {
	Kind   ValueKind `json:"kind" yaml:"kind"`
	Long   int64     `json:"long,omitempty" yaml:"long,omitempty"`
	Double float64   `json:"double,omitempty" yaml:"double,omitempty"`
	Bytes  []byte    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// LongValue wraps a signed integer constant.
func LongValue(v int64) PrimitiveValue {
	return PrimitiveValue{Kind: KindLong, Long: v}
}

// UlongValue wraps an unsigned integer constant, storing its bit pattern.
func UlongValue(v uint64) PrimitiveValue {
	return PrimitiveValue{Kind: KindLong, Long: int64(v)}
}

// DoubleValue wraps a floating-point constant.
func DoubleValue(v float64) PrimitiveValue {
	return PrimitiveValue{Kind: KindDouble, Double: v}
}

// BytesValue wraps a char-array constant.
func BytesValue(b []byte) PrimitiveValue {
	return PrimitiveValue{Kind: KindBytes, Bytes: b}
}

// IsSet reports whether the value carries a representation.
func (v PrimitiveValue) IsSet() bool {
	return v.Kind != ""
}

// Uint returns the value as an unsigned 64-bit integer bit pattern.
func (v PrimitiveValue) Uint() uint64 {
	return uint64(v.Long)
}

// Equal compares two values. NaN compares equal to NaN so that a null
// sentinel round-trips through encode/decode comparison.
func (v PrimitiveValue) Equal(o PrimitiveValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindLong:
		return v.Long == o.Long
	case KindDouble:
		if math.IsNaN(v.Double) && math.IsNaN(o.Double) {
			return true
		}
		return v.Double == o.Double
	case KindBytes:
		return string(v.Bytes) == string(o.Bytes)
	}
	return !v.IsSet() && !o.IsSet()
}

// String renders the value the way the canonical IR document does.
func (v PrimitiveValue) String() string {
	switch v.Kind {
	case KindLong:
		return strconv.FormatInt(v.Long, 10)
	case KindDouble:
		if math.IsNaN(v.Double) {
			return "NaN"
		}
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindBytes:
		return string(v.Bytes)
	}
	return ""
}

// ParseValue parses the textual form of a constant for the given primitive
// type. Unsigned 64-bit values larger than MaxInt64 are accepted and stored
// as their bit pattern.
func ParseValue(t PrimitiveType, s string) (PrimitiveValue, error) {
	switch {
	case t == TypeChar:
		if len(s) == 1 {
			return LongValue(int64(s[0])), nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return BytesValue([]byte(s)), nil
		}
		return LongValue(n), nil
	case t.IsSigned():
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return PrimitiveValue{}, fmt.Errorf("parse %s value %q: %w", t, s, err)
		}
		return LongValue(n), nil
	case t.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return PrimitiveValue{}, fmt.Errorf("parse %s value %q: %w", t, s, err)
		}
		return UlongValue(n), nil
	case t.IsFloat():
		if s == "NaN" {
			return DoubleValue(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return PrimitiveValue{}, fmt.Errorf("parse %s value %q: %w", t, s, err)
		}
		return DoubleValue(f), nil
	}
	return PrimitiveValue{}, fmt.Errorf("cannot parse value for primitive %q", t)
}
