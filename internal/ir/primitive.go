package ir

import (
	"fmt"
	"math"
)

// PrimitiveType is the wire representation of a scalar encoding.
type PrimitiveType string

const (
	TypeNone   PrimitiveType = ""
	TypeChar   PrimitiveType = "char"
	TypeInt8   PrimitiveType = "int8"
	TypeInt16  PrimitiveType = "int16"
	TypeInt32  PrimitiveType = "int32"
	TypeInt64  PrimitiveType = "int64"
	TypeUint8  PrimitiveType = "uint8"
	TypeUint16 PrimitiveType = "uint16"
	TypeUint32 PrimitiveType = "uint32"
	TypeUint64 PrimitiveType = "uint64"
	TypeFloat  PrimitiveType = "float"
	TypeDouble PrimitiveType = "double"
)

// Size returns the on-wire width in bytes. TypeNone has size 0.
func (t PrimitiveType) Size() int {
	switch t {
	case TypeChar, TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat:
		return 4
	case TypeInt64, TypeUint64, TypeDouble:
		return 8
	}
	return 0
}

// Valid reports whether t is a declared primitive type.
func (t PrimitiveType) Valid() bool {
	return t != TypeNone && t.Size() > 0
}

// IsSigned reports whether t is a signed integer type.
func (t PrimitiveType) IsSigned() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// IsUnsigned reports whether t is an unsigned integer type (char counts:
// it is carried and compared as an unsigned byte).
func (t PrimitiveType) IsUnsigned() bool {
	switch t {
	case TypeChar, TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating-point type.
func (t PrimitiveType) IsFloat() bool {
	return t == TypeFloat || t == TypeDouble
}

// MinValue returns the natural minimum for the type's value domain.
//
// Signed integers reserve their most negative value as the null sentinel,
// so the natural minimum is most-negative + 1. Char is restricted to the
// printable ASCII range.
func (t PrimitiveType) MinValue() PrimitiveValue {
	switch t {
	case TypeChar:
		return LongValue(0x20)
	case TypeInt8:
		return LongValue(math.MinInt8 + 1)
	case TypeInt16:
		return LongValue(math.MinInt16 + 1)
	case TypeInt32:
		return LongValue(math.MinInt32 + 1)
	case TypeInt64:
		return LongValue(math.MinInt64 + 1)
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return LongValue(0)
	case TypeFloat:
		return DoubleValue(math.SmallestNonzeroFloat32)
	case TypeDouble:
		return DoubleValue(math.SmallestNonzeroFloat64)
	}
	return PrimitiveValue{}
}

// MaxValue returns the natural maximum for the type's value domain.
//
// Unsigned integers reserve their highest value as the null sentinel, so
// the natural maximum is max - 1.
func (t PrimitiveType) MaxValue() PrimitiveValue {
	switch t {
	case TypeChar:
		return LongValue(0x7E)
	case TypeInt8:
		return LongValue(math.MaxInt8)
	case TypeInt16:
		return LongValue(math.MaxInt16)
	case TypeInt32:
		return LongValue(math.MaxInt32)
	case TypeInt64:
		return LongValue(math.MaxInt64)
	case TypeUint8:
		return UlongValue(math.MaxUint8 - 1)
	case TypeUint16:
		return UlongValue(math.MaxUint16 - 1)
	case TypeUint32:
		return UlongValue(math.MaxUint32 - 1)
	case TypeUint64:
		return UlongValue(math.MaxUint64 - 1)
	case TypeFloat:
		return DoubleValue(math.MaxFloat32)
	case TypeDouble:
		return DoubleValue(math.MaxFloat64)
	}
	return PrimitiveValue{}
}

// NullValue returns the natural null sentinel: the most negative value for
// signed integers, the maximum for unsigned integers, zero for char and
// quiet NaN for floating types.
func (t PrimitiveType) NullValue() PrimitiveValue {
	switch t {
	case TypeChar:
		return LongValue(0)
	case TypeInt8:
		return LongValue(math.MinInt8)
	case TypeInt16:
		return LongValue(math.MinInt16)
	case TypeInt32:
		return LongValue(math.MinInt32)
	case TypeInt64:
		return LongValue(math.MinInt64)
	case TypeUint8:
		return UlongValue(math.MaxUint8)
	case TypeUint16:
		return UlongValue(math.MaxUint16)
	case TypeUint32:
		return UlongValue(math.MaxUint32)
	case TypeUint64:
		return UlongValue(math.MaxUint64)
	case TypeFloat, TypeDouble:
		return DoubleValue(math.NaN())
	}
	return PrimitiveValue{}
}

// GoName returns the Go type name used by the literal resolver.
func (t PrimitiveType) GoName() (string, error) {
	switch t {
	case TypeChar, TypeUint8:
		return "byte", nil
	case TypeInt8:
		return "int8", nil
	case TypeInt16:
		return "int16", nil
	case TypeInt32:
		return "int32", nil
	case TypeInt64:
		return "int64", nil
	case TypeUint16:
		return "uint16", nil
	case TypeUint32:
		return "uint32", nil
	case TypeUint64:
		return "uint64", nil
	case TypeFloat:
		return "float32", nil
	case TypeDouble:
		return "float64", nil
	}
	return "", fmt.Errorf("no Go type for primitive %q", t)
}
