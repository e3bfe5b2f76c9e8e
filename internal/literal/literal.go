// Package literal renders schema-time primitive values as Go source
// literals. It exists for the renderer that turns codec contracts into
// concrete source text: constants, null sentinels and range bounds must
// appear as literals that compile to exactly the schema value.
package literal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// Value renders a primitive value as a Go literal of the matching type.
//
// Two values have no direct literal form and render as expressions
// instead: the most negative int64, whose magnitude overflows a plain
// decimal literal before negation, renders as the named constant, and a
// quiet NaN renders as the function call, since NaN is not a constant
// expression. Values in the upper half of the uint64 range render in hex
// to keep them visibly unsigned.
func Value(t ir.PrimitiveType, v ir.PrimitiveValue) (string, error) {
	switch t {
	case ir.TypeChar, ir.TypeUint8, ir.TypeUint16, ir.TypeUint32, ir.TypeUint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return fmt.Sprintf("%#x", u), nil
		}
		return strconv.FormatUint(u, 10), nil
	case ir.TypeInt8, ir.TypeInt16, ir.TypeInt32:
		return strconv.FormatInt(v.Long, 10), nil
	case ir.TypeInt64:
		if v.Long == math.MinInt64 {
			return "math.MinInt64", nil
		}
		return strconv.FormatInt(v.Long, 10), nil
	case ir.TypeFloat:
		if math.IsNaN(v.Double) {
			return "float32(math.NaN())", nil
		}
		return "float32(" + strconv.FormatFloat(v.Double, 'g', -1, 32) + ")", nil
	case ir.TypeDouble:
		if math.IsNaN(v.Double) {
			return "math.NaN()", nil
		}
		return strconv.FormatFloat(v.Double, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("no literal form for primitive type %q", t)
}

// Null renders the applicable null sentinel of an encoding, the declared
// override when present, the type's natural null otherwise.
func Null(enc ir.Encoding) (string, error) {
	return Value(enc.Type, enc.ApplicableNullValue())
}

// Min renders the applicable lower range bound of an encoding.
func Min(enc ir.Encoding) (string, error) {
	return Value(enc.Type, enc.ApplicableMinValue())
}

// Max renders the applicable upper range bound of an encoding.
func Max(enc ir.Encoding) (string, error) {
	return Value(enc.Type, enc.ApplicableMaxValue())
}

// Const renders a constant-presence encoding's value. Char constants
// longer than one byte render as a string literal.
func Const(enc ir.Encoding) (string, error) {
	if enc.Const == nil {
		return "", fmt.Errorf("encoding of %q has no constant value", enc.Type)
	}
	if enc.Type == ir.TypeChar && enc.Const.Kind == ir.KindBytes {
		return strconv.Quote(string(enc.Const.Bytes)), nil
	}
	return Value(enc.Type, *enc.Const)
}
