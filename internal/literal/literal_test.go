package literal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

func TestValueSignedForms(t *testing.T) {
	got, err := Value(ir.TypeInt32, ir.LongValue(-42))
	require.NoError(t, err)
	assert.Equal(t, "-42", got)

	got, err = Value(ir.TypeInt64, ir.LongValue(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775807", got)
}

func TestValueMostNegativeInt64(t *testing.T) {
	// -9223372036854775808 is not a valid Go literal: the positive
	// magnitude overflows before negation applies.
	got, err := Value(ir.TypeInt64, ir.LongValue(math.MinInt64))
	require.NoError(t, err)
	assert.Equal(t, "math.MinInt64", got)
}

func TestValueUnsignedHexForUpperHalf(t *testing.T) {
	got, err := Value(ir.TypeUint64, ir.UlongValue(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, "0xffffffffffffffff", got)

	got, err = Value(ir.TypeUint64, ir.UlongValue(255))
	require.NoError(t, err)
	assert.Equal(t, "255", got)
}

func TestValueFloatNaN(t *testing.T) {
	got, err := Value(ir.TypeDouble, ir.DoubleValue(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "math.NaN()", got)

	got, err = Value(ir.TypeFloat, ir.DoubleValue(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "float32(math.NaN())", got)
}

func TestNullDefaults(t *testing.T) {
	got, err := Null(ir.Encoding{Type: ir.TypeInt32})
	require.NoError(t, err)
	assert.Equal(t, "-2147483648", got)

	got, err = Null(ir.Encoding{Type: ir.TypeUint16})
	require.NoError(t, err)
	assert.Equal(t, "65535", got)

	got, err = Null(ir.Encoding{Type: ir.TypeDouble})
	require.NoError(t, err)
	assert.Equal(t, "math.NaN()", got)
}

func TestNullOverride(t *testing.T) {
	null := ir.LongValue(-1)
	got, err := Null(ir.Encoding{Type: ir.TypeInt32, Null: &null})
	require.NoError(t, err)
	assert.Equal(t, "-1", got)
}

func TestRangeBounds(t *testing.T) {
	got, err := Min(ir.Encoding{Type: ir.TypeInt8})
	require.NoError(t, err)
	assert.Equal(t, "-127", got)

	got, err = Max(ir.Encoding{Type: ir.TypeUint8})
	require.NoError(t, err)
	assert.Equal(t, "254", got)
}

func TestConstCharString(t *testing.T) {
	c := ir.BytesValue([]byte("EUR"))
	got, err := Const(ir.Encoding{Type: ir.TypeChar, Const: &c})
	require.NoError(t, err)
	assert.Equal(t, `"EUR"`, got)
}

func TestConstMissing(t *testing.T) {
	_, err := Const(ir.Encoding{Type: ir.TypeUint8})
	require.Error(t, err)
}
