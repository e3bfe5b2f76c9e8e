package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujos/simple-binary-encoding/internal/ir"
	"github.com/ujos/simple-binary-encoding/internal/testutil"
)

// orderBookDoc is the fixture used across resolver tests: a root block
// with scalar, array, enum, set and composite fields, one nested group
// and one var-data tail.
func orderBookDoc(t *testing.T) *ir.Ir {
	t.Helper()
	doc := testutil.Doc(7, 2, ir.LittleEndian,
		testutil.Message("Order", 42, 24,
			testutil.Field("orderId", 1, testutil.Scalar("orderId", ir.TypeUint64, ir.LittleEndian, 0)),
			testutil.Field("price", 2, testutil.Scalar("price", ir.TypeInt32, ir.BigEndian, 8)),
			testutil.Field("symbol", 3, testutil.CharArray("symbol", ir.LittleEndian, 12, 6)),
			testutil.Field("side", 4, testutil.Enum("Side", ir.TypeUint8, ir.LittleEndian, 18,
				testutil.EnumMember{Name: "BUY", Value: 0},
				testutil.EnumMember{Name: "SELL", Value: 1},
			)...),
			testutil.Field("flags", 5, testutil.Set("OrderFlags", ir.TypeUint32, ir.LittleEndian, 19,
				testutil.Choice{Name: "hidden", Bit: 0},
				testutil.Choice{Name: "pegged", Bit: 5},
				testutil.Choice{Name: "closing", Bit: 31},
			)...),
			testutil.Group("legs", 10, 3,
				testutil.GroupDim(ir.LittleEndian, 10),
				testutil.Field("ratio", 11, testutil.Scalar("ratio", ir.TypeInt8, ir.LittleEndian, 0)),
				testutil.Field("legPrice", 12, testutil.Scalar("legPrice", ir.TypeInt16, ir.LittleEndian, 1)),
			),
			testutil.VarData("note", 20, testutil.VarDataComposite(ir.TypeUint16, ir.LittleEndian, "UTF-8")),
		),
	)
	require.NoError(t, ir.Validate(doc))
	return doc
}

func TestResolveSchemaShape(t *testing.T) {
	s, err := ResolveSchema(orderBookDoc(t))
	require.NoError(t, err)

	assert.EqualValues(t, 7, s.SchemaID)
	assert.EqualValues(t, 2, s.SchemaVersion)
	require.NotNil(t, s.Header)
	assert.Equal(t, 8, s.Header.EncodedLength)
	require.Len(t, s.Messages, 1)

	m, ok := s.Message("Order")
	require.True(t, ok)
	assert.EqualValues(t, 42, m.TemplateID)
	assert.Equal(t, 24, m.BlockLength)
	require.Len(t, m.Fields, 5)
	require.Len(t, m.Groups, 1)
	require.Len(t, m.VarData, 1)
}

func TestResolveFieldKindsAndOffsets(t *testing.T) {
	s, err := ResolveSchema(orderBookDoc(t))
	require.NoError(t, err)
	m, _ := s.Message("Order")

	orderID, ok := m.Field("orderId")
	require.True(t, ok)
	assert.Equal(t, KindScalar, orderID.Kind)
	assert.Equal(t, 0, orderID.Offset)
	assert.Equal(t, ir.TypeUint64, orderID.Type)

	price, ok := m.Field("price")
	require.True(t, ok)
	assert.Equal(t, 8, price.Offset)
	assert.Equal(t, ir.BigEndian, price.Order)

	symbol, ok := m.Field("symbol")
	require.True(t, ok)
	assert.Equal(t, KindArray, symbol.Kind)
	assert.Equal(t, 6, symbol.Length)
	assert.Equal(t, 6, symbol.EncodedLength)

	side, ok := m.Field("side")
	require.True(t, ok)
	assert.Equal(t, KindEnum, side.Kind)
	require.NotNil(t, side.Enum)
	assert.Equal(t, 18, side.Offset)
	require.Len(t, side.Enum.Members, 2)

	flags, ok := m.Field("flags")
	require.True(t, ok)
	assert.Equal(t, KindSet, flags.Kind)
	require.NotNil(t, flags.Set)
	c, ok := flags.Set.Choice("closing")
	require.True(t, ok)
	assert.EqualValues(t, 31, c.Bit)
}

func TestResolveGroupDimensions(t *testing.T) {
	s, err := ResolveSchema(orderBookDoc(t))
	require.NoError(t, err)
	m, _ := s.Message("Order")

	legs, ok := m.Group("legs")
	require.True(t, ok)
	assert.Equal(t, 3, legs.BlockLength)
	assert.Equal(t, 4, legs.HeaderLength)
	assert.Equal(t, 0, legs.DimBlockLen.Offset)
	assert.Equal(t, 2, legs.DimNumIn.Offset)
	assert.EqualValues(t, 0, legs.MinCount)
	assert.EqualValues(t, 10, legs.MaxCount)
	require.Len(t, legs.Fields, 2)
	assert.Equal(t, 1, legs.Fields[1].Offset)
}

func TestResolveVarDataShape(t *testing.T) {
	s, err := ResolveSchema(orderBookDoc(t))
	require.NoError(t, err)
	m, _ := s.Message("Order")

	note, ok := m.VarDatum("note")
	require.True(t, ok)
	assert.Equal(t, 2, note.HeaderLength)
	assert.Equal(t, ir.TypeUint16, note.LengthType)
	assert.EqualValues(t, 65534, note.MaxLength)
	assert.Equal(t, "UTF-8", note.CharacterEncoding)
}

func TestResolveConstantField(t *testing.T) {
	doc := testutil.Doc(1, 0, ir.LittleEndian,
		testutil.Message("Quote", 1, 0,
			testutil.Field("venue", 1, testutil.ConstEncoding("venue", ir.TypeChar, ir.BytesValue([]byte("XEUR")))),
		),
	)
	s, err := ResolveSchema(doc)
	require.NoError(t, err)

	m, _ := s.Message("Quote")
	venue, ok := m.Field("venue")
	require.True(t, ok)
	assert.Equal(t, KindConstant, venue.Kind)
	assert.Equal(t, []byte("XEUR"), venue.ConstVal.Bytes)
}

func TestResolveRejectsWrongSignal(t *testing.T) {
	// A choice token standing where a field span belongs is an IR
	// producer bug, surfaced as a malformed-IR violation.
	bad := ir.LongValue(1)
	msg := []ir.Token{
		{Signal: ir.SignalBeginMessage, Name: "Broken", ID: 9, SpanCount: 3},
		{Signal: ir.SignalChoice, Name: "stray", SpanCount: 1, Encoding: ir.Encoding{Type: ir.TypeUint8, Const: &bad}},
		{Signal: ir.SignalEndMessage, Name: "Broken"},
	}
	doc := testutil.Doc(1, 0, ir.LittleEndian, msg)

	_, err := ResolveSchema(doc)
	require.Error(t, err)
	assert.True(t, IsMalformedIR(err), "got %v", err)
}

func TestResolveRejectsMismatchedEnd(t *testing.T) {
	msg := []ir.Token{
		{Signal: ir.SignalBeginMessage, Name: "Broken", ID: 9, SpanCount: 5},
		{Signal: ir.SignalBeginField, Name: "f", ID: 1, SpanCount: 3},
		{Signal: ir.SignalEncoding, Name: "f", SpanCount: 1, Encoding: ir.Encoding{Type: ir.TypeUint8}},
		{Signal: ir.SignalEndGroup, Name: "f"},
		{Signal: ir.SignalEndMessage, Name: "Broken"},
	}
	doc := testutil.Doc(1, 0, ir.LittleEndian, msg)

	_, err := ResolveSchema(doc)
	require.Error(t, err)
	assert.True(t, IsMalformedIR(err), "got %v", err)
}

func TestResolveRejectsOversizedChoiceBit(t *testing.T) {
	doc := testutil.Doc(1, 0, ir.LittleEndian,
		testutil.Message("Broken", 1, 1,
			testutil.Field("flags", 1, testutil.Set("Flags", ir.TypeUint8, ir.LittleEndian, 0,
				testutil.Choice{Name: "overflow", Bit: 8},
			)...),
		),
	)
	_, err := ResolveSchema(doc)
	require.Error(t, err)
	assert.True(t, IsMalformedIR(err), "got %v", err)
}
