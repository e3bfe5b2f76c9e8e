package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujos/simple-binary-encoding/internal/ir"
	"github.com/ujos/simple-binary-encoding/internal/testutil"
)

func resolveOrder(t *testing.T) (*Schema, *MessageCodec) {
	t.Helper()
	s, err := ResolveSchema(orderBookDoc(t))
	require.NoError(t, err)
	m, ok := s.Message("Order")
	require.True(t, ok)
	return s, m
}

type leg struct {
	ratio    int64
	legPrice int64
}

// encodeOrder writes one full message and returns the encoded length.
func encodeOrder(t *testing.T, s *Schema, mc *MessageCodec, buf []byte, legs []leg, note string) int {
	t.Helper()
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	orderID, _ := mc.Field("orderId")
	price, _ := mc.Field("price")
	symbol, _ := mc.Field("symbol")
	side, _ := mc.Field("side")
	flags, _ := mc.Field("flags")

	require.NoError(t, m.PutUint(orderID, 9007199254740993))
	require.NoError(t, m.PutInt(price, -125000))
	require.NoError(t, m.PutString(symbol, "ESZ6"))
	require.NoError(t, m.PutEnum(side, "SELL"))
	require.NoError(t, m.SetChoice(flags, "hidden", true))
	require.NoError(t, m.SetChoice(flags, "closing", true))

	legsCodec, _ := mc.Group("legs")
	g, err := m.EncodeGroup(legsCodec, len(legs))
	require.NoError(t, err)
	ratio, _ := legsCodec.Field("ratio")
	legPrice, _ := legsCodec.Field("legPrice")
	for _, l := range legs {
		require.NoError(t, g.Next())
		require.NoError(t, g.PutInt(ratio, l.ratio))
		require.NoError(t, g.PutInt(legPrice, l.legPrice))
	}

	note1, _ := mc.VarDatum("note")
	require.NoError(t, m.PutVarDataString(note1, note))

	return s.Header.EncodedLength + m.EncodedLength()
}

func TestRoundTripFullMessage(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	legs := []leg{{ratio: -2, legPrice: 150}, {ratio: 1, legPrice: -900}, {ratio: 3, legPrice: 0}}
	note := "½ filled at open"

	total := encodeOrder(t, s, mc, buf, legs, note)

	m, err := s.WrapFromHeader(buf, 0)
	require.NoError(t, err)
	require.Equal(t, mc.Name, m.Codec().Name)
	assert.Equal(t, mc.BlockLength, m.ActingBlockLength())
	assert.EqualValues(t, s.SchemaVersion, m.ActingVersion())

	orderID, _ := mc.Field("orderId")
	got, err := m.Uint(orderID)
	require.NoError(t, err)
	assert.EqualValues(t, 9007199254740993, got)

	price, _ := mc.Field("price")
	p, err := m.Int(price)
	require.NoError(t, err)
	assert.EqualValues(t, -125000, p)

	symbol, _ := mc.Field("symbol")
	sym, err := m.GetString(symbol)
	require.NoError(t, err)
	assert.Equal(t, "ESZ6", sym)

	side, _ := mc.Field("side")
	sideName, err := m.GetEnum(side)
	require.NoError(t, err)
	assert.Equal(t, "SELL", sideName)

	flags, _ := mc.Field("flags")
	for choice, want := range map[string]bool{"hidden": true, "pegged": false, "closing": true} {
		on, err := m.GetChoice(flags, choice)
		require.NoError(t, err)
		assert.Equal(t, want, on, choice)
	}

	legsCodec, _ := mc.Group("legs")
	g, err := m.DecodeGroup(legsCodec)
	require.NoError(t, err)
	assert.Equal(t, len(legs), g.Count())
	assert.Equal(t, legsCodec.BlockLength, g.ActingBlockLength())
	ratio, _ := legsCodec.Field("ratio")
	legPrice, _ := legsCodec.Field("legPrice")
	for i := 0; g.HasNext(); i++ {
		require.NoError(t, g.Next())
		r, err := g.Int(ratio)
		require.NoError(t, err)
		assert.EqualValues(t, legs[i].ratio, r)
		lp, err := g.Int(legPrice)
		require.NoError(t, err)
		assert.EqualValues(t, legs[i].legPrice, lp)
	}

	noteCodec, _ := mc.VarDatum("note")
	text, err := m.VarDataString(noteCodec)
	require.NoError(t, err)
	assert.Equal(t, note, text)

	assert.Equal(t, total, s.Header.EncodedLength+m.EncodedLength())
}

func TestBigEndianFieldBytes(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	price, _ := mc.Field("price")
	require.NoError(t, m.PutInt(price, 0x01020304))

	// price sits at offset 8 of the root block and is declared bigEndian.
	at := s.Header.EncodedLength + 8
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf[at:at+4])
}

func TestGroupCountRangeViolation(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	legsCodec, _ := mc.Group("legs")
	_, err = m.EncodeGroup(legsCodec, 11)
	require.Error(t, err)
	assert.True(t, IsRange(err), "got %v", err)

	_, err = m.EncodeGroup(legsCodec, -1)
	require.Error(t, err)
	assert.True(t, IsRange(err), "got %v", err)
}

func TestGroupDimensionHeaderReportsCount(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	encodeOrder(t, s, mc, buf, []leg{{1, 1}, {2, 2}}, "")

	m, err := s.WrapFromHeader(buf, 0)
	require.NoError(t, err)
	legsCodec, _ := mc.Group("legs")
	g, err := m.DecodeGroup(legsCodec)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Count())
	assert.Equal(t, -1, g.Index())
}

func TestGroupAdvancePastEnd(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	encodeOrder(t, s, mc, buf, []leg{{1, 1}}, "")

	m, err := s.WrapFromHeader(buf, 0)
	require.NoError(t, err)
	legsCodec, _ := mc.Group("legs")
	g, err := m.DecodeGroup(legsCodec)
	require.NoError(t, err)
	require.NoError(t, g.Next())
	err = g.Next()
	require.Error(t, err)
	assert.True(t, IsBounds(err), "got %v", err)
}

func TestEnumUnknownValueDomainViolation(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	encodeOrder(t, s, mc, buf, nil, "")

	// Corrupt the side byte to a value no member declares.
	buf[s.Header.EncodedLength+18] = 99

	m, err := s.WrapFromHeader(buf, 0)
	require.NoError(t, err)
	side, _ := mc.Field("side")
	_, err = m.GetEnum(side)
	require.Error(t, err)
	assert.True(t, IsDomain(err), "got %v", err)

	require.NoError(t, m.PutEnum(side, "BUY"))
	err = m.PutEnum(side, "HOLD")
	require.Error(t, err)
	assert.True(t, IsDomain(err), "got %v", err)
}

func TestEnumNullSentinel(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	side, _ := mc.Field("side")
	require.NoError(t, m.PutEnum(side, EnumNullName))
	name, err := m.GetEnum(side)
	require.NoError(t, err)
	assert.Equal(t, EnumNullName, name)
}

func TestCursorAdvancesMonotonically(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	encodeOrder(t, s, mc, buf, []leg{{1, 1}, {2, 2}}, "hello")

	m, err := s.WrapFromHeader(buf, 0)
	require.NoError(t, err)

	// After binding, the cursor sits past the root block.
	start := m.Position()
	assert.Equal(t, s.Header.EncodedLength+mc.BlockLength, start)

	legsCodec, _ := mc.Group("legs")
	g, err := m.DecodeGroup(legsCodec)
	require.NoError(t, err)
	afterDim := m.Position()
	assert.Equal(t, start+legsCodec.HeaderLength, afterDim)

	for g.HasNext() {
		require.NoError(t, g.Next())
		next := m.Position()
		assert.Greater(t, next, afterDim)
		afterDim = next
	}

	noteCodec, _ := mc.VarDatum("note")
	n, err := m.VarDataLength(noteCodec)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	// Length is a peek; the cursor has not moved.
	assert.Equal(t, afterDim, m.Position())

	skipped, err := m.SkipVarData(noteCodec)
	require.NoError(t, err)
	assert.Equal(t, 5, skipped)
	assert.Equal(t, afterDim+noteCodec.HeaderLength+5, m.Position())
}

func TestVarDataShortReadStillAdvances(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	encodeOrder(t, s, mc, buf, nil, "abcdefgh")

	m, err := s.WrapFromHeader(buf, 0)
	require.NoError(t, err)
	legsCodec, _ := mc.Group("legs")
	g, err := m.DecodeGroup(legsCodec)
	require.NoError(t, err)
	require.Equal(t, 0, g.Count())

	noteCodec, _ := mc.VarDatum("note")
	before := m.Position()
	dst := make([]byte, 3)
	n, err := m.GetVarData(noteCodec, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(dst))
	// The cursor stepped over the whole value, not just the copied part.
	assert.Equal(t, before+noteCodec.HeaderLength+8, m.Position())
}

func TestVarDataPayloadRangeViolation(t *testing.T) {
	doc := testutil.Doc(1, 0, ir.LittleEndian,
		testutil.Message("Blob", 1, 0,
			testutil.VarData("data", 1, testutil.VarDataComposite(ir.TypeUint8, ir.LittleEndian, "")),
		),
	)
	s, err := ResolveSchema(doc)
	require.NoError(t, err)
	mc, _ := s.Message("Blob")

	buf := make([]byte, 1024)
	m, err := mc.WrapForEncode(buf, 0)
	require.NoError(t, err)

	data, _ := mc.VarDatum("data")
	// uint8 length field tops out at 254.
	err = m.PutVarData(data, make([]byte, 255))
	require.Error(t, err)
	assert.True(t, IsRange(err), "got %v", err)

	require.NoError(t, m.PutVarData(data, make([]byte, 254)))
}

func TestChoiceBitsAreIndependent(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	flags, _ := mc.Field("flags")
	require.NoError(t, m.ClearChoices(flags))
	require.NoError(t, m.SetChoice(flags, "pegged", true))
	require.NoError(t, m.SetChoice(flags, "closing", true))
	require.NoError(t, m.SetChoice(flags, "closing", false))

	on, err := m.GetChoice(flags, "pegged")
	require.NoError(t, err)
	assert.True(t, on)
	on, err = m.GetChoice(flags, "closing")
	require.NoError(t, err)
	assert.False(t, on)
	on, err = m.GetChoice(flags, "hidden")
	require.NoError(t, err)
	assert.False(t, on)
}

func TestBindingPastBufferBoundsViolation(t *testing.T) {
	_, mc := resolveOrder(t)
	buf := make([]byte, 8)
	_, err := mc.WrapForEncode(buf, 0)
	require.Error(t, err)
	assert.True(t, IsBounds(err), "got %v", err)
}

func TestArrayIndexBoundsViolation(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	symbol, _ := mc.Field("symbol")
	_, err = m.UintAt(symbol, 6)
	require.Error(t, err)
	assert.True(t, IsBounds(err), "got %v", err)
}

func TestCharArrayZeroFill(t *testing.T) {
	s, mc := resolveOrder(t)
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = 0xAA
	}
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	symbol, _ := mc.Field("symbol")
	require.NoError(t, m.PutString(symbol, "AB"))
	at := s.Header.EncodedLength + 12
	assert.Equal(t, []byte{'A', 'B', 0, 0, 0, 0}, buf[at:at+6])

	got, err := m.GetString(symbol)
	require.NoError(t, err)
	assert.Equal(t, "AB", got)

	err = m.PutString(symbol, "TOOLONGX")
	require.Error(t, err)
	assert.True(t, IsRange(err), "got %v", err)
}

func TestConstantFieldNeverTouchesBuffer(t *testing.T) {
	doc := testutil.Doc(1, 0, ir.LittleEndian,
		testutil.Message("Quote", 1, 0,
			testutil.Field("venue", 1, testutil.ConstEncoding("venue", ir.TypeChar, ir.BytesValue([]byte("XEUR")))),
		),
	)
	s, err := ResolveSchema(doc)
	require.NoError(t, err)
	mc, _ := s.Message("Quote")

	// An empty buffer suffices: constant access performs no reads.
	m, err := mc.WrapForDecode(nil, 0, 0, 0)
	require.NoError(t, err)

	venue, _ := mc.Field("venue")
	got, err := m.GetString(venue)
	require.NoError(t, err)
	assert.Equal(t, "XEUR", got)

	err = m.PutString(venue, "XNYS")
	require.Error(t, err)
}

func TestTinyMessageRoundTrip(t *testing.T) {
	doc := testutil.Doc(1, 1, ir.LittleEndian,
		testutil.Message("Sample", 2, 4,
			testutil.Field("field", 1, testutil.Scalar("field", ir.TypeUint32, ir.BigEndian, 0)),
			testutil.Group("group", 10, 1, testutil.GroupDim(ir.LittleEndian, 3),
				testutil.Field("x", 11, testutil.Scalar("x", ir.TypeInt8, ir.LittleEndian, 0)),
			),
			testutil.VarData("tail", 20, testutil.VarDataComposite(ir.TypeUint8, ir.LittleEndian, "UTF-8")),
		),
	)
	s, err := ResolveSchema(doc)
	require.NoError(t, err)
	mc, ok := s.Message("Sample")
	require.True(t, ok)

	buf := make([]byte, 64)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)

	field, _ := mc.Field("field")
	gc, _ := mc.Group("group")
	tail, _ := mc.VarDatum("tail")
	x, _ := gc.Field("x")

	require.NoError(t, m.PutUint(field, 42))
	g, err := m.EncodeGroup(gc, 2)
	require.NoError(t, err)
	for _, want := range []int64{1, -2} {
		require.NoError(t, g.Next())
		require.NoError(t, g.PutInt(x, want))
	}
	require.NoError(t, m.PutVarDataString(tail, "ab"))

	m, err = s.WrapFromHeader(buf, 0)
	require.NoError(t, err)
	got, err := m.Uint(field)
	require.NoError(t, err)
	assert.EqualValues(t, 42, got)

	g, err = m.DecodeGroup(gc)
	require.NoError(t, err)
	require.Equal(t, 2, g.Count())
	for _, want := range []int64{1, -2} {
		require.NoError(t, g.Next())
		v, err := g.Int(x)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	text, err := m.VarDataString(tail)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)

	// The count bound is enforced before any dimension bytes are written.
	m, err = s.WrapAndApplyHeader(mc, make([]byte, 64), 0)
	require.NoError(t, err)
	_, err = m.EncodeGroup(gc, 5)
	require.Error(t, err)
	assert.True(t, IsRange(err), "got %v", err)
}
