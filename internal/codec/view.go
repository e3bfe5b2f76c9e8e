package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// view is a fixed-block window: a buffer plus the base offset of the block.
// All field access inside the block is base+fieldOffset with no layout
// computation at use time.
type view struct {
	buf  []byte
	base int
}

// loadBits reads a width-sized unsigned value at base+off, applying the
// declared byte order. Byte-order conversion is a no-op for 1-byte types.
func (v view) loadBits(off, size int, order ir.ByteOrder) (uint64, error) {
	at := v.base + off
	if at < 0 || at+size > len(v.buf) {
		return 0, newBounds("", at, "read of %d bytes at %d exceeds buffer of %d", size, at, len(v.buf))
	}
	b := v.buf[at : at+size]
	switch size {
	case 1:
		return uint64(b[0]), nil
	case 2:
		if order == ir.BigEndian {
			return uint64(binary.BigEndian.Uint16(b)), nil
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		if order == ir.BigEndian {
			return uint64(binary.BigEndian.Uint32(b)), nil
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		if order == ir.BigEndian {
			return binary.BigEndian.Uint64(b), nil
		}
		return binary.LittleEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("unsupported scalar width %d", size)
}

// storeBits writes a width-sized unsigned value at base+off in the declared
// byte order. Mirror of loadBits.
func (v view) storeBits(off, size int, order ir.ByteOrder, bits uint64) error {
	at := v.base + off
	if at < 0 || at+size > len(v.buf) {
		return newBounds("", at, "write of %d bytes at %d exceeds buffer of %d", size, at, len(v.buf))
	}
	b := v.buf[at : at+size]
	switch size {
	case 1:
		b[0] = byte(bits)
	case 2:
		if order == ir.BigEndian {
			binary.BigEndian.PutUint16(b, uint16(bits))
		} else {
			binary.LittleEndian.PutUint16(b, uint16(bits))
		}
	case 4:
		if order == ir.BigEndian {
			binary.BigEndian.PutUint32(b, uint32(bits))
		} else {
			binary.LittleEndian.PutUint32(b, uint32(bits))
		}
	case 8:
		if order == ir.BigEndian {
			binary.BigEndian.PutUint64(b, bits)
		} else {
			binary.LittleEndian.PutUint64(b, bits)
		}
	default:
		return fmt.Errorf("unsupported scalar width %d", size)
	}
	return nil
}

// elementOffset bounds-checks an array index against the declared length.
func elementOffset(f *FieldCodec, index int) (int, error) {
	if index < 0 || index >= f.Length {
		return 0, newBounds(f.Name, index, "index %d out of range for length %d", index, f.Length)
	}
	return f.Offset + index*f.Type.Size(), nil
}

// bitsAt loads the raw bits of one element, honoring constant presence.
func (v view) bitsAt(f *FieldCodec, index int) (uint64, error) {
	if f.Kind == KindConstant {
		if index < 0 || index >= f.Length {
			return 0, newBounds(f.Name, index, "index %d out of range for length %d", index, f.Length)
		}
		if f.ConstVal.Kind == ir.KindBytes {
			return uint64(f.ConstVal.Bytes[index]), nil
		}
		return constBits(f)
	}
	off, err := elementOffset(f, index)
	if err != nil {
		return 0, err
	}
	bits, err := v.loadBits(off, f.Type.Size(), f.Order)
	if err != nil {
		return 0, boundsFor(f, err)
	}
	return bits, nil
}

// constBits renders a constant's schema value as the field's bit pattern.
func constBits(f *FieldCodec) (uint64, error) {
	switch f.ConstVal.Kind {
	case ir.KindLong:
		return f.ConstVal.Uint(), nil
	case ir.KindDouble:
		if f.Type == ir.TypeFloat {
			return uint64(math.Float32bits(float32(f.ConstVal.Double))), nil
		}
		return math.Float64bits(f.ConstVal.Double), nil
	}
	return 0, fmt.Errorf("field %s: constant carries no scalar value", f.Name)
}

// Uint reads an unsigned or char scalar field. Constant-presence fields
// return the schema constant without touching the buffer.
func (v view) Uint(f *FieldCodec) (uint64, error) {
	return v.UintAt(f, 0)
}

// UintAt reads one element of an unsigned or char array field.
func (v view) UintAt(f *FieldCodec, index int) (uint64, error) {
	if !f.Type.IsUnsigned() {
		return 0, fmt.Errorf("field %s: %s is not an unsigned type", f.Name, f.Type)
	}
	return v.bitsAt(f, index)
}

// Int reads a signed integer scalar field.
func (v view) Int(f *FieldCodec) (int64, error) {
	return v.IntAt(f, 0)
}

// IntAt reads one element of a signed integer array field.
func (v view) IntAt(f *FieldCodec, index int) (int64, error) {
	if !f.Type.IsSigned() {
		return 0, fmt.Errorf("field %s: %s is not a signed type", f.Name, f.Type)
	}
	bits, err := v.bitsAt(f, index)
	if err != nil {
		return 0, err
	}
	return signExtend(bits, f.Type.Size()), nil
}

// Float reads a floating-point scalar field. The byte-order conversion is
// applied on the same-width unsigned view of the bytes, then the bits are
// reinterpreted as the floating value.
func (v view) Float(f *FieldCodec) (float64, error) {
	return v.FloatAt(f, 0)
}

// FloatAt reads one element of a floating-point array field.
func (v view) FloatAt(f *FieldCodec, index int) (float64, error) {
	if !f.Type.IsFloat() {
		return 0, fmt.Errorf("field %s: %s is not a floating type", f.Name, f.Type)
	}
	if f.Kind == KindConstant {
		return f.ConstVal.Double, nil
	}
	bits, err := v.bitsAt(f, index)
	if err != nil {
		return 0, err
	}
	if f.Type == ir.TypeFloat {
		return float64(math.Float32frombits(uint32(bits))), nil
	}
	return math.Float64frombits(bits), nil
}

// PutUint writes an unsigned or char scalar field.
func (v view) PutUint(f *FieldCodec, value uint64) error {
	return v.PutUintAt(f, 0, value)
}

// PutUintAt writes one element of an unsigned or char array field.
func (v view) PutUintAt(f *FieldCodec, index int, value uint64) error {
	if !f.Type.IsUnsigned() {
		return fmt.Errorf("field %s: %s is not an unsigned type", f.Name, f.Type)
	}
	return v.putBitsAt(f, index, value)
}

// PutInt writes a signed integer scalar field.
func (v view) PutInt(f *FieldCodec, value int64) error {
	return v.PutIntAt(f, 0, value)
}

// PutIntAt writes one element of a signed integer array field.
func (v view) PutIntAt(f *FieldCodec, index int, value int64) error {
	if !f.Type.IsSigned() {
		return fmt.Errorf("field %s: %s is not a signed type", f.Name, f.Type)
	}
	return v.putBitsAt(f, index, uint64(value))
}

// PutFloat writes a floating-point scalar field via its integer bit view.
func (v view) PutFloat(f *FieldCodec, value float64) error {
	return v.PutFloatAt(f, 0, value)
}

// PutFloatAt writes one element of a floating-point array field.
func (v view) PutFloatAt(f *FieldCodec, index int, value float64) error {
	if !f.Type.IsFloat() {
		return fmt.Errorf("field %s: %s is not a floating type", f.Name, f.Type)
	}
	var bits uint64
	if f.Type == ir.TypeFloat {
		bits = uint64(math.Float32bits(float32(value)))
	} else {
		bits = math.Float64bits(value)
	}
	return v.putBitsAt(f, index, bits)
}

func (v view) putBitsAt(f *FieldCodec, index int, bits uint64) error {
	if f.Kind == KindConstant {
		return fmt.Errorf("field %s: constant presence has no storage", f.Name)
	}
	off, err := elementOffset(f, index)
	if err != nil {
		return err
	}
	if err := v.storeBits(off, f.Type.Size(), f.Order, bits); err != nil {
		return boundsFor(f, err)
	}
	return nil
}

// GetBytes copies the whole array field into dst, returning the bytes
// copied: the smaller of len(dst) and the field's encoded length. Bytes
// are copied verbatim, element order as on the wire.
func (v view) GetBytes(f *FieldCodec, dst []byte) (int, error) {
	if f.Kind == KindConstant {
		return copy(dst, f.ConstVal.Bytes), nil
	}
	at := v.base + f.Offset
	if at+f.EncodedLength > len(v.buf) {
		return 0, newBounds(f.Name, at, "array of %d bytes at %d exceeds buffer of %d",
			f.EncodedLength, at, len(v.buf))
	}
	return copy(dst, v.buf[at:at+f.EncodedLength]), nil
}

// PutBytes writes the whole array field from src, which must carry exactly
// the field's encoded length.
func (v view) PutBytes(f *FieldCodec, src []byte) error {
	if f.Kind == KindConstant {
		return fmt.Errorf("field %s: constant presence has no storage", f.Name)
	}
	if len(src) != f.EncodedLength {
		return newRange(f.Name, "source of %d bytes does not match array of %d", len(src), f.EncodedLength)
	}
	at := v.base + f.Offset
	if at+f.EncodedLength > len(v.buf) {
		return newBounds(f.Name, at, "array of %d bytes at %d exceeds buffer of %d",
			f.EncodedLength, at, len(v.buf))
	}
	copy(v.buf[at:], src)
	return nil
}

// GetString reads a char array as text. The array is treated as
// NUL-terminated; trailing unused bytes are ignored. The field's character
// encoding tag selects the decoding, defaulting to raw bytes.
func (v view) GetString(f *FieldCodec) (string, error) {
	if f.Type != ir.TypeChar {
		return "", fmt.Errorf("field %s: %s is not a char type", f.Name, f.Type)
	}
	if f.Kind == KindConstant {
		return decodeText(f.CharacterEncoding, f.ConstVal.Bytes)
	}
	at := v.base + f.Offset
	if at+f.EncodedLength > len(v.buf) {
		return "", newBounds(f.Name, at, "array of %d bytes at %d exceeds buffer of %d",
			f.EncodedLength, at, len(v.buf))
	}
	raw := v.buf[at : at+f.EncodedLength]
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return decodeText(f.CharacterEncoding, raw[:n])
}

// PutString writes text into a char array, zero-filling the unused tail.
// Text longer than the array is a range violation.
func (v view) PutString(f *FieldCodec, s string) error {
	if f.Type != ir.TypeChar {
		return fmt.Errorf("field %s: %s is not a char type", f.Name, f.Type)
	}
	if f.Kind == KindConstant {
		return fmt.Errorf("field %s: constant presence has no storage", f.Name)
	}
	if len(s) > f.EncodedLength {
		return newRange(f.Name, "string of %d bytes exceeds array of %d", len(s), f.EncodedLength)
	}
	at := v.base + f.Offset
	if at+f.EncodedLength > len(v.buf) {
		return newBounds(f.Name, at, "array of %d bytes at %d exceeds buffer of %d",
			f.EncodedLength, at, len(v.buf))
	}
	n := copy(v.buf[at:], s)
	for ; n < f.EncodedLength; n++ {
		v.buf[at+n] = 0
	}
	return nil
}

// GetEnum decodes an enumeration field to its member name. An encoded
// value matching no declared member and not the null sentinel is a domain
// violation. The reserved null name is returned for the sentinel.
func (v view) GetEnum(f *FieldCodec) (string, error) {
	if f.Enum == nil {
		return "", fmt.Errorf("field %s is not an enumeration", f.Name)
	}
	var raw int64
	if f.Presence == ir.PresenceConstant {
		raw = f.ConstVal.Long
	} else {
		bits, err := v.loadBits(f.Offset, f.Type.Size(), f.Order)
		if err != nil {
			return "", boundsFor(f, err)
		}
		if f.Type.IsSigned() {
			raw = signExtend(bits, f.Type.Size())
		} else {
			raw = int64(bits)
		}
	}
	if m, ok := f.Enum.Member(raw); ok {
		return m.Name, nil
	}
	if raw == f.Enum.NullVal.Long {
		return EnumNullName, nil
	}
	return "", newDomain(f.Name, "value %d matches no member of enum %s", raw, f.Enum.Name)
}

// PutEnum encodes the named member into an enumeration field. An unknown
// name is a domain violation.
func (v view) PutEnum(f *FieldCodec, name string) error {
	if f.Enum == nil {
		return fmt.Errorf("field %s is not an enumeration", f.Name)
	}
	if f.Presence == ir.PresenceConstant {
		return fmt.Errorf("field %s: constant presence has no storage", f.Name)
	}
	value, ok := f.Enum.MemberByName(name)
	if !ok {
		if name != EnumNullName {
			return newDomain(f.Name, "enum %s has no member %q", f.Enum.Name, name)
		}
		value = EnumMember{Name: EnumNullName, Value: f.Enum.NullVal}
	}
	if err := v.storeBits(f.Offset, f.Type.Size(), f.Order, value.Value.Uint()); err != nil {
		return boundsFor(f, err)
	}
	return nil
}

// EnumNullName is the reserved member name of every enumeration's null
// sentinel.
const EnumNullName = "NULL_VALUE"

// GetChoice tests one named bit of a bit-flag set field.
func (v view) GetChoice(f *FieldCodec, choice string) (bool, error) {
	c, err := setChoice(f, choice)
	if err != nil {
		return false, err
	}
	bits, err := v.loadBits(f.Offset, f.Type.Size(), f.Order)
	if err != nil {
		return false, boundsFor(f, err)
	}
	return bits&(1<<c.Bit) != 0, nil
}

// SetChoice sets or clears one named bit of a bit-flag set field with a
// read-modify-write over the underlying integer. Other bits are untouched.
func (v view) SetChoice(f *FieldCodec, choice string, on bool) error {
	c, err := setChoice(f, choice)
	if err != nil {
		return err
	}
	bits, err := v.loadBits(f.Offset, f.Type.Size(), f.Order)
	if err != nil {
		return boundsFor(f, err)
	}
	if on {
		bits |= 1 << c.Bit
	} else {
		bits &^= 1 << c.Bit
	}
	if err := v.storeBits(f.Offset, f.Type.Size(), f.Order, bits); err != nil {
		return boundsFor(f, err)
	}
	return nil
}

// ClearChoices zeroes the whole set field.
func (v view) ClearChoices(f *FieldCodec) error {
	if f.Set == nil {
		return fmt.Errorf("field %s is not a bit-flag set", f.Name)
	}
	if err := v.storeBits(f.Offset, f.Type.Size(), f.Order, 0); err != nil {
		return boundsFor(f, err)
	}
	return nil
}

func setChoice(f *FieldCodec, choice string) (SetChoice, error) {
	if f.Set == nil {
		return SetChoice{}, fmt.Errorf("field %s is not a bit-flag set", f.Name)
	}
	c, ok := f.Set.Choice(choice)
	if !ok {
		return SetChoice{}, newDomain(f.Name, "set %s has no choice %q", f.Set.Name, choice)
	}
	return c, nil
}

// Composite re-bases a composite field at baseOffset+fieldOffset and
// returns a view delegating to the nested construct's own codec.
func (v view) Composite(f *FieldCodec) (*Composite, error) {
	if f.Composite == nil {
		return nil, fmt.Errorf("field %s is not a composite", f.Name)
	}
	at := v.base + f.Offset
	if at+f.Composite.EncodedLength > len(v.buf) {
		return nil, newBounds(f.Name, at, "composite of %d bytes at %d exceeds buffer of %d",
			f.Composite.EncodedLength, at, len(v.buf))
	}
	return &Composite{view: view{buf: v.buf, base: at}, codec: f.Composite}, nil
}

// Composite is a bound view over a fixed-size aggregate. It has no cursor
// of its own; member access is purely offset-based.
type Composite struct {
	view
	codec *CompositeCodec
}

// Codec returns the resolved contract this view is bound to.
func (c *Composite) Codec() *CompositeCodec { return c.codec }

// Field returns the named member codec.
func (c *Composite) Field(name string) (*FieldCodec, bool) { return c.codec.Field(name) }

func signExtend(bits uint64, size int) int64 {
	shift := uint(64 - size*8)
	return int64(bits<<shift) >> shift
}

// boundsFor rewrites a raw bounds violation with the field's name.
func boundsFor(f *FieldCodec, err error) error {
	if v, ok := err.(*Violation); ok && v.Construct == "" {
		v.Construct = f.Name
	}
	return err
}
