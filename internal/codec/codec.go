package codec

import "github.com/ujos/simple-binary-encoding/internal/ir"

// FieldKind discriminates the accessor contract a field exposes. The set is
// closed: resolution matches it exhaustively.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindArray
	KindConstant
	KindEnum
	KindSet
	KindComposite
)

// String returns the kind name used in describe output.
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindConstant:
		return "constant"
	case KindEnum:
		return "enum"
	case KindSet:
		return "set"
	case KindComposite:
		return "composite"
	}
	return "unknown"
}

// FieldCodec is the resolved accessor contract for one fixed-block field.
// Offset is relative to the enclosing fixed block's base; accessors never
// compute layout at use time.
type FieldCodec struct {
	Name         string
	ID           int64
	SinceVersion int64
	Offset       int
	Kind         FieldKind

	// Scalar/array shape. Length is the element count: 1 for scalars.
	Type          ir.PrimitiveType
	Order         ir.ByteOrder
	Presence      ir.Presence
	Length        int
	EncodedLength int

	// Schema-time constants, already defaulted from the primitive type.
	NullVal ir.PrimitiveValue
	MinVal  ir.PrimitiveValue
	MaxVal  ir.PrimitiveValue

	// ConstVal is set only for constant presence.
	ConstVal ir.PrimitiveValue

	// CharacterEncoding tags char arrays; empty means raw bytes.
	CharacterEncoding string

	// Descriptive metadata, never wire-affecting.
	Epoch        string
	TimeUnit     string
	SemanticType string

	Enum      *EnumCodec
	Set       *SetCodec
	Composite *CompositeCodec
}

// EnumMember is one declared legal value of an enumeration.
type EnumMember struct {
	Name  string
	Value ir.PrimitiveValue
}

// EnumCodec is the resolved contract for an enumeration: a fixed-width
// integer domain of named values plus a reserved null sentinel.
type EnumCodec struct {
	Name    string
	Type    ir.PrimitiveType
	Order   ir.ByteOrder
	NullVal ir.PrimitiveValue
	Members []EnumMember
}

// Member returns the named member whose encoded value equals v.
func (e *EnumCodec) Member(v int64) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Value.Long == v {
			return m, true
		}
	}
	return EnumMember{}, false
}

// MemberByName returns the member with the given name.
func (e *EnumCodec) MemberByName(name string) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}

// SetChoice is one named bit of a bit-flag set.
type SetChoice struct {
	Name string
	Bit  uint
}

// SetCodec is the resolved contract for a bit-flag set over a fixed-width
// unsigned integer. Bits run 0 through one less than the width in bits.
type SetCodec struct {
	Name    string
	Type    ir.PrimitiveType
	Order   ir.ByteOrder
	Choices []SetChoice
}

// Choice returns the named choice.
func (s *SetCodec) Choice(name string) (SetChoice, bool) {
	for _, c := range s.Choices {
		if c.Name == name {
			return c, true
		}
	}
	return SetChoice{}, false
}

// CompositeCodec is the resolved contract for a fixed-size aggregate of
// members at fixed relative offsets. Composites have no cursor semantics:
// they are always embedded inside a fixed region.
type CompositeCodec struct {
	Name          string
	EncodedLength int
	Fields        []FieldCodec
}

// Field returns the named member codec.
func (c *CompositeCodec) Field(name string) (*FieldCodec, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// DimField describes one sub-field of a group's dimension header: fixed
// width at a fixed offset within the header.
type DimField struct {
	Offset int
	Type   ir.PrimitiveType
	Order  ir.ByteOrder
}

// GroupCodec is the resolved contract for a repeating group. BlockLength
// is the schema length of one element's fixed block; the dimension header
// precedes the elements on the wire.
type GroupCodec struct {
	Name         string
	ID           int64
	SinceVersion int64

	BlockLength  int
	HeaderLength int
	DimBlockLen  DimField
	DimNumIn     DimField

	// Count bounds from the numInGroup encoding. Counts are compared as
	// unsigned values.
	MinCount uint64
	MaxCount uint64

	Fields  []FieldCodec
	Groups  []GroupCodec
	VarData []VarDataCodec
}

// Field returns the named field codec of the group's fixed block.
func (g *GroupCodec) Field(name string) (*FieldCodec, bool) {
	return fieldByName(g.Fields, name)
}

// VarDataCodec is the resolved contract for one length-prefixed tail.
type VarDataCodec struct {
	Name         string
	ID           int64
	SinceVersion int64

	// HeaderLength is the width of the length field; the payload follows
	// immediately after it.
	HeaderLength int
	LengthType   ir.PrimitiveType
	LengthOrder  ir.ByteOrder

	// MaxLength is the largest payload the length field can represent.
	MaxLength uint64

	// CharacterEncoding is empty for raw binary tails.
	CharacterEncoding string
}

// MessageCodec is the complete resolved contract for one message type.
type MessageCodec struct {
	Name          string
	TemplateID    int64
	SchemaID      int64
	SchemaVersion int64
	SemanticType  string
	BlockLength   int

	Fields  []FieldCodec
	Groups  []GroupCodec
	VarData []VarDataCodec
}

// Field returns the named top-level field codec.
func (m *MessageCodec) Field(name string) (*FieldCodec, bool) {
	return fieldByName(m.Fields, name)
}

// Group returns the named top-level group codec.
func (m *MessageCodec) Group(name string) (*GroupCodec, bool) {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i], true
		}
	}
	return nil, false
}

// VarDatum returns the named top-level var-data codec.
func (m *MessageCodec) VarDatum(name string) (*VarDataCodec, bool) {
	for i := range m.VarData {
		if m.VarData[i].Name == name {
			return &m.VarData[i], true
		}
	}
	return nil, false
}

func fieldByName(fields []FieldCodec, name string) (*FieldCodec, bool) {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i], true
		}
	}
	return nil, false
}
