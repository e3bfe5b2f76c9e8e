// Package testutil builds token IR fixtures for tests. The builders fix
// up span counts so tests describe schema shape, not token bookkeeping.
package testutil

import (
	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// span wraps a body in begin/end tokens and sets the begin span count.
func span(begin ir.Token, body ...[]ir.Token) []ir.Token {
	end, err := begin.Signal.EndSignal()
	if err != nil {
		panic(err)
	}
	tokens := []ir.Token{begin}
	for _, b := range body {
		tokens = append(tokens, b...)
	}
	tokens = append(tokens, ir.Token{
		Signal: end,
		Name:   begin.Name,
		ID:     begin.ID,
		Offset: begin.Offset,
	})
	tokens[0].SpanCount = len(tokens)
	return tokens
}

// Encoding is a single primitive encoding token.
func Encoding(name string, t ir.PrimitiveType, order ir.ByteOrder, offset, encodedLength int) ir.Token {
	return ir.Token{
		Signal:        ir.SignalEncoding,
		Name:          name,
		ID:            ir.InvalidID,
		Offset:        offset,
		EncodedLength: encodedLength,
		SpanCount:     1,
		Encoding: ir.Encoding{
			Type:     t,
			Order:    order,
			Presence: ir.PresenceRequired,
		},
	}
}

// Scalar is an encoding token sized for one element of the type.
func Scalar(name string, t ir.PrimitiveType, order ir.ByteOrder, offset int) ir.Token {
	return Encoding(name, t, order, offset, t.Size())
}

// CharArray is a fixed-size char array encoding token.
func CharArray(name string, order ir.ByteOrder, offset, length int) ir.Token {
	return Encoding(name, ir.TypeChar, order, offset, length)
}

// ConstEncoding is a constant-presence encoding token.
func ConstEncoding(name string, t ir.PrimitiveType, value ir.PrimitiveValue) ir.Token {
	tok := Encoding(name, t, ir.LittleEndian, 0, 0)
	tok.Encoding.Presence = ir.PresenceConstant
	tok.Encoding.Const = &value
	if value.Kind == ir.KindBytes {
		tok.EncodedLength = len(value.Bytes)
	}
	return tok
}

// Field wraps a type token (or span) in beginField/endField.
func Field(name string, id int64, typeTokens ...ir.Token) []ir.Token {
	encodedLength := 0
	if len(typeTokens) > 0 {
		encodedLength = typeTokens[0].EncodedLength
		if typeTokens[0].Signal == ir.SignalBeginEnum || typeTokens[0].Signal == ir.SignalBeginSet {
			encodedLength = typeTokens[0].Encoding.Type.Size()
		}
	}
	return span(ir.Token{
		Signal:        ir.SignalBeginField,
		Name:          name,
		ID:            id,
		EncodedLength: encodedLength,
	}, typeTokens)
}

// EnumMember names one valid value of an enumeration fixture.
type EnumMember struct {
	Name  string
	Value int64
}

// Enum builds a beginEnum span at the given offset.
func Enum(name string, t ir.PrimitiveType, order ir.ByteOrder, offset int, members ...EnumMember) []ir.Token {
	body := make([]ir.Token, 0, len(members))
	for _, m := range members {
		v := ir.LongValue(m.Value)
		body = append(body, ir.Token{
			Signal:    ir.SignalValidValue,
			Name:      m.Name,
			ID:        ir.InvalidID,
			SpanCount: 1,
			Encoding: ir.Encoding{
				Type:     t,
				Order:    order,
				Presence: ir.PresenceConstant,
				Const:    &v,
			},
		})
	}
	return span(ir.Token{
		Signal:        ir.SignalBeginEnum,
		Name:          name,
		ID:            ir.InvalidID,
		Offset:        offset,
		EncodedLength: t.Size(),
		Encoding:      ir.Encoding{Type: t, Order: order, Presence: ir.PresenceRequired},
	}, body)
}

// Choice names one bit of a set fixture.
type Choice struct {
	Name string
	Bit  int64
}

// Set builds a beginSet span at the given offset.
func Set(name string, t ir.PrimitiveType, order ir.ByteOrder, offset int, choices ...Choice) []ir.Token {
	body := make([]ir.Token, 0, len(choices))
	for _, c := range choices {
		v := ir.LongValue(c.Bit)
		body = append(body, ir.Token{
			Signal:    ir.SignalChoice,
			Name:      c.Name,
			ID:        ir.InvalidID,
			SpanCount: 1,
			Encoding: ir.Encoding{
				Type:     t,
				Order:    order,
				Presence: ir.PresenceConstant,
				Const:    &v,
			},
		})
	}
	return span(ir.Token{
		Signal:        ir.SignalBeginSet,
		Name:          name,
		ID:            ir.InvalidID,
		Offset:        offset,
		EncodedLength: t.Size(),
		Encoding:      ir.Encoding{Type: t, Order: order, Presence: ir.PresenceRequired},
	}, body)
}

// Composite builds a beginComposite span. Member offsets are taken from
// the member tokens; encodedLength is the total width.
func Composite(name string, offset, encodedLength int, members ...[]ir.Token) []ir.Token {
	return span(ir.Token{
		Signal:        ir.SignalBeginComposite,
		Name:          name,
		ID:            ir.InvalidID,
		Offset:        offset,
		EncodedLength: encodedLength,
	}, members...)
}

// GroupDim is the standard repeating-group dimension header: uint16
// blockLength then uint16 numInGroup, with an optional count ceiling.
func GroupDim(order ir.ByteOrder, maxCount uint64) []ir.Token {
	numIn := Scalar("numInGroup", ir.TypeUint16, order, 2)
	if maxCount > 0 {
		max := ir.UlongValue(maxCount)
		numIn.Encoding.Max = &max
	}
	return Composite("groupSizeEncoding", 0, 4,
		[]ir.Token{Scalar("blockLength", ir.TypeUint16, order, 0)},
		[]ir.Token{numIn},
	)
}

// Group wraps a dimension composite and body spans in beginGroup/endGroup.
// blockLength is the fixed element block width.
func Group(name string, id int64, blockLength int, dim []ir.Token, body ...[]ir.Token) []ir.Token {
	return span(ir.Token{
		Signal:        ir.SignalBeginGroup,
		Name:          name,
		ID:            id,
		EncodedLength: blockLength,
	}, append([][]ir.Token{dim}, body...)...)
}

// VarDataComposite is the length-prefixed tail encoding: a length member
// of the given type followed by the unbounded data member.
func VarDataComposite(lengthType ir.PrimitiveType, order ir.ByteOrder, charset string) []ir.Token {
	data := Encoding("varData", ir.TypeUint8, order, lengthType.Size(), 0)
	data.Encoding.CharacterEncoding = charset
	return Composite("varStringEncoding", 0, 0,
		[]ir.Token{Scalar("length", lengthType, order, 0)},
		[]ir.Token{data},
	)
}

// VarData wraps a tail encoding composite in beginVarData/endVarData.
func VarData(name string, id int64, comp []ir.Token) []ir.Token {
	return span(ir.Token{
		Signal: ir.SignalBeginVarData,
		Name:   name,
		ID:     id,
	}, comp)
}

// Message wraps body spans in beginMessage/endMessage. blockLength is the
// root block width.
func Message(name string, templateID int64, blockLength int, body ...[]ir.Token) []ir.Token {
	return span(ir.Token{
		Signal:        ir.SignalBeginMessage,
		Name:          name,
		ID:            templateID,
		EncodedLength: blockLength,
	}, body...)
}

// HeaderTokens is the standard 8-byte message header composite: four
// uint16 fields for blockLength, templateId, schemaId and version.
func HeaderTokens(order ir.ByteOrder) []ir.Token {
	return Composite("messageHeader", 0, 8,
		[]ir.Token{Scalar("blockLength", ir.TypeUint16, order, 0)},
		[]ir.Token{Scalar("templateId", ir.TypeUint16, order, 2)},
		[]ir.Token{Scalar("schemaId", ir.TypeUint16, order, 4)},
		[]ir.Token{Scalar("version", ir.TypeUint16, order, 6)},
	)
}

// Doc assembles a complete IR document with the standard header.
func Doc(schemaID, version int64, order ir.ByteOrder, messages ...[]ir.Token) *ir.Ir {
	return &ir.Ir{
		Package:       "fixture",
		ID:            schemaID,
		Version:       version,
		ByteOrder:     order,
		Header:        ir.HeaderStructure{BlockLengthType: ir.TypeUint16, TemplateIDType: ir.TypeUint16, SchemaIDType: ir.TypeUint16, VersionType: ir.TypeUint16},
		HeaderTokens:  HeaderTokens(order),
		MessageTokens: messages,
	}
}
