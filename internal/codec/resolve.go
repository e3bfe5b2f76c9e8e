package codec

import (
	"errors"
	"fmt"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// Schema is the resolved form of a whole IR document: the message header
// contract plus one codec per message. Resolution happens once per
// document; the result is immutable.
type Schema struct {
	SchemaID      int64
	SchemaVersion int64
	Header        *CompositeCodec
	HeaderShape   ir.HeaderStructure
	Messages      []*MessageCodec
}

// Message returns the codec for the named message.
func (s *Schema) Message(name string) (*MessageCodec, bool) {
	for _, m := range s.Messages {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// MessageByTemplateID returns the codec with the given template id.
func (s *Schema) MessageByTemplateID(id int64) (*MessageCodec, bool) {
	for _, m := range s.Messages {
		if m.TemplateID == id {
			return m, true
		}
	}
	return nil, false
}

// ResolveSchema resolves every message of an IR document. Messages resolve
// independently; a type only has to be resolved before the types that nest
// it, which the flat spans already guarantee.
func ResolveSchema(doc *ir.Ir) (*Schema, error) {
	s := &Schema{
		SchemaID:      doc.ID,
		SchemaVersion: doc.Version,
		HeaderShape:   doc.Header,
	}
	if len(doc.HeaderTokens) > 0 {
		header, err := ResolveComposite(doc.HeaderTokens)
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		s.Header = header
	}
	for _, tokens := range doc.MessageTokens {
		m, err := ResolveMessage(doc, tokens)
		if err != nil {
			return nil, err
		}
		s.Messages = append(s.Messages, m)
	}
	return s, nil
}

// ResolveMessage derives the full codec contract for one message span.
func ResolveMessage(doc *ir.Ir, tokens []ir.Token) (*MessageCodec, error) {
	body, err := ir.MessageBody(tokens)
	if err != nil {
		return nil, asMalformed("message", err)
	}
	msgToken := tokens[0]

	m := &MessageCodec{
		Name:          msgToken.Name,
		TemplateID:    msgToken.ID,
		SchemaID:      doc.ID,
		SchemaVersion: doc.Version,
		SemanticType:  msgToken.Encoding.SemanticType,
		BlockLength:   msgToken.EncodedLength,
	}
	if m.Fields, m.Groups, m.VarData, err = resolveBody(msgToken.Name, body); err != nil {
		return nil, err
	}
	return m, nil
}

// resolveBody splits a message or group body into children and resolves
// each category.
func resolveBody(construct string, body []ir.Token) ([]FieldCodec, []GroupCodec, []VarDataCodec, error) {
	fieldSpans, groupSpans, varSpans, err := ir.CollectBody(body)
	if err != nil {
		return nil, nil, nil, asMalformed(construct, err)
	}

	var fields []FieldCodec
	for _, span := range fieldSpans {
		f, err := resolveField(span)
		if err != nil {
			return nil, nil, nil, err
		}
		fields = append(fields, f)
	}

	var groups []GroupCodec
	for _, span := range groupSpans {
		g, err := resolveGroup(span)
		if err != nil {
			return nil, nil, nil, err
		}
		groups = append(groups, g)
	}

	var varData []VarDataCodec
	for _, span := range varSpans {
		v, err := resolveVarData(span)
		if err != nil {
			return nil, nil, nil, err
		}
		varData = append(varData, v)
	}
	return fields, groups, varData, nil
}

// resolveField derives the accessor contract from a beginField span. The
// token after beginField decides the kind; the closed set of signals is
// matched exhaustively.
func resolveField(span []ir.Token) (FieldCodec, error) {
	if len(span) < 3 {
		return FieldCodec{}, newMalformed(spanName(span), "field span needs begin, type and end tokens")
	}
	fieldToken := span[0]
	typeToken := span[1]

	f := FieldCodec{
		Name:         fieldToken.Name,
		ID:           fieldToken.ID,
		SinceVersion: fieldToken.Version,
		Offset:       typeToken.Offset,
		Epoch:        fieldToken.Encoding.Epoch,
		TimeUnit:     fieldToken.Encoding.TimeUnit,
		SemanticType: fieldToken.Encoding.SemanticType,
	}

	switch typeToken.Signal {
	case ir.SignalEncoding:
		return f, resolveEncodedField(&f, typeToken)

	case ir.SignalBeginEnum:
		enum, err := resolveEnum(span[1 : 1+typeToken.SpanCount])
		if err != nil {
			return f, err
		}
		f.Kind = KindEnum
		f.Enum = enum
		f.Type = enum.Type
		f.Order = enum.Order
		f.Presence = fieldToken.Encoding.Presence
		f.Length = 1
		f.EncodedLength = fieldToken.EncodedLength
		if fieldToken.IsConstant() {
			if fieldToken.Encoding.Const == nil {
				return f, newMalformed(f.Name, "constant enum field carries no constant value")
			}
			f.ConstVal = *fieldToken.Encoding.Const
		}
		return f, nil

	case ir.SignalBeginSet:
		set, err := resolveSet(span[1 : 1+typeToken.SpanCount])
		if err != nil {
			return f, err
		}
		f.Kind = KindSet
		f.Set = set
		f.Type = set.Type
		f.Order = set.Order
		f.Presence = ir.PresenceRequired
		f.Length = 1
		f.EncodedLength = set.Type.Size()
		return f, nil

	case ir.SignalBeginComposite:
		comp, err := ResolveComposite(span[1 : 1+typeToken.SpanCount])
		if err != nil {
			return f, err
		}
		f.Kind = KindComposite
		f.Composite = comp
		f.Presence = ir.PresenceRequired
		f.EncodedLength = comp.EncodedLength
		return f, nil
	}

	return f, newMalformed(f.Name, "field type token has signal %s", typeToken.Signal)
}

// resolveEncodedField fills the primitive shape of a scalar, array or
// constant field from its encoding token.
func resolveEncodedField(f *FieldCodec, t ir.Token) error {
	enc := t.Encoding
	if !enc.Type.Valid() {
		return newMalformed(f.Name, "encoding token carries invalid primitive %q", enc.Type)
	}
	f.Type = enc.Type
	f.Order = enc.Order
	f.Presence = enc.Presence
	f.Length = t.ArrayLength()
	f.EncodedLength = t.EncodedLength
	f.NullVal = enc.ApplicableNullValue()
	f.MinVal = enc.ApplicableMinValue()
	f.MaxVal = enc.ApplicableMaxValue()
	f.CharacterEncoding = enc.CharacterEncoding

	switch {
	case enc.IsConstant():
		if enc.Const == nil {
			return newMalformed(f.Name, "constant field carries no constant value")
		}
		f.Kind = KindConstant
		f.ConstVal = *enc.Const
	case f.Length > 1:
		f.Kind = KindArray
	default:
		f.Kind = KindScalar
	}
	return nil
}

// resolveEnum derives an enumeration contract from its beginEnum span.
func resolveEnum(span []ir.Token) (*EnumCodec, error) {
	begin := span[0]
	if begin.Signal != ir.SignalBeginEnum {
		return nil, newMalformed(begin.Name, "enum span opens with %s", begin.Signal)
	}
	e := &EnumCodec{
		Name:    begin.ApplicableTypeName(),
		Type:    begin.Encoding.Type,
		Order:   begin.Encoding.Order,
		NullVal: begin.Encoding.ApplicableNullValue(),
	}
	for _, t := range span[1 : len(span)-1] {
		if t.Signal != ir.SignalValidValue {
			return nil, newMalformed(e.Name, "enum body token has signal %s, want validValue", t.Signal)
		}
		if t.Encoding.Const == nil {
			return nil, newMalformed(e.Name, "enum member %q carries no value", t.Name)
		}
		e.Members = append(e.Members, EnumMember{Name: t.Name, Value: *t.Encoding.Const})
	}
	return e, nil
}

// resolveSet derives a bit-flag set contract from its beginSet span. Every
// choice bit must fit the set's fixed width.
func resolveSet(span []ir.Token) (*SetCodec, error) {
	begin := span[0]
	if begin.Signal != ir.SignalBeginSet {
		return nil, newMalformed(begin.Name, "set span opens with %s", begin.Signal)
	}
	s := &SetCodec{
		Name:  begin.ApplicableTypeName(),
		Type:  begin.Encoding.Type,
		Order: begin.Encoding.Order,
	}
	bits := uint(s.Type.Size() * 8)
	for _, t := range span[1 : len(span)-1] {
		if t.Signal != ir.SignalChoice {
			return nil, newMalformed(s.Name, "set body token has signal %s, want choice", t.Signal)
		}
		if t.Encoding.Const == nil {
			return nil, newMalformed(s.Name, "choice %q carries no bit position", t.Name)
		}
		bit := uint(t.Encoding.Const.Long)
		if bit >= bits {
			return nil, newMalformed(s.Name, "choice %q bit %d exceeds %d-bit set", t.Name, bit, bits)
		}
		s.Choices = append(s.Choices, SetChoice{Name: t.Name, Bit: bit})
	}
	return s, nil
}

// ResolveComposite derives the contract for a fixed-size aggregate from its
// beginComposite span. Member offsets are relative to the composite's own
// base; nesting recurses through the same closed kind set as fields.
func ResolveComposite(span []ir.Token) (*CompositeCodec, error) {
	if len(span) < 2 || span[0].Signal != ir.SignalBeginComposite {
		return nil, newMalformed(spanName(span), "composite span must open with beginComposite")
	}
	c := &CompositeCodec{
		Name:          span[0].ApplicableTypeName(),
		EncodedLength: span[0].EncodedLength,
	}

	body := span[1 : len(span)-1]
	for i := 0; i < len(body); {
		t := body[i]
		if t.SpanCount < 1 || i+t.SpanCount > len(body) {
			return nil, newMalformed(c.Name, "member %q span count %d overruns composite", t.Name, t.SpanCount)
		}
		member := FieldCodec{
			Name:         t.Name,
			ID:           t.ID,
			SinceVersion: t.Version,
			Offset:       t.Offset,
		}
		switch t.Signal {
		case ir.SignalEncoding:
			if err := resolveEncodedField(&member, t); err != nil {
				return nil, err
			}
		case ir.SignalBeginEnum:
			enum, err := resolveEnum(body[i : i+t.SpanCount])
			if err != nil {
				return nil, err
			}
			member.Kind = KindEnum
			member.Enum = enum
			member.Type = enum.Type
			member.Order = enum.Order
			member.Length = 1
			member.EncodedLength = enum.Type.Size()
		case ir.SignalBeginSet:
			set, err := resolveSet(body[i : i+t.SpanCount])
			if err != nil {
				return nil, err
			}
			member.Kind = KindSet
			member.Set = set
			member.Type = set.Type
			member.Order = set.Order
			member.Length = 1
			member.EncodedLength = set.Type.Size()
		case ir.SignalBeginComposite:
			nested, err := ResolveComposite(body[i : i+t.SpanCount])
			if err != nil {
				return nil, err
			}
			member.Kind = KindComposite
			member.Composite = nested
			member.EncodedLength = nested.EncodedLength
		default:
			return nil, newMalformed(c.Name, "composite member %q has signal %s", t.Name, t.Signal)
		}
		c.Fields = append(c.Fields, member)
		i += t.SpanCount
	}
	return c, nil
}

// resolveGroup derives a repeating-group contract: the dimension header
// shape followed by the recursive body.
func resolveGroup(span []ir.Token) (GroupCodec, error) {
	begin := span[0]
	if begin.Signal != ir.SignalBeginGroup {
		return GroupCodec{}, newMalformed(begin.Name, "group span opens with %s", begin.Signal)
	}
	g := GroupCodec{
		Name:         begin.Name,
		ID:           begin.ID,
		SinceVersion: begin.Version,
		BlockLength:  begin.EncodedLength,
	}
	if len(span) < 3 || span[1].Signal != ir.SignalBeginComposite {
		return g, newMalformed(g.Name, "group span must carry a dimension header composite")
	}

	dimSpan := span[1 : 1+span[1].SpanCount]
	dim, err := ResolveComposite(dimSpan)
	if err != nil {
		return g, err
	}
	g.HeaderLength = dim.EncodedLength

	blockLen, ok := dim.Field("blockLength")
	if !ok {
		return g, newMalformed(g.Name, "dimension header %q has no blockLength field", dim.Name)
	}
	g.DimBlockLen = DimField{Offset: blockLen.Offset, Type: blockLen.Type, Order: blockLen.Order}

	numIn, ok := dim.Field("numInGroup")
	if !ok {
		return g, newMalformed(g.Name, "dimension header %q has no numInGroup field", dim.Name)
	}
	g.DimNumIn = DimField{Offset: numIn.Offset, Type: numIn.Type, Order: numIn.Order}
	g.MinCount = numIn.MinVal.Uint()
	g.MaxCount = numIn.MaxVal.Uint()

	body := span[1+span[1].SpanCount : len(span)-1]
	if g.Fields, g.Groups, g.VarData, err = resolveBody(g.Name, body); err != nil {
		return g, err
	}
	return g, nil
}

// resolveVarData derives a length-prefixed tail contract. The span wraps a
// composite with a length member and a varData member.
func resolveVarData(span []ir.Token) (VarDataCodec, error) {
	begin := span[0]
	if begin.Signal != ir.SignalBeginVarData {
		return VarDataCodec{}, newMalformed(begin.Name, "var-data span opens with %s", begin.Signal)
	}
	v := VarDataCodec{
		Name:         begin.Name,
		ID:           begin.ID,
		SinceVersion: begin.Version,
	}
	if len(span) < 3 || span[1].Signal != ir.SignalBeginComposite {
		return v, newMalformed(v.Name, "var-data span must carry an encoding composite")
	}
	comp, err := ResolveComposite(span[1 : 1+span[1].SpanCount])
	if err != nil {
		return v, err
	}

	length, ok := comp.Field("length")
	if !ok {
		return v, newMalformed(v.Name, "var-data composite %q has no length field", comp.Name)
	}
	v.HeaderLength = length.EncodedLength
	v.LengthType = length.Type
	v.LengthOrder = length.Order
	v.MaxLength = length.MaxVal.Uint()

	data, ok := comp.Field("varData")
	if !ok {
		return v, newMalformed(v.Name, "var-data composite %q has no varData field", comp.Name)
	}
	v.CharacterEncoding = data.CharacterEncoding
	return v, nil
}

// asMalformed converts a walker error into the codec violation taxonomy,
// preserving an already-typed violation.
func asMalformed(construct string, err error) error {
	var v *Violation
	if errors.As(err, &v) {
		return err
	}
	return newMalformed(construct, "%s", err.Error())
}

func spanName(span []ir.Token) string {
	if len(span) > 0 {
		return span[0].Name
	}
	return ""
}
