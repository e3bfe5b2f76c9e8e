package codec

// cursor is the single shared limit over one message encoding. Every view
// into the message, top level and nested alike, advances the same cursor,
// so sequential regions never overlap.
type cursor struct {
	buf []byte
	pos int
}

// seek moves the limit forward or back, refusing positions past the buffer.
func (c *cursor) seek(construct string, pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return newBounds(construct, pos, "position %d outside buffer of %d", pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

// body is the shared behavior of the two block-holding views, message and
// group element: a fixed block plus access to the sequential tail.
type body struct {
	view
	cur     *cursor
	version int64
}

// ActingVersion is the schema version the wrapped buffer was encoded with.
func (b *body) ActingVersion() int64 { return b.version }

// Message is a flyweight bound to one message encoding in a buffer.
// Binding is cheap; no per-message allocation of the underlying data
// happens and the buffer is read or written in place.
type Message struct {
	body
	codec       *MessageCodec
	offset      int
	blockLength int
}

// WrapForDecode binds a flyweight for reading at offset. The acting block
// length and acting version come from the transport header, letting a new
// decoder step over the larger root block of a newer writer.
func (m *MessageCodec) WrapForDecode(buf []byte, offset, actingBlockLength int, actingVersion int64) (*Message, error) {
	cur := &cursor{buf: buf}
	if err := cur.seek(m.Name, offset+actingBlockLength); err != nil {
		return nil, err
	}
	return &Message{
		body: body{
			view:    view{buf: buf, base: offset},
			cur:     cur,
			version: actingVersion,
		},
		codec:       m,
		offset:      offset,
		blockLength: actingBlockLength,
	}, nil
}

// WrapForEncode binds a flyweight for writing at offset using the codec's
// own block length and version.
func (m *MessageCodec) WrapForEncode(buf []byte, offset int) (*Message, error) {
	return m.WrapForDecode(buf, offset, m.BlockLength, m.SchemaVersion)
}

// Codec returns the resolved contract this flyweight is bound to.
func (m *Message) Codec() *MessageCodec { return m.codec }

// Field returns the named root-block field codec.
func (m *Message) Field(name string) (*FieldCodec, bool) { return m.codec.Field(name) }

// ActingBlockLength is the root-block length the flyweight was wrapped
// with, the writer's length on decode.
func (m *Message) ActingBlockLength() int { return m.blockLength }

// Offset is the buffer position of the start of the root block.
func (m *Message) Offset() int { return m.offset }

// Position is the current sequential limit, one past the highest byte
// consumed so far.
func (m *Message) Position() int { return m.cur.pos }

// SetPosition moves the sequential limit, bounds-checked against the
// buffer.
func (m *Message) SetPosition(pos int) error { return m.cur.seek(m.codec.Name, pos) }

// EncodedLength is the total bytes the message occupies so far, root block
// plus every group and var-data region walked.
func (m *Message) EncodedLength() int { return m.cur.pos - m.offset }

// Header field names fixed by the transport header contract.
const (
	headerBlockLength = "blockLength"
	headerTemplateID  = "templateId"
	headerSchemaID    = "schemaId"
	headerVersion     = "version"
)

// HeaderFrame is the decoded transport header of one message encoding.
type HeaderFrame struct {
	BlockLength int
	TemplateID  int64
	SchemaID    int64
	Version     int64
}

// DecodeHeader reads the transport header at offset.
func (s *Schema) DecodeHeader(buf []byte, offset int) (HeaderFrame, error) {
	hv := view{buf: buf, base: offset}
	var frame HeaderFrame
	for _, part := range []struct {
		name string
		dst  *int64
	}{
		{headerTemplateID, &frame.TemplateID},
		{headerSchemaID, &frame.SchemaID},
		{headerVersion, &frame.Version},
	} {
		f, ok := s.Header.Field(part.name)
		if !ok {
			return HeaderFrame{}, newMalformed(s.Header.Name, "header composite lacks field %s", part.name)
		}
		v, err := hv.Uint(f)
		if err != nil {
			return HeaderFrame{}, err
		}
		*part.dst = int64(v)
	}
	f, ok := s.Header.Field(headerBlockLength)
	if !ok {
		return HeaderFrame{}, newMalformed(s.Header.Name, "header composite lacks field %s", headerBlockLength)
	}
	v, err := hv.Uint(f)
	if err != nil {
		return HeaderFrame{}, err
	}
	frame.BlockLength = int(v)
	return frame, nil
}

// WrapAndApplyHeader writes the transport header for the message at offset
// and binds an encode flyweight immediately after it. The header carries
// the codec's block length, template id, schema id and version.
func (s *Schema) WrapAndApplyHeader(m *MessageCodec, buf []byte, offset int) (*Message, error) {
	hv := view{buf: buf, base: offset}
	for _, part := range []struct {
		name  string
		value uint64
	}{
		{headerBlockLength, uint64(m.BlockLength)},
		{headerTemplateID, uint64(m.TemplateID)},
		{headerSchemaID, uint64(m.SchemaID)},
		{headerVersion, uint64(m.SchemaVersion)},
	} {
		f, ok := s.Header.Field(part.name)
		if !ok {
			return nil, newMalformed(s.Header.Name, "header composite lacks field %s", part.name)
		}
		if err := hv.PutUint(f, part.value); err != nil {
			return nil, err
		}
	}
	return m.WrapForEncode(buf, offset+s.Header.EncodedLength)
}

// WrapFromHeader decodes the transport header at offset, selects the
// message by template id and binds a decode flyweight after the header.
func (s *Schema) WrapFromHeader(buf []byte, offset int) (*Message, error) {
	frame, err := s.DecodeHeader(buf, offset)
	if err != nil {
		return nil, err
	}
	if frame.SchemaID != s.SchemaID {
		return nil, newDomain(s.Header.Name, "header schema id %d does not match schema %d",
			frame.SchemaID, s.SchemaID)
	}
	m, ok := s.MessageByTemplateID(frame.TemplateID)
	if !ok {
		return nil, newDomain(s.Header.Name, "no message with template id %d", frame.TemplateID)
	}
	return m.WrapForDecode(buf, offset+s.Header.EncodedLength, frame.BlockLength, frame.Version)
}
