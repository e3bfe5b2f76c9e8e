package codec

// Var-data access works entirely at the shared cursor. The length prefix
// is peeked without advancing; every value operation consumes the prefix
// and the full value in one step, so a partial read still lands the cursor
// on the next region.

// peekVarLength reads the length prefix at the cursor without advancing.
func (b *body) peekVarLength(v *VarDataCodec) (int, error) {
	at := b.cur.pos
	if at+v.HeaderLength > len(b.cur.buf) {
		return 0, newBounds(v.Name, at, "length prefix of %d bytes at %d exceeds buffer of %d",
			v.HeaderLength, at, len(b.cur.buf))
	}
	raw := view{buf: b.cur.buf, base: at}
	length, err := raw.loadBits(0, v.LengthType.Size(), v.LengthOrder)
	if err != nil {
		return 0, err
	}
	return int(length), nil
}

// claimVarData consumes the length prefix and value region, returning the
// value bytes. The cursor lands on the byte after the value.
func (b *body) claimVarData(v *VarDataCodec) ([]byte, error) {
	length, err := b.peekVarLength(v)
	if err != nil {
		return nil, err
	}
	start := b.cur.pos + v.HeaderLength
	if err := b.cur.seek(v.Name, start+length); err != nil {
		return nil, err
	}
	return b.cur.buf[start : start+length], nil
}

// VarDataLength peeks the length of the var-data value at the cursor. The
// cursor does not move; reading must still consume the region.
func (b *body) VarDataLength(v *VarDataCodec) (int, error) {
	return b.peekVarLength(v)
}

// SkipVarData steps over the var-data region without touching the value,
// returning the value length skipped.
func (b *body) SkipVarData(v *VarDataCodec) (int, error) {
	data, err := b.claimVarData(v)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// VarDataBytes consumes the var-data region and returns the value bytes
// aliasing the wrapped buffer. The slice is valid only while the buffer
// is.
func (b *body) VarDataBytes(v *VarDataCodec) ([]byte, error) {
	return b.claimVarData(v)
}

// GetVarData consumes the var-data region, copying at most len(dst) bytes
// of the value into dst and returning the bytes copied. The cursor always
// advances past the whole value, dst too small or not.
func (b *body) GetVarData(v *VarDataCodec, dst []byte) (int, error) {
	data, err := b.claimVarData(v)
	if err != nil {
		return 0, err
	}
	return copy(dst, data), nil
}

// PutVarData writes the length prefix and value at the cursor. A value
// longer than the length field can represent is a range violation before
// anything is written.
func (b *body) PutVarData(v *VarDataCodec, src []byte) error {
	if uint64(len(src)) > v.MaxLength {
		return newRange(v.Name, "value of %d bytes exceeds length-field maximum %d", len(src), v.MaxLength)
	}
	at := b.cur.pos
	end := at + v.HeaderLength + len(src)
	if end > len(b.cur.buf) {
		return newBounds(v.Name, at, "var-data of %d bytes at %d exceeds buffer of %d",
			v.HeaderLength+len(src), at, len(b.cur.buf))
	}
	raw := view{buf: b.cur.buf, base: at}
	if err := raw.storeBits(0, v.LengthType.Size(), v.LengthOrder, uint64(len(src))); err != nil {
		return err
	}
	copy(b.cur.buf[at+v.HeaderLength:], src)
	return b.cur.seek(v.Name, end)
}

// VarDataString consumes the var-data region and decodes the value with
// the declared character encoding, raw bytes when none is declared.
func (b *body) VarDataString(v *VarDataCodec) (string, error) {
	data, err := b.claimVarData(v)
	if err != nil {
		return "", err
	}
	return decodeText(v.CharacterEncoding, data)
}

// VarDataEscapedString is VarDataString with JSON string escaping applied,
// for embedding the value in rendered output.
func (b *body) VarDataEscapedString(v *VarDataCodec) (string, error) {
	s, err := b.VarDataString(v)
	if err != nil {
		return "", err
	}
	return escapeJSON(s), nil
}

// PutVarDataString encodes text into the var-data region with the
// declared character encoding.
func (b *body) PutVarDataString(v *VarDataCodec, s string) error {
	data, err := encodeText(v.CharacterEncoding, s)
	if err != nil {
		return err
	}
	return b.PutVarData(v, data)
}
