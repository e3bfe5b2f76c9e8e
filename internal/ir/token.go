package ir

// InvalidID marks a token that carries no wire identifier.
const InvalidID int64 = -1

// Token is one node of the flat IR stream.
//
// Offset is the byte position within the enclosing fixed block and is
// meaningless for cursor-based constructs (groups, var data). SpanCount is
// the component span: the number of tokens, including this one, that the
// construct and all its descendants occupy in the stream.
type Token struct {
	Signal         Signal   `json:"signal" yaml:"signal"`
	Name           string   `json:"name" yaml:"name"`
	ReferencedName string   `json:"referencedName,omitempty" yaml:"referencedName,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	ID             int64    `json:"id" yaml:"id"`
	Version        int64    `json:"version" yaml:"version"`
	Deprecated     int64    `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Offset         int      `json:"offset" yaml:"offset"`
	EncodedLength  int      `json:"encodedLength" yaml:"encodedLength"`
	SpanCount      int      `json:"spanCount" yaml:"spanCount"`
	Encoding       Encoding `json:"encoding" yaml:"encoding"`
}

// ApplicableTypeName returns the referenced type name when the token was
// declared through a named type, otherwise the token's own name.
func (t Token) ApplicableTypeName() string {
	if t.ReferencedName != "" {
		return t.ReferencedName
	}
	return t.Name
}

// ArrayLength returns how many primitive elements the token encodes.
// Scalars have length 1; char and numeric arrays have length > 1.
func (t Token) ArrayLength() int {
	size := t.Encoding.Type.Size()
	if size == 0 || t.EncodedLength <= 0 {
		return 1
	}
	return t.EncodedLength / size
}

// IsConstant reports whether the token's encoding has constant presence.
func (t Token) IsConstant() bool {
	return t.Encoding.IsConstant()
}
