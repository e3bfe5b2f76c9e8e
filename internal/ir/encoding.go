package ir

// ByteOrder declares the wire order of a multi-byte scalar. Order is
// independent per field; platform order is never assumed.
type ByteOrder string

const (
	LittleEndian ByteOrder = "littleEndian"
	BigEndian    ByteOrder = "bigEndian"
)

// Presence declares whether a field occupies buffer space.
type Presence string

const (
	// PresenceRequired fields are always stored.
	PresenceRequired Presence = "required"

	// PresenceOptional fields are stored and may carry the null sentinel.
	PresenceOptional Presence = "optional"

	// PresenceConstant fields are never stored; accessors return the
	// schema-declared constant unconditionally.
	PresenceConstant Presence = "constant"
)

// Encoding describes how a token's construct is represented on the wire.
//
// Min, Max, Null and Const are optional overrides from the schema; the
// Applicable accessors fall back to the primitive type's natural values.
// Epoch, TimeUnit and SemanticType are descriptive metadata only and never
// affect wire layout.
type Encoding struct {
	Type              PrimitiveType   `json:"primitiveType,omitempty" yaml:"primitiveType,omitempty"`
	Order             ByteOrder       `json:"byteOrder,omitempty" yaml:"byteOrder,omitempty"`
	Presence          Presence        `json:"presence,omitempty" yaml:"presence,omitempty"`
	Const             *PrimitiveValue `json:"constValue,omitempty" yaml:"constValue,omitempty"`
	Min               *PrimitiveValue `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	Max               *PrimitiveValue `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Null              *PrimitiveValue `json:"nullValue,omitempty" yaml:"nullValue,omitempty"`
	CharacterEncoding string          `json:"characterEncoding,omitempty" yaml:"characterEncoding,omitempty"`
	Epoch             string          `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	TimeUnit          string          `json:"timeUnit,omitempty" yaml:"timeUnit,omitempty"`
	SemanticType      string          `json:"semanticType,omitempty" yaml:"semanticType,omitempty"`
}

// IsConstant reports whether the encoding has constant presence.
func (e Encoding) IsConstant() bool {
	return e.Presence == PresenceConstant
}

// ApplicableMinValue returns the schema minimum, or the primitive's natural
// minimum when the schema is silent.
func (e Encoding) ApplicableMinValue() PrimitiveValue {
	if e.Min != nil {
		return *e.Min
	}
	return e.Type.MinValue()
}

// ApplicableMaxValue returns the schema maximum, or the primitive's natural
// maximum when the schema is silent.
func (e Encoding) ApplicableMaxValue() PrimitiveValue {
	if e.Max != nil {
		return *e.Max
	}
	return e.Type.MaxValue()
}

// ApplicableNullValue returns the schema null sentinel, or the primitive's
// natural sentinel when the schema is silent.
func (e Encoding) ApplicableNullValue() PrimitiveValue {
	if e.Null != nil {
		return *e.Null
	}
	return e.Type.NullValue()
}
