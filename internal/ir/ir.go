package ir

import "fmt"

// HeaderStructure describes the message header composite: the meta-fields
// framing every message on the wire. The upstream resolver guarantees the
// four named fields exist in the header type.
type HeaderStructure struct {
	BlockLengthType PrimitiveType `json:"blockLengthType" yaml:"blockLengthType"`
	TemplateIDType  PrimitiveType `json:"templateIdType" yaml:"templateIdType"`
	SchemaIDType    PrimitiveType `json:"schemaIdType" yaml:"schemaIdType"`
	VersionType     PrimitiveType `json:"versionType" yaml:"versionType"`
}

// Ir is a complete resolved schema: shared types plus one flat token
// sequence per message.
type Ir struct {
	Package       string          `json:"package" yaml:"package"`
	Namespace     string          `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	ID            int64           `json:"id" yaml:"id"`
	Version       int64           `json:"version" yaml:"version"`
	SemanticVer   string          `json:"semanticVersion,omitempty" yaml:"semanticVersion,omitempty"`
	ByteOrder     ByteOrder       `json:"byteOrder" yaml:"byteOrder"`
	Header        HeaderStructure `json:"header" yaml:"header"`
	HeaderTokens  []Token         `json:"headerTokens" yaml:"headerTokens"`
	TypeTokens    [][]Token       `json:"types,omitempty" yaml:"types,omitempty"`
	MessageTokens [][]Token       `json:"messages" yaml:"messages"`
}

// Message returns the token span of the message with the given template id.
func (i *Ir) Message(templateID int64) ([]Token, error) {
	for _, tokens := range i.MessageTokens {
		if len(tokens) > 0 && tokens[0].ID == templateID {
			return tokens, nil
		}
	}
	return nil, fmt.Errorf("no message with template id %d", templateID)
}

// MessageByName returns the token span of the named message.
func (i *Ir) MessageByName(name string) ([]Token, error) {
	for _, tokens := range i.MessageTokens {
		if len(tokens) > 0 && tokens[0].Name == name {
			return tokens, nil
		}
	}
	return nil, fmt.Errorf("no message named %q", name)
}

// Type returns the token span of the named shared type (composite, enum or
// choice set).
func (i *Ir) Type(name string) ([]Token, error) {
	for _, tokens := range i.TypeTokens {
		if len(tokens) > 0 && tokens[0].ApplicableTypeName() == name {
			return tokens, nil
		}
	}
	return nil, fmt.Errorf("no type named %q", name)
}
