package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces the canonical JSON form of an IR document. The same
// document always marshals to the same bytes: struct field order is fixed,
// HTML escaping is off and all names are NFC normalized. The registry
// relies on this for content comparison.
func Marshal(doc *Ir) ([]byte, error) {
	normalizeNames(doc)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal IR: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a canonical JSON IR document and validates its
// structure. The returned document is safe to hand to codec resolution.
func Unmarshal(data []byte) (*Ir, error) {
	var doc Ir
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal IR: %w", err)
	}
	normalizeNames(&doc)
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalizeNames applies NFC normalization to every name in the document so
// that identity comparison never depends on the producer's Unicode form.
func normalizeNames(doc *Ir) {
	doc.Package = norm.NFC.String(doc.Package)
	doc.Namespace = norm.NFC.String(doc.Namespace)
	normalizeTokenNames(doc.HeaderTokens)
	for _, tokens := range doc.TypeTokens {
		normalizeTokenNames(tokens)
	}
	for _, tokens := range doc.MessageTokens {
		normalizeTokenNames(tokens)
	}
}

func normalizeTokenNames(tokens []Token) {
	for i := range tokens {
		tokens[i].Name = norm.NFC.String(tokens[i].Name)
		tokens[i].ReferencedName = norm.NFC.String(tokens[i].ReferencedName)
	}
}
