package ir

import "fmt"

// Validate checks the structural integrity of a loaded IR document before
// any codec resolution trusts its span counts. Schema authoring rules are
// validated upstream; this only rejects documents the walker could not
// traverse safely.
func Validate(doc *Ir) error {
	if doc.ID < 0 {
		return fmt.Errorf("schema id must be non-negative, got %d", doc.ID)
	}
	if doc.ByteOrder != LittleEndian && doc.ByteOrder != BigEndian {
		return fmt.Errorf("schema byte order %q is not a declared order", doc.ByteOrder)
	}
	for _, t := range []PrimitiveType{
		doc.Header.BlockLengthType, doc.Header.TemplateIDType,
		doc.Header.SchemaIDType, doc.Header.VersionType,
	} {
		if !t.Valid() {
			return fmt.Errorf("header structure names invalid primitive %q", t)
		}
	}
	if len(doc.HeaderTokens) > 0 {
		if err := validateSpan("header", doc.HeaderTokens, SignalBeginComposite); err != nil {
			return err
		}
	}
	for n, tokens := range doc.TypeTokens {
		if len(tokens) == 0 {
			return fmt.Errorf("type %d: empty token span", n)
		}
		if err := validateSpan(fmt.Sprintf("type %q", tokens[0].Name), tokens, tokens[0].Signal); err != nil {
			return err
		}
	}
	seen := make(map[int64]string)
	for n, tokens := range doc.MessageTokens {
		if len(tokens) == 0 {
			return fmt.Errorf("message %d: empty token span", n)
		}
		if err := validateSpan(fmt.Sprintf("message %q", tokens[0].Name), tokens, SignalBeginMessage); err != nil {
			return err
		}
		id := tokens[0].ID
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("messages %q and %q share template id %d", prev, tokens[0].Name, id)
		}
		seen[id] = tokens[0].Name
	}
	return nil
}

// validateSpan checks that a top-level span opens with the expected signal,
// that its component count covers the whole slice and that every nested
// span is well formed.
func validateSpan(what string, tokens []Token, open Signal) error {
	if tokens[0].Signal != open {
		return fmt.Errorf("%s: opens with %s, want %s", what, tokens[0].Signal, open)
	}
	if tokens[0].SpanCount != len(tokens) {
		return fmt.Errorf("%s: span count %d does not cover %d tokens",
			what, tokens[0].SpanCount, len(tokens))
	}
	if err := validateNesting(tokens); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// validateNesting walks a span recursively, checking signal validity,
// span-count bounds and begin/end pairing at every level.
func validateNesting(tokens []Token) error {
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		if !t.Signal.Valid() {
			return &MalformedError{Index: i, Reason: fmt.Sprintf("unknown signal %q", t.Signal)}
		}
		if t.SpanCount < 1 {
			return &MalformedError{Index: i, Got: t.Signal, Reason: "span count below 1"}
		}
		if !t.Signal.IsBegin() {
			i++
			continue
		}
		n := t.SpanCount
		if i+n > len(tokens) {
			return &MalformedError{
				Index: i, Got: t.Signal,
				Reason: fmt.Sprintf("span count %d overruns %d remaining tokens", n, len(tokens)-i),
			}
		}
		end, _ := t.Signal.EndSignal()
		if got := tokens[i+n-1].Signal; got != end {
			return &MalformedError{
				Index: i + n - 1, Got: got,
				Reason: fmt.Sprintf("span opened by %s must close with %s", t.Signal, end),
			}
		}
		if n > 2 {
			if err := validateNesting(tokens[i+1 : i+n-1]); err != nil {
				return err
			}
		}
		i += n
	}
	return nil
}
