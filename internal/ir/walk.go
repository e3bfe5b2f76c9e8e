package ir

import "fmt"

// MalformedError reports a token stream that violates the IR's structural
// rules. It indicates a bug in the upstream IR producer, never a data-level
// condition, and is always fatal to the walk that detected it.
type MalformedError struct {
	Index  int    // position in the walked sub-sequence
	Got    Signal // signal found at Index, if any
	Reason string
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("malformed IR at token %d (%s): %s", e.Index, e.Got, e.Reason)
	}
	return fmt.Sprintf("malformed IR at token %d: %s", e.Index, e.Reason)
}

// collect gathers consecutive spans opened by the given begin signal,
// advancing by each span's component count. Collection stops at the first
// token with a different signal.
func collect(begin Signal, tokens []Token, i int) ([][]Token, int, error) {
	end, err := begin.EndSignal()
	if err != nil {
		return nil, i, err
	}

	var spans [][]Token
	for i < len(tokens) && tokens[i].Signal == begin {
		n := tokens[i].SpanCount
		if n < 1 {
			return nil, i, &MalformedError{Index: i, Got: begin, Reason: "span count below 1"}
		}
		if i+n > len(tokens) {
			return nil, i, &MalformedError{
				Index: i, Got: begin,
				Reason: fmt.Sprintf("span count %d overruns stream of %d tokens", n, len(tokens)-i),
			}
		}
		if last := tokens[i+n-1].Signal; last != end {
			return nil, i, &MalformedError{
				Index: i + n - 1, Got: last,
				Reason: fmt.Sprintf("span opened by %s must close with %s", begin, end),
			}
		}
		spans = append(spans, tokens[i:i+n])
		i += n
	}
	return spans, i, nil
}

// CollectFields gathers the field spans starting at index i. Each span runs
// from its beginField token through the matching endField.
func CollectFields(tokens []Token, i int) ([][]Token, int, error) {
	return collect(SignalBeginField, tokens, i)
}

// CollectGroups gathers the repeating-group spans starting at index i.
func CollectGroups(tokens []Token, i int) ([][]Token, int, error) {
	return collect(SignalBeginGroup, tokens, i)
}

// CollectVarData gathers the variable-length data spans starting at index i.
func CollectVarData(tokens []Token, i int) ([][]Token, int, error) {
	return collect(SignalBeginVarData, tokens, i)
}

// CollectBody splits a message or group body into its immediate children:
// fields, then groups, then variable-length tails, in that order. A token
// left over after the three categories marks the body as malformed.
func CollectBody(tokens []Token) (fields, groups, varData [][]Token, err error) {
	i := 0
	if fields, i, err = CollectFields(tokens, i); err != nil {
		return nil, nil, nil, err
	}
	if groups, i, err = CollectGroups(tokens, i); err != nil {
		return nil, nil, nil, err
	}
	if varData, i, err = CollectVarData(tokens, i); err != nil {
		return nil, nil, nil, err
	}
	if i != len(tokens) {
		return nil, nil, nil, &MalformedError{
			Index: i, Got: tokens[i].Signal,
			Reason: "expected a field, group or var-data span",
		}
	}
	return fields, groups, varData, nil
}

// MessageBody strips the enclosing beginMessage/endMessage pair.
func MessageBody(tokens []Token) ([]Token, error) {
	if len(tokens) < 2 || tokens[0].Signal != SignalBeginMessage {
		return nil, &MalformedError{Index: 0, Reason: "message span must open with beginMessage"}
	}
	if tokens[len(tokens)-1].Signal != SignalEndMessage {
		return nil, &MalformedError{
			Index: len(tokens) - 1, Got: tokens[len(tokens)-1].Signal,
			Reason: "message span must close with endMessage",
		}
	}
	return tokens[1 : len(tokens)-1], nil
}
