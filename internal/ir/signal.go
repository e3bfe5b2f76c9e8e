package ir

import "fmt"

// Signal identifies the structural role a token plays in the flat stream.
type Signal string

const (
	SignalBeginMessage   Signal = "beginMessage"
	SignalEndMessage     Signal = "endMessage"
	SignalBeginComposite Signal = "beginComposite"
	SignalEndComposite   Signal = "endComposite"
	SignalBeginField     Signal = "beginField"
	SignalEndField       Signal = "endField"
	SignalBeginGroup     Signal = "beginGroup"
	SignalEndGroup       Signal = "endGroup"
	SignalBeginEnum      Signal = "beginEnum"
	SignalValidValue     Signal = "validValue"
	SignalEndEnum        Signal = "endEnum"
	SignalBeginSet       Signal = "beginSet"
	SignalChoice         Signal = "choice"
	SignalEndSet         Signal = "endSet"
	SignalBeginVarData   Signal = "beginVarData"
	SignalEndVarData     Signal = "endVarData"
	SignalEncoding       Signal = "encoding"
)

// beginEnd pairs each begin signal with the end signal that closes it.
var beginEnd = map[Signal]Signal{
	SignalBeginMessage:   SignalEndMessage,
	SignalBeginComposite: SignalEndComposite,
	SignalBeginField:     SignalEndField,
	SignalBeginGroup:     SignalEndGroup,
	SignalBeginEnum:      SignalEndEnum,
	SignalBeginSet:       SignalEndSet,
	SignalBeginVarData:   SignalEndVarData,
}

// IsBegin reports whether the signal opens a multi-token span.
func (s Signal) IsBegin() bool {
	_, ok := beginEnd[s]
	return ok
}

// EndSignal returns the signal that closes a begin signal's span.
func (s Signal) EndSignal() (Signal, error) {
	end, ok := beginEnd[s]
	if !ok {
		return "", fmt.Errorf("signal %q opens no span", s)
	}
	return end, nil
}

// Valid reports whether s is one of the declared signals.
func (s Signal) Valid() bool {
	switch s {
	case SignalBeginMessage, SignalEndMessage,
		SignalBeginComposite, SignalEndComposite,
		SignalBeginField, SignalEndField,
		SignalBeginGroup, SignalEndGroup,
		SignalBeginEnum, SignalValidValue, SignalEndEnum,
		SignalBeginSet, SignalChoice, SignalEndSet,
		SignalBeginVarData, SignalEndVarData,
		SignalEncoding:
		return true
	}
	return false
}
