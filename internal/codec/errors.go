package codec

import (
	"errors"
	"fmt"
)

// Violation represents a fatal codec contract failure detected during
// resolution or during a buffer operation.
//
// Violations include:
//   - Bounds: an access would read or write past the buffer length
//   - Range: an encode-time value falls outside its schema range
//   - Domain: a decoded enumeration value matches no declared member
//   - Malformed IR: a token span does not match its structural category
//
// Every violation is non-retriable: it marks either a malformed buffer or
// a schema/usage contract breach, never a transient condition. No codec
// operation swallows or retries one.
type Violation struct {
	// Code identifies the violation category.
	Code ViolationCode

	// Message is a human-readable description.
	Message string

	// Construct names the field, group or var-data element involved.
	Construct string

	// Position is the buffer position at the point of failure, where one
	// applies.
	Position int
}

// ViolationCode categorizes codec violations.
type ViolationCode string

const (
	// ErrCodeBounds indicates an access past the declared buffer length.
	ErrCodeBounds ViolationCode = "BOUNDS_VIOLATION"

	// ErrCodeRange indicates an encode-time value outside [min, max].
	ErrCodeRange ViolationCode = "RANGE_VIOLATION"

	// ErrCodeDomain indicates a decoded value with no declared member.
	ErrCodeDomain ViolationCode = "DOMAIN_VIOLATION"

	// ErrCodeMalformedIR indicates a token stream the resolver cannot
	// traverse: an upstream IR producer bug, not a data-level error.
	ErrCodeMalformedIR ViolationCode = "MALFORMED_IR"
)

// Error implements the error interface.
func (v *Violation) Error() string {
	if v.Construct != "" {
		return fmt.Sprintf("%s: %s (construct=%s)", v.Code, v.Message, v.Construct)
	}
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// IsBounds reports whether err is a bounds violation.
// Uses errors.As to handle wrapped errors.
func IsBounds(err error) bool {
	var v *Violation
	return errors.As(err, &v) && v.Code == ErrCodeBounds
}

// IsRange reports whether err is a range violation.
func IsRange(err error) bool {
	var v *Violation
	return errors.As(err, &v) && v.Code == ErrCodeRange
}

// IsDomain reports whether err is a domain violation.
func IsDomain(err error) bool {
	var v *Violation
	return errors.As(err, &v) && v.Code == ErrCodeDomain
}

// IsMalformedIR reports whether err is a malformed-IR violation.
func IsMalformedIR(err error) bool {
	var v *Violation
	return errors.As(err, &v) && v.Code == ErrCodeMalformedIR
}

// AsViolation extracts the Violation from err, if it carries one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func newBounds(construct string, position int, format string, args ...any) *Violation {
	return &Violation{
		Code:      ErrCodeBounds,
		Message:   fmt.Sprintf(format, args...),
		Construct: construct,
		Position:  position,
	}
}

func newRange(construct string, format string, args ...any) *Violation {
	return &Violation{Code: ErrCodeRange, Message: fmt.Sprintf(format, args...), Construct: construct}
}

func newDomain(construct string, format string, args ...any) *Violation {
	return &Violation{Code: ErrCodeDomain, Message: fmt.Sprintf(format, args...), Construct: construct}
}

func newMalformed(construct string, format string, args ...any) *Violation {
	return &Violation{Code: ErrCodeMalformedIR, Message: fmt.Sprintf(format, args...), Construct: construct}
}
