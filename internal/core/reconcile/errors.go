package reconcile

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

// ErrorKind classifies why a reconciliation failed.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindInvalidInput ErrorKind = "invalid_input"
	KindDescriptor   ErrorKind = "descriptor"
	KindRuntime      ErrorKind = "runtime"
)

// DescriptorNotFoundMessage is reported verbatim when the descriptor is missing.
const DescriptorNotFoundMessage = "The specified docker-compose file does not exist."

var (
	ErrDescriptorNotFound = errors.New("descriptor not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDescriptorInvalid  = errors.New("invalid descriptor")
	ErrRuntime            = errors.New("runtime query failed")
)

// Error is the single error type returned by reconciliation operations.
// Kind stays distinguishable even though callers usually only see Message.
type Error struct {
	Kind    ErrorKind
	Op      string // Operation that failed
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an Error against the sentinel of its kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Public returns the kind reported to callers. Descriptor failures are
// reported as runtime failures, which is what the calling tool expects.
func (e *Error) Public() ErrorKind {
	if e.Kind == KindDescriptor {
		return KindRuntime
	}
	return e.Kind
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrDescriptorNotFound
	case KindInvalidInput:
		return ErrInvalidInput
	case KindDescriptor:
		return ErrDescriptorInvalid
	case KindRuntime:
		return ErrRuntime
	default:
		return nil
	}
}

// NewError creates a new Error.
func NewError(kind ErrorKind, op, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var rErr *Error
	if errors.As(err, &rErr) {
		return rErr.Kind
	}
	return ""
}

// IsNotFound reports whether err is a missing-descriptor failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRuntime reports whether err is a runtime query failure.
func IsRuntime(err error) bool {
	return KindOf(err) == KindRuntime
}
