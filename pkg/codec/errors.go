package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDomain is returned for an envelope naming no known domain.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrUnknownShape is returned for a shape the domain does not declare.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrInvalidInput is returned when the input payload is malformed or
	// breaks a structural constraint (negative size, priority below 1).
	ErrInvalidInput = errors.New("invalid input")
)

// DecodeError describes an envelope that could not be turned into an Input.
type DecodeError struct {
	Line   int    // 1-based line in the stream; 0 when decoding a single envelope
	Domain string // Domain named by the envelope, if it could be read
	Shape  string // Shape named by the envelope, if it could be read
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := "decode error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s [line=%d]", msg, e.Line)
	}
	if e.Domain != "" {
		msg = fmt.Sprintf("%s [domain=%s]", msg, e.Domain)
	}
	if e.Shape != "" {
		msg = fmt.Sprintf("%s [shape=%s]", msg, e.Shape)
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
