package guard

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for table construction failures.
var (
	// ErrIncompleteTable indicates a declared shape has no unconditional rule.
	ErrIncompleteTable = errors.New("incomplete rule table")

	// ErrUnreachableRule indicates a rule can never fire because an earlier
	// unconditional rule already covers its shape.
	ErrUnreachableRule = errors.New("unreachable rule")

	// ErrInvalidRule indicates a malformed rule (missing ID, producer, etc.).
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidTable indicates a malformed table declaration.
	ErrInvalidTable = errors.New("invalid rule table")
)

// TableError collects every problem found while constructing a Table.
type TableError struct {
	Domain   string
	Problems []error
}

// Error returns all problems, one per line when there are several.
func (e *TableError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("rule table %q: %v", e.Domain, e.Problems[0])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "rule table %q has %d problems:\n", e.Domain, len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&sb, "  - %v\n", p)
	}
	return sb.String()
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *TableError) Unwrap() []error {
	return e.Problems
}

// GuardPanicError is raised (as a panic value) when a rule's guard or
// producer panics. Guards must be total; a panicking guard is a defect in the
// rule definition and is never skipped.
type GuardPanicError struct {
	Domain string
	RuleID string
	Value  any
}

// Error returns the error message.
func (e *GuardPanicError) Error() string {
	return fmt.Sprintf("rule table %q: rule %q panicked: %v", e.Domain, e.RuleID, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *GuardPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// UnmatchedError is raised (as a panic value) when no rule matches an input.
// Tables built by NewTable are total, so this only happens for inputs outside
// the variant set, such as a nil interface value.
type UnmatchedError struct {
	Domain string
	Shape  Shape
}

// Error returns the error message.
func (e *UnmatchedError) Error() string {
	if e.Shape == AnyShape {
		return fmt.Sprintf("rule table %q: no rule matched a nil input", e.Domain)
	}
	return fmt.Sprintf("rule table %q: no rule matched shape %q", e.Domain, e.Shape)
}
