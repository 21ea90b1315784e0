package guard

import "fmt"

// Rule is one entry of a Table. A rule matches an input when its Shape
// pattern matches the input's shape and its Guard (if any) returns true.
type Rule[T Variant] struct {
	// ID uniquely identifies the rule within its table.
	ID string

	// Shape is the case the rule applies to. AnyShape matches every case.
	Shape Shape

	// Guard further restricts the rule. A nil guard always holds, which
	// makes the rule the catch-all for its shape.
	Guard func(T) bool

	// Outcome is the classification of decisions produced by this rule.
	Outcome Outcome

	// Produce builds the decision message for a matched input.
	Produce func(T) string

	// problem records a construction defect detected by Case, reported by NewTable.
	problem string
}

// Unconditional reports whether the rule has no guard.
func (r Rule[T]) Unconditional() bool {
	return r.Guard == nil
}

// covers reports whether the rule's shape pattern accepts shape.
func (r Rule[T]) covers(shape Shape) bool {
	return r.Shape == AnyShape || r.Shape == shape
}

// Case builds a rule bound to the concrete case C of the variant set T.
// The guard and producer receive the input already narrowed to C, which gives
// them typed access to the case's fields. A nil guard makes the rule the
// catch-all for C.
//
//	guard.Case[network.Response]("network.error.server",
//	    func(e network.Error) bool { return e.StatusCode >= 500 && e.StatusCode <= 599 },
//	    guard.OutcomeError,
//	    func(e network.Error) string { return fmt.Sprintf("🔥 Server Error (%d): %s", e.StatusCode, e.Message) })
func Case[T Variant, C Variant](id string, when func(C) bool, outcome Outcome, produce func(C) string) Rule[T] {
	var zero C
	rule := Rule[T]{
		ID:      id,
		Shape:   zero.Shape(),
		Outcome: outcome,
	}

	if _, ok := any(zero).(T); !ok {
		rule.problem = fmt.Sprintf("case type %T is not a member of the table's variant set", zero)
	}

	if when != nil {
		rule.Guard = func(v T) bool {
			c, ok := any(v).(C)
			return ok && when(c)
		}
	}
	if produce != nil {
		rule.Produce = func(v T) string {
			return produce(any(v).(C))
		}
	}

	return rule
}

// When builds a rule that applies to every shape of T. It is the natural form
// for single-shape records such as database queries and orders.
func When[T Variant](id string, when func(T) bool, outcome Outcome, produce func(T) string) Rule[T] {
	return Rule[T]{
		ID:      id,
		Shape:   AnyShape,
		Guard:   when,
		Outcome: outcome,
		Produce: produce,
	}
}

// Otherwise builds the unconditional catch-all rule for every shape of T.
func Otherwise[T Variant](id string, outcome Outcome, produce func(T) string) Rule[T] {
	return When[T](id, nil, outcome, produce)
}

// Message returns a producer that ignores its input and returns msg.
func Message[T any](msg string) func(T) string {
	return func(T) string { return msg }
}

// RuleInfo is a read-only description of a rule, used for introspection.
type RuleInfo struct {
	// Position is the zero-based index of the rule in evaluation order.
	Position int `json:"position"`

	// ID is the rule identifier.
	ID string `json:"id"`

	// Shape is the rule's shape pattern; empty means every shape.
	Shape Shape `json:"shape,omitempty"`

	// Guarded is false for catch-all rules.
	Guarded bool `json:"guarded"`

	// Outcome is the classification the rule produces.
	Outcome Outcome `json:"outcome"`
}
