package guard

import "fmt"

// Table is an immutable, validated, ordered rule list for one domain.
type Table[T Variant] struct {
	domain string
	shapes []Shape
	rules  []Rule[T]
}

// NewTable validates the rules against the declared shapes and returns a
// Table. Validation fails with a *TableError when:
//   - the domain name or shape list is empty, or a shape is declared twice
//   - a rule has an empty or duplicate ID, an unknown shape, an invalid
//     outcome or no producer
//   - a rule is unreachable behind an earlier catch-all for its shape
//   - a declared shape has no catch-all rule
func NewTable[T Variant](domain string, shapes []Shape, rules ...Rule[T]) (*Table[T], error) {
	var problems []error

	if domain == "" {
		problems = append(problems, fmt.Errorf("%w: domain name is required", ErrInvalidTable))
	}
	if len(shapes) == 0 {
		problems = append(problems, fmt.Errorf("%w: at least one shape must be declared", ErrInvalidTable))
	}

	declared := make(map[Shape]bool, len(shapes))
	for _, s := range shapes {
		if s == AnyShape {
			problems = append(problems, fmt.Errorf("%w: shape names must not be empty", ErrInvalidTable))
			continue
		}
		if declared[s] {
			problems = append(problems, fmt.Errorf("%w: shape %q declared twice", ErrInvalidTable, s))
		}
		declared[s] = true
	}

	ids := make(map[string]bool, len(rules))
	covered := make(map[Shape]bool, len(shapes))
	coveredAll := false

	for i, r := range rules {
		// Structural checks
		if r.ID == "" {
			problems = append(problems, fmt.Errorf("%w: rule at position %d has no ID", ErrInvalidRule, i))
		} else if ids[r.ID] {
			problems = append(problems, fmt.Errorf("%w: duplicate rule ID %q", ErrInvalidRule, r.ID))
		}
		ids[r.ID] = true

		if r.problem != "" {
			problems = append(problems, fmt.Errorf("%w: rule %q: %s", ErrInvalidRule, r.ID, r.problem))
		}
		if r.Shape != AnyShape && !declared[r.Shape] {
			problems = append(problems, fmt.Errorf("%w: rule %q references undeclared shape %q", ErrInvalidRule, r.ID, r.Shape))
		}
		if !r.Outcome.Valid() {
			problems = append(problems, fmt.Errorf("%w: rule %q has invalid outcome %q", ErrInvalidRule, r.ID, r.Outcome))
		}
		if r.Produce == nil {
			problems = append(problems, fmt.Errorf("%w: rule %q has no producer", ErrInvalidRule, r.ID))
		}

		// Reachability
		if coveredAll || (r.Shape != AnyShape && covered[r.Shape]) || (r.Shape == AnyShape && allCovered(shapes, covered)) {
			problems = append(problems, fmt.Errorf("%w: rule %q at position %d follows a catch-all for its shape", ErrUnreachableRule, r.ID, i))
		}

		if r.Unconditional() {
			if r.Shape == AnyShape {
				coveredAll = true
			} else {
				covered[r.Shape] = true
			}
		}
	}

	// Totality
	if !coveredAll {
		for _, s := range shapes {
			if !covered[s] {
				problems = append(problems, fmt.Errorf("%w: shape %q has no catch-all rule", ErrIncompleteTable, s))
			}
		}
	}

	if len(problems) > 0 {
		return nil, &TableError{Domain: domain, Problems: problems}
	}

	return &Table[T]{
		domain: domain,
		shapes: append([]Shape(nil), shapes...),
		rules:  append([]Rule[T](nil), rules...),
	}, nil
}

// MustTable is like NewTable but panics if the table is invalid. It is meant
// for tables built once at startup, where an incomplete table is a
// programming error.
func MustTable[T Variant](domain string, shapes []Shape, rules ...Rule[T]) *Table[T] {
	t, err := NewTable(domain, shapes, rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Domain returns the table's domain name.
func (t *Table[T]) Domain() string {
	return t.domain
}

// Shapes returns a copy of the declared shapes.
func (t *Table[T]) Shapes() []Shape {
	return append([]Shape(nil), t.shapes...)
}

// Len returns the number of rules.
func (t *Table[T]) Len() int {
	return len(t.rules)
}

// Rules describes the rules in evaluation order.
func (t *Table[T]) Rules() []RuleInfo {
	infos := make([]RuleInfo, len(t.rules))
	for i, r := range t.rules {
		infos[i] = RuleInfo{
			Position: i,
			ID:       r.ID,
			Shape:    r.Shape,
			Guarded:  !r.Unconditional(),
			Outcome:  r.Outcome,
		}
	}
	return infos
}

func allCovered(shapes []Shape, covered map[Shape]bool) bool {
	if len(shapes) == 0 {
		return false
	}
	for _, s := range shapes {
		if !covered[s] {
			return false
		}
	}
	return true
}
