package guard

// Decide evaluates table against v and returns the first matching rule's
// decision. It is deterministic and free of side effects.
func Decide[T Variant](table *Table[T], v T) Decision {
	return table.Decide(v)
}

// Decide evaluates the table against v with first-match-wins semantics.
func (t *Table[T]) Decide(v T) Decision {
	return t.evaluate(v, nil)
}

// Step records how one rule fared during an explained evaluation.
type Step struct {
	// RuleID is the rule considered.
	RuleID string `json:"rule_id"`

	// ShapeMatched reports whether the rule's shape pattern accepted the input.
	ShapeMatched bool `json:"shape_matched"`

	// Guarded is false for catch-all rules.
	Guarded bool `json:"guarded"`

	// GuardResult is the guard's verdict; it is only meaningful when the
	// shape matched and the rule is guarded.
	GuardResult bool `json:"guard_result"`

	// Selected marks the winning rule. It is always the last step.
	Selected bool `json:"selected"`
}

// Trace is the result of Explain: the decision plus every rule considered
// up to and including the winning one.
type Trace struct {
	Decision Decision `json:"decision"`
	Steps    []Step   `json:"steps"`
}

// Explain evaluates the table like Decide and additionally records each rule
// considered. The returned decision is identical to Decide's.
func (t *Table[T]) Explain(v T) Trace {
	trace := &Trace{}
	trace.Decision = t.evaluate(v, trace)
	return *trace
}

// evaluate walks the rules in order. Guards and producers that panic are
// re-raised as *GuardPanicError naming the rule.
func (t *Table[T]) evaluate(v T, trace *Trace) Decision {
	if any(v) == nil {
		panic(&UnmatchedError{Domain: t.domain})
	}

	current := ""
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(*UnmatchedError); ok {
				panic(rec)
			}
			panic(&GuardPanicError{Domain: t.domain, RuleID: current, Value: rec})
		}
	}()

	shape := v.Shape()
	for _, r := range t.rules {
		current = r.ID

		step := Step{RuleID: r.ID, Guarded: !r.Unconditional()}
		if !r.covers(shape) {
			if trace != nil {
				trace.Steps = append(trace.Steps, step)
			}
			continue
		}
		step.ShapeMatched = true

		if r.Guard != nil {
			step.GuardResult = r.Guard(v)
			if !step.GuardResult {
				if trace != nil {
					trace.Steps = append(trace.Steps, step)
				}
				continue
			}
		}

		step.Selected = true
		if trace != nil {
			trace.Steps = append(trace.Steps, step)
		}

		return Decision{
			Domain:  t.domain,
			Shape:   shape,
			RuleID:  r.ID,
			Outcome: r.Outcome,
			Message: r.Produce(v),
		}
	}

	panic(&UnmatchedError{Domain: t.domain, Shape: shape})
}
