// Package guard provides the ordered guard-rule decision engine.
//
// A Table holds an ordered list of rules for one domain. Each rule pairs a
// shape pattern (which case of the domain's closed variant set it applies to)
// with an optional guard predicate and a producer that renders the decision
// message. Evaluation is first-match-wins: rules are tried in table order and
// the first rule whose shape and guard both hold decides the outcome.
//
// # Evaluation Flow
//
//	Variant (tagged input)
//	       ↓
//	Table.Decide
//	       ↓
//	For each rule in table order:
//	  Shape matches? → Guard holds? → producer builds Decision (stop)
//	       ↓
//	Decision{Domain, Shape, RuleID, Outcome, Message}
//
// # Totality
//
// NewTable rejects tables that leave a declared shape without an
// unconditional (guard-less) rule, and tables containing rules that can never
// fire because an earlier unconditional rule already covers their shape.
// A table that constructs successfully therefore returns a Decision for every
// well-formed input.
//
// # Basic Usage
//
//	table := guard.MustTable("network", network.Shapes(),
//	    guard.Case[network.Response]("network.error.not_found",
//	        func(e network.Error) bool { return e.StatusCode == 404 },
//	        guard.OutcomeError,
//	        func(e network.Error) string { return "🔍 Not Found: " + e.Message }),
//	    // ... one catch-all per shape
//	)
//
//	decision := guard.Decide(table, network.Error{Message: "gone", StatusCode: 404})
//	fmt.Println(guard.Render(decision))
//
// # Thread Safety
//
// Tables are immutable after construction. Decide and Explain hold no state
// and may be called from any number of goroutines without synchronization.
//
// Guards must be pure and total. A guard that panics is treated as a fatal
// rule-definition defect: the panic is re-raised as a *GuardPanicError naming
// the rule, and evaluation never continues with the next rule.
package guard
