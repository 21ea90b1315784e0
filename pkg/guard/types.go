package guard

// Shape names one case of a domain's closed variant set (e.g. "success",
// "error", "loading" for network responses).
type Shape string

// AnyShape is the shape pattern of a rule that applies to every case of the
// variant set. Single-shape records use it for all of their rules.
const AnyShape Shape = ""

// Variant is implemented by every taggable input. Domain packages seal their
// variant sets with an additional unexported marker method.
type Variant interface {
	// Shape reports which case of the variant set the value is.
	Shape() Shape
}

// Outcome classifies a decision independently of its rendered message.
type Outcome string

const (
	// OutcomeSuccess means the input was accepted.
	OutcomeSuccess Outcome = "success"

	// OutcomeWarning means the input was accepted with a caveat (pagination
	// advice, manual review, rate limiting).
	OutcomeWarning Outcome = "warning"

	// OutcomeError means the input was rejected.
	OutcomeError Outcome = "error"

	// OutcomePending means no result is available yet.
	OutcomePending Outcome = "pending"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeWarning, OutcomeError, OutcomePending:
		return true
	default:
		return false
	}
}

// Outcomes returns every known outcome in severity order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomePending, OutcomeWarning, OutcomeError}
}

// Decision is the single result of evaluating a Table against one input.
// It is produced and consumed synchronously and never retained by the engine.
type Decision struct {
	// Domain is the name of the table that produced the decision.
	Domain string `json:"domain"`

	// Shape is the case of the evaluated input.
	Shape Shape `json:"shape"`

	// RuleID identifies the rule that matched.
	RuleID string `json:"rule_id"`

	// Outcome classifies the decision.
	Outcome Outcome `json:"outcome"`

	// Message is the human-readable result built by the matched rule.
	Message string `json:"message"`
}

// Rejected reports whether the decision rejected its input.
func (d Decision) Rejected() bool {
	return d.Outcome == OutcomeError
}
