package orders

import (
	"testing"

	"mercator-hq/guard/pkg/guard"
)

func TestDecide(t *testing.T) {
	table, err := NewTable(DefaultThresholds())
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	samples := Samples()
	tests := []struct {
		name        string
		input       Request
		wantRule    string
		wantOutcome guard.Outcome
		wantMessage string
	}{
		{"large standard order", samples[0], "orders.premium_required", guard.OutcomeError, "❌ Large orders require premium membership"},
		{"large premium order with many items", samples[1], "orders.manual_review", guard.OutcomeWarning, "❌ Large orders with many items require manual review"},
		{"small non-priority order", samples[2], "orders.small_not_priority", guard.OutcomeError, "❌ Small orders must be priority orders"},
		{"premium priority", samples[3], "orders.premium_priority", guard.OutcomeSuccess, "✅ Premium priority order validated"},
		{"missing customer", samples[4], "orders.missing_customer", guard.OutcomeError, "❌ Customer ID is required"},
		{"negative non-priority hits minimum first", samples[5], "orders.small_not_priority", guard.OutcomeError, "❌ Small orders must be priority orders"},
		{"negative priority", Request{ID: "7", CustomerID: "c", Amount: -50, Items: []string{"x"}, IsPriority: true, Tier: Standard}, "orders.non_positive_amount", guard.OutcomeError, "❌ Order amount must be positive"},
		{"zero priority", Request{ID: "8", CustomerID: "c", Amount: 0, Items: []string{"x"}, IsPriority: true}, "orders.non_positive_amount", guard.OutcomeError, "❌ Order amount must be positive"},
		{"no items", Request{ID: "9", CustomerID: "c", Amount: 50, Tier: Standard}, "orders.no_items", guard.OutcomeError, "❌ Order must contain at least one item"},
		{"large premium order few items", Request{ID: "10", CustomerID: "c", Amount: 15000, Items: []string{"tv"}, Tier: Premium}, "orders.standard", guard.OutcomeSuccess, "✅ Standard order validated"},
		{"priority standard", Request{ID: "11", CustomerID: "c", Amount: 50, Items: []string{"x"}, IsPriority: true, Tier: Standard}, "orders.priority", guard.OutcomeSuccess, "✅ Priority order validated"},
		{"amount at premium threshold", Request{ID: "12", CustomerID: "c", Amount: 10000, Items: []string{"x"}, Tier: Standard}, "orders.standard", guard.OutcomeSuccess, "✅ Standard order validated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := table.Decide(tt.input)
			if d.RuleID != tt.wantRule {
				t.Errorf("RuleID = %q, want %q", d.RuleID, tt.wantRule)
			}
			if d.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", d.Outcome, tt.wantOutcome)
			}
			if d.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", d.Message, tt.wantMessage)
			}
		})
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"", Standard, false},
		{"standard", Standard, false},
		{"PREMIUM", Premium, false},
		{"gold", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	got := Label(Request{ID: "4"}, "✅ Priority order validated")
	if want := "Order 4: ✅ Priority order validated"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}
