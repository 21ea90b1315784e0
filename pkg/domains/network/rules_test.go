package network

import (
	"testing"

	"mercator-hq/guard/pkg/guard"
)

func mustTable(t *testing.T) *guard.Table[Response] {
	t.Helper()
	table, err := NewTable()
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

func TestNewTable_Rules(t *testing.T) {
	table := mustTable(t)
	if table.Len() != 13 {
		t.Errorf("Len() = %d, want 13", table.Len())
	}
	if table.Domain() != "network" {
		t.Errorf("Domain() = %q, want %q", table.Domain(), "network")
	}
}

func TestDecide(t *testing.T) {
	table := mustTable(t)

	tests := []struct {
		name        string
		input       Response
		wantRule    string
		wantOutcome guard.Outcome
		wantMessage string
	}{
		{"ok", NewSuccess("User profile data"), "network.success.ok", guard.OutcomeSuccess, "✅ Success: User profile data"},
		{"created", Success{Data: "Resource created", StatusCode: 201}, "network.success.created", guard.OutcomeSuccess, "✅ Created: Resource created"},
		{"accepted", Success{Data: "queued", StatusCode: 202}, "network.success.accepted", guard.OutcomeSuccess, "✅ Accepted: queued"},
		{"other success", Success{Data: "empty", StatusCode: 204}, "network.success.other", guard.OutcomeSuccess, "✅ Success (204): empty"},
		{"bad request", Error{Message: "Missing required fields", StatusCode: 400}, "network.error.bad_request", guard.OutcomeError, "❌ Bad Request: Missing required fields"},
		{"unauthorized", Error{Message: "Invalid credentials", StatusCode: 401}, "network.error.unauthorized", guard.OutcomeError, "🔒 Unauthorized: Invalid credentials"},
		{"forbidden", Error{Message: "Access denied", StatusCode: 403}, "network.error.forbidden", guard.OutcomeError, "🚫 Forbidden: Access denied"},
		{"not found", Error{Message: "User not found", StatusCode: 404}, "network.error.not_found", guard.OutcomeError, "🔍 Not Found: User not found"},
		{"rate limited", Error{Message: "Too many requests", StatusCode: 429}, "network.error.rate_limited", guard.OutcomeWarning, "⏰ Rate Limited: Too many requests"},
		{"server lower bound", Error{Message: "Internal server error", StatusCode: 500}, "network.error.server", guard.OutcomeError, "🔥 Server Error (500): Internal server error"},
		{"server upper bound", Error{Message: "x", StatusCode: 599}, "network.error.server", guard.OutcomeError, "🔥 Server Error (599): x"},
		{"below server range", Error{Message: "x", StatusCode: 499}, "network.error.other", guard.OutcomeError, "❌ Error (499): x"},
		{"above server range", Error{Message: "x", StatusCode: 600}, "network.error.other", guard.OutcomeError, "❌ Error (600): x"},
		{"loading", Loading{}, "network.loading", guard.OutcomePending, "⏳ Loading..."},
		{"timeout", Timeout{}, "network.timeout", guard.OutcomeError, "⏱️ Request timed out"},
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

func TestDecide_EveryStatusCodeIsCovered(t *testing.T) {
	table := mustTable(t)
	for code := 0; code <= 1000; code++ {
		if d := table.Decide(Error{Message: "m", StatusCode: code}); d.RuleID == "" {
			t.Fatalf("status %d produced no rule", code)
		}
		if d := table.Decide(Success{Data: "d", StatusCode: code}); d.Outcome != guard.OutcomeSuccess {
			t.Fatalf("success status %d outcome = %q", code, d.Outcome)
		}
	}
}

func TestSamples(t *testing.T) {
	table := mustTable(t)
	samples := Samples()
	if len(samples) != 10 {
		t.Fatalf("len(Samples()) = %d, want 10", len(samples))
	}
	seen := make(map[guard.Shape]bool)
	for _, s := range samples {
		seen[s.Shape()] = true
		_ = table.Decide(s)
	}
	for _, shape := range Shapes() {
		if !seen[shape] {
			t.Errorf("Samples() has no %q response", shape)
		}
	}
}
