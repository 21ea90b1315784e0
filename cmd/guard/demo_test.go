package main

import (
	"strings"
	"testing"
)

func TestDemoCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "demo", "--no-audit")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	headings := []string{
		"=== Guard Conditions Demo ===",
		"--- Network Response Handling ---",
		"--- Authorization Examples ---",
		"--- File Operations ---",
		"--- Database Operations ---",
		"--- Order Validation ---",
	}
	last := -1
	for _, h := range headings {
		i := strings.Index(stdout, h)
		if i < 0 {
			t.Fatalf("demo output missing %q", h)
		}
		if i < last {
			t.Errorf("%q is out of order", h)
		}
		last = i
	}

	for _, want := range []string{
		"🔥 Server Error (500): Internal server error",
		"❌ Only admins can delete users",
		"❌ DROP operations require transaction",
		"Order 1: ❌ Large orders require premium membership",
		"Order 3: ❌ Small orders must be priority orders",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("demo output missing %q", want)
		}
	}
}

func TestDemoCommand_ShowRule(t *testing.T) {
	stdout, _, err := execute(t, "", "demo", "--show-rule", "--no-audit")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if !strings.Contains(stdout, "[network.loading]") {
		t.Errorf("demo --show-rule output lacks rule IDs:\n%s", stdout)
	}
}
