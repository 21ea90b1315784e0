package main

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/guard/pkg/catalog"
)

func TestRulesCommand_Text(t *testing.T) {
	stdout, _, err := execute(t, "", "rules", "--no-audit")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}

	for _, want := range []string{
		"network (13 rules; shapes: success, error, loading, timeout)",
		"orders (9 rules; shapes: order)",
		"network.error.server",
		"orders.standard",
		"catch-all",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("rules output missing %q", want)
		}
	}

	// Evaluation order is preserved.
	if strings.Index(stdout, "orders.premium_required") > strings.Index(stdout, "orders.standard") {
		t.Error("orders rules are not listed in evaluation order")
	}
}

func TestRulesCommand_Domain(t *testing.T) {
	stdout, _, err := execute(t, "", "rules", "dbquery", "--format", "json", "--no-audit")
	if err != nil {
		t.Fatalf("rules dbquery: %v", err)
	}

	var tables []catalog.DomainRules
	if err := json.Unmarshal([]byte(stdout), &tables); err != nil {
		t.Fatalf("rules output: %v\n%s", err, stdout)
	}
	if len(tables) != 1 || tables[0].Domain != "dbquery" {
		t.Fatalf("tables = %+v, want dbquery only", tables)
	}
	rules := tables[0].Rules
	if rules[0].ID != "dbquery.large_select" || rules[len(rules)-1].ID != "dbquery.query" {
		t.Errorf("rules = %+v", rules)
	}
	if rules[len(rules)-1].Guarded {
		t.Error("last rule should be the catch-all")
	}
}

func TestRulesCommand_CSV(t *testing.T) {
	stdout, _, err := execute(t, "", "rules", "files", "--format", "csv", "--no-audit")
	if err != nil {
		t.Fatalf("rules --format csv: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if got := strings.Join(rows[0], ","); got != "domain,position,rule_id,shape,outcome,guarded" {
		t.Errorf("header = %q", got)
	}
	if rows[1][2] != "files.read.too_large" || rows[1][1] != "1" {
		t.Errorf("first row = %v", rows[1])
	}
}

func TestRulesCommand_UnknownDomain(t *testing.T) {
	_, _, err := execute(t, "", "rules", "weather", "--no-audit")
	if err == nil || !strings.Contains(err.Error(), `unknown domain "weather"`) {
		t.Errorf("error = %v, want unknown domain", err)
	}
}
