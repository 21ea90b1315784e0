package catalog

import (
	"errors"
	"strings"
	"testing"

	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/domains/access"
	"mercator-hq/guard/pkg/domains/dbquery"
	"mercator-hq/guard/pkg/guard"
)

func TestDefault(t *testing.T) {
	c := Default()

	described := c.Describe()
	if len(described) != len(domains.Names()) {
		t.Fatalf("Describe() returned %d domains, want %d", len(described), len(domains.Names()))
	}
	for i, name := range domains.Names() {
		if described[i].Domain != name {
			t.Errorf("domain %d = %q, want %q", i, described[i].Domain, name)
		}
		if len(described[i].Rules) == 0 {
			t.Errorf("domain %q has no rules", name)
		}
		if len(described[i].Shapes) == 0 {
			t.Errorf("domain %q has no shapes", name)
		}
	}

	counts := c.RuleCounts()
	if counts[domains.Network] != 13 {
		t.Errorf("network rule count = %d, want 13", counts[domains.Network])
	}
	if counts[domains.Access] != 12 {
		t.Errorf("access rule count = %d, want 12", counts[domains.Access])
	}
}

func TestBuild_UsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Identity.CurrentUserID = "alice"
	cfg.Rules.Queries.GuardedTable = "accounts"

	c, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	d := c.Access.Decide(access.GetUser{UserID: "alice", AuthLevel: access.User})
	if d.Outcome != guard.OutcomeSuccess {
		t.Errorf("own-data request rejected: %+v", d)
	}

	d = c.DBQuery.Decide(dbquery.NewQuery("accounts", dbquery.Select, 5000))
	if d.RuleID != "dbquery.large_select" {
		t.Errorf("guarded table not applied, matched %q", d.RuleID)
	}
	d = c.DBQuery.Decide(dbquery.NewQuery("users", dbquery.Select, 5000))
	if d.RuleID == "dbquery.large_select" {
		t.Error("default guarded table still applied")
	}
}

func TestBuild_NilConfig(t *testing.T) {
	c, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil) error = %v", err)
	}
	if c.Orders == nil {
		t.Error("orders table missing")
	}
}

func TestBuild_ReportsEveryBrokenTable(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Files.MaxReadBytes = -1
	cfg.Rules.Queries.GuardedTable = ""

	_, err := Build(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"files table", "dbquery table"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	var tableErr *guard.TableError
	if errors.As(err, &tableErr) {
		t.Errorf("option errors should not surface as table errors: %v", tableErr)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	d, ok := c.Lookup(domains.Orders)
	if !ok {
		t.Fatal("orders not found")
	}
	if d.Rules[len(d.Rules)-1].ID != "orders.standard" {
		t.Errorf("last orders rule = %q, want orders.standard", d.Rules[len(d.Rules)-1].ID)
	}

	if _, ok := c.Lookup("payments"); ok {
		t.Error("unknown domain found")
	}
}
