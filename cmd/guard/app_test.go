package main

import (
	"context"
	"slices"
	"testing"

	"mercator-hq/guard/pkg/config"
)

func TestSetup_ActivatesLoadedConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "identity:\n  current_user_id: carol\n")

	if _, _, err := execute(t, "", "validate", "-c", path); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cur := config.Current()
	if cur == nil {
		t.Fatal("no active configuration after setup")
	}
	if cur.Identity.CurrentUserID != "carol" {
		t.Errorf("active user = %q, want carol", cur.Identity.CurrentUserID)
	}
}

func TestHealthChecker_FollowsActiveConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	if _, _, err := execute(t, "", "validate", "-c", path); err != nil {
		t.Fatalf("validate: %v", err)
	}

	ctx := context.Background()
	a, err := newApp(ctx, config.MustCurrent(), appOptions{})
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close(ctx)

	checker := a.healthChecker()
	want := []string{"audit_storage", "catalog", "config"}
	if got := checker.ListChecks(); !slices.Equal(got, want) {
		t.Errorf("checks = %v, want %v", got, want)
	}
	if status := checker.CheckReadiness(ctx); !status.Ready() {
		t.Fatalf("expected ready, got %+v", status)
	}

	// A reload that installs an invalid configuration is visible to the probe.
	bad := config.Default()
	bad.Identity.CurrentUserID = "  "
	prev := config.SetConfig(bad)
	t.Cleanup(func() { config.SetConfig(prev) })

	status := checker.CheckReadiness(ctx)
	if status.Ready() {
		t.Error("expected not ready with an invalid active configuration")
	}
	if status.Checks["config"].Status != "unhealthy" {
		t.Errorf("config check = %+v", status.Checks["config"])
	}
}
