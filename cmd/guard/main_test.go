package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mercator-hq/guard/pkg/config"
)

// execute runs the root command with args and returns what it wrote.
// Flag values persist between executions, so every flag is reset first.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	config.SetConfig(nil)

	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// writeConfig writes a config that keeps the audit trail in dir using the
// pure Go SQLite driver.
func writeConfig(t *testing.T, dir string, extra string) string {
	t.Helper()

	path := filepath.Join(dir, "guard.yaml")
	content := fmt.Sprintf(`audit:
  enabled: true
  backend: sqlite
  sqlite:
    path: %s
    driver: sqlite
    wal_mode: false
telemetry:
  logging:
    level: warn
%s`, filepath.Join(dir, "audit.db"), extra)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
