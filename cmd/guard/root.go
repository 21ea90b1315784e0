package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
	noAudit   bool
)

var rootCmd = &cobra.Command{
	Use:   "guard",
	Short: "Guard - ordered guard-rule decision engine",
	Long: `Guard classifies inputs into decisions using ordered, first-match-wins
rule tables. Five domains are built in:

  network  - network responses (success, error, loading, timeout)
  access   - user-management API requests by authorization level
  files    - file reads, writes and deletes
  dbquery  - database queries by table, operation and transaction
  orders   - customer orders by amount, items, priority and tier

Every decision names the rule that produced it and can be recorded in an
audit trail.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and GUARD_* environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (text, json, console)")
	rootCmd.PersistentFlags().BoolVar(&noAudit, "no-audit", false, "do not record decisions in the audit trail")
}

// setup loads configuration and installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	if logLevel != "" {
		loaded.Telemetry.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Telemetry.Logging.Format = logFormat
	}
	if verbose {
		loaded.Telemetry.Logging.Level = "debug"
	}
	if noAudit {
		loaded.Audit.Enabled = false
	}

	logger, err := logging.New(logging.Config{
		Level:     loaded.Telemetry.Logging.Level,
		Format:    loaded.Telemetry.Logging.Format,
		AddSource: loaded.Telemetry.Logging.AddSource,
		RedactPII: loaded.Telemetry.Logging.RedactPII,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	config.SetConfig(loaded)

	slog.Debug("configuration loaded",
		"path", cfgFile,
		"audit_enabled", loaded.Audit.Enabled,
		"audit_backend", loaded.Audit.Backend,
	)
	return nil
}
