package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/catalog"
	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
)

var validateFlags struct {
	checkStorage bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and rule tables",
	Long: `Load the configuration, build every rule table and report the result.

Building a table checks that it is non-empty, that rule IDs are unique and
that its last rule is a catch-all, so a configuration that passes here can
decide every input.

Examples:
  guard validate -c guard.yaml
  guard validate --check-storage`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.checkStorage, "check-storage", false, "also open the audit storage and count its records")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	c, err := catalog.Build(cfg)
	if err != nil {
		return cli.NewConfigError("rules", err.Error())
	}

	out := cmd.OutOrStdout()
	source := cfgFile
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(out, "✓ Configuration valid (%s)\n", source)

	counts := c.RuleCounts()
	for _, d := range domains.Names() {
		fmt.Fprintf(out, "  %-8s %2d rules\n", d, counts[d])
	}

	if !validateFlags.checkStorage {
		return nil
	}
	if !cfg.Audit.Enabled {
		fmt.Fprintln(out, "Audit disabled: storage not checked.")
		return nil
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count(commandContext(cmd), &audit.Query{})
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("audit storage unreadable: %w", err))
	}
	fmt.Fprintf(out, "✓ Audit storage %s reachable (%d records)\n", cfg.Audit.Backend, n)
	return nil
}
