package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/catalog"
	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
)

var rulesFlags struct {
	format string
}

var rulesCmd = &cobra.Command{
	Use:   "rules [domain]",
	Short: "List the ordered rules of each table",
	Long: `Print every rule table in evaluation order. Rules are tried top to bottom
and the first match wins, so a rule is only reached when every rule above it
declined the input.

Examples:
  guard rules
  guard rules orders
  guard rules --format csv > rules.csv`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: domains.Names(),
	RunE:      listRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func listRules(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	format, err := cli.ParseFormat(rulesFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	c, err := catalog.Build(cfg)
	if err != nil {
		return cli.NewConfigError("rules", err.Error())
	}

	tables := ruleTables(c.Describe())
	if len(args) == 1 {
		d, ok := c.Lookup(args[0])
		if !ok {
			return cli.NewCommandError("rules", fmt.Errorf("unknown domain %q (known: %s)",
				args[0], strings.Join(domains.Names(), ", ")))
		}
		tables = ruleTables{d}
	}

	return formatter.FormatTo(cmd.OutOrStdout(), tables)
}

type ruleTables []catalog.DomainRules

func (t ruleTables) Text() string {
	var sb strings.Builder
	for i, table := range t {
		if i > 0 {
			sb.WriteString("\n")
		}
		shapes := make([]string, len(table.Shapes))
		for j, s := range table.Shapes {
			shapes[j] = string(s)
		}
		fmt.Fprintf(&sb, "%s (%d rules; shapes: %s)\n", table.Domain, len(table.Rules), strings.Join(shapes, ", "))
		for j, r := range table.Rules {
			kind := "guarded"
			if !r.Guarded {
				kind = "catch-all"
			}
			fmt.Fprintf(&sb, "  %2d. %-40s %-14s %-8s %s\n", j+1, r.ID, shapeLabel(string(r.Shape)), r.Outcome, kind)
		}
	}
	return sb.String()
}

func (t ruleTables) Header() []string {
	return []string{"domain", "position", "rule_id", "shape", "outcome", "guarded"}
}

func (t ruleTables) Rows() [][]string {
	var rows [][]string
	for _, table := range t {
		for j, r := range table.Rules {
			rows = append(rows, []string{
				table.Domain,
				strconv.Itoa(j + 1),
				r.ID,
				string(r.Shape),
				string(r.Outcome),
				strconv.FormatBool(r.Guarded),
			})
		}
	}
	return rows
}

func shapeLabel(shape string) string {
	if shape == "" {
		return "*"
	}
	return shape
}
