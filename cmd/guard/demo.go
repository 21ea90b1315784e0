package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/domains/access"
	"mercator-hq/guard/pkg/domains/dbquery"
	"mercator-hq/guard/pkg/domains/files"
	"mercator-hq/guard/pkg/domains/network"
	"mercator-hq/guard/pkg/domains/orders"
	"mercator-hq/guard/pkg/guard"
	"mercator-hq/guard/pkg/telemetry/logging"
)

var demoFlags struct {
	showRule bool
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay the demonstration inputs of every domain",
	Long: `Decide a fixed set of demonstration inputs for all five domains and print
each decision under a section heading. Decisions are recorded in the audit
trail like any other.

Examples:
  guard demo
  guard demo --show-rule --no-audit`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoFlags.showRule, "show-rule", false, "append the matched rule ID to each decision")
}

type demoSection struct {
	title  string
	inputs []codec.Input
}

func demoSections() []demoSection {
	return []demoSection{
		{"Network Response Handling", samplesOf(domains.Network, network.Samples())},
		{"Authorization Examples", samplesOf(domains.Access, access.Samples())},
		{"File Operations", samplesOf(domains.Files, files.Samples())},
		{"Database Operations", samplesOf(domains.DBQuery, dbquery.Samples())},
		{"Order Validation", samplesOf(domains.Orders, orders.Samples())},
	}
}

func samplesOf[T guard.Variant](domain string, samples []T) []codec.Input {
	inputs := make([]codec.Input, len(samples))
	for i, v := range samples {
		inputs[i] = codec.Input{Domain: domain, Value: v}
	}
	return inputs
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	printer, err := newDecisionPrinter(cmd.OutOrStdout(), string(cli.FormatText), demoFlags.showRule)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Guard Conditions Demo ===")
	for _, section := range demoSections() {
		if err := playSection(ctx, a, printer, out, section); err != nil {
			return cli.NewCommandError("demo", err)
		}
	}
	return nil
}

func playSection(ctx context.Context, a *app, printer *decisionPrinter, out io.Writer, section demoSection) error {
	fmt.Fprintf(out, "\n--- %s ---\n", section.title)
	for _, in := range section.inputs {
		d, err := a.gatekeeper.Decide(logging.WithRequestID(ctx, uuid.NewString()), in)
		if err != nil {
			return err
		}
		if err := printer.Print(in, d); err != nil {
			return err
		}
	}
	return nil
}
