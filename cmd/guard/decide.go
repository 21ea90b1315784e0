package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/catalog"
	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/domains/access"
	"mercator-hq/guard/pkg/domains/files"
	"mercator-hq/guard/pkg/domains/network"
	"mercator-hq/guard/pkg/domains/orders"
	"mercator-hq/guard/pkg/gatekeeper"
	"mercator-hq/guard/pkg/guard"
	"mercator-hq/guard/pkg/telemetry/logging"
)

var decideFlags struct {
	format       string
	showRule     bool
	explain      bool
	failOnReject bool
	actor        string
}

var networkFlags struct {
	status  int
	data    string
	message string
}

var accessFlags struct {
	user  string
	data  string
	level string
}

var fileFlags struct {
	name    string
	size    int64
	content string
}

var queryFlags struct {
	table       string
	operation   string
	records     int
	transaction bool
	priority    int
}

var orderFlags struct {
	id       string
	customer string
	amount   float64
	items    string
	priority bool
	tier     string
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Decide a single input",
	Long: `Evaluate one input against its domain's rule table and print the decision.

The first rule whose shape and guard match wins. Use --explain to list every
rule considered up to the winning one.

Examples:
  # Classify a server error
  guard decide network error --status 503 --message "upstream down"

  # Authorize a delete
  guard decide access delete_user --user admin --level ADMIN

  # Validate a write
  guard decide file write --name ../../etc/passwd --size 100 --content x

  # Gate a query
  guard decide query --table users --op select --records 1500

  # Validate an order and show the rules considered
  guard decide order --id 1 --customer c1 --amount 15000 --items laptop,mouse --explain`,
}

var decideNetworkCmd = &cobra.Command{
	Use:       "network success|error|loading|timeout",
	Short:     "Classify a network response",
	Args:      cobra.ExactArgs(1),
	ValidArgs: shapeNames(network.Shapes()),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{}
		switch guard.Shape(args[0]) {
		case network.ShapeSuccess:
			payload["data"] = networkFlags.data
			if cmd.Flags().Changed("status") {
				payload["status_code"] = networkFlags.status
			}
		case network.ShapeError:
			payload["message"] = networkFlags.message
			payload["status_code"] = networkFlags.status
		}
		return decideEnvelope(cmd, domains.Network, args[0], payload)
	},
}

var decideAccessCmd = &cobra.Command{
	Use:       "access get_user|update_user|delete_user|get_all_users",
	Short:     "Authorize a user-management request",
	Args:      cobra.ExactArgs(1),
	ValidArgs: shapeNames(access.Shapes()),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{"auth_level": accessFlags.level}
		switch guard.Shape(args[0]) {
		case access.ShapeGetUser, access.ShapeDeleteUser:
			payload["user_id"] = accessFlags.user
		case access.ShapeUpdateUser:
			payload["user_id"] = accessFlags.user
			payload["data"] = accessFlags.data
		}
		return decideEnvelope(cmd, domains.Access, args[0], payload)
	},
}

var decideFileCmd = &cobra.Command{
	Use:       "file read|write|delete",
	Short:     "Validate a file operation",
	Args:      cobra.ExactArgs(1),
	ValidArgs: shapeNames(files.Shapes()),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"filename": fileFlags.name,
			"size":     fileFlags.size,
		}
		if guard.Shape(args[0]) == files.ShapeWrite {
			payload["content"] = fileFlags.content
		}
		return decideEnvelope(cmd, domains.Files, args[0], payload)
	},
}

var decideQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Gate a database query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"table":          queryFlags.table,
			"operation":      queryFlags.operation,
			"record_count":   queryFlags.records,
			"is_transaction": queryFlags.transaction,
		}
		if cmd.Flags().Changed("priority") {
			payload["priority"] = queryFlags.priority
		}
		return decideEnvelope(cmd, domains.DBQuery, "", payload)
	},
}

var decideOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Validate an order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"id":          orderFlags.id,
			"customer_id": orderFlags.customer,
			"amount":      orderFlags.amount,
			"items":       splitList(orderFlags.items),
			"is_priority": orderFlags.priority,
			"tier":        orderFlags.tier,
		}
		return decideEnvelope(cmd, domains.Orders, "", payload)
	},
}

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.AddCommand(decideNetworkCmd, decideAccessCmd, decideFileCmd, decideQueryCmd, decideOrderCmd)

	pf := decideCmd.PersistentFlags()
	pf.StringVarP(&decideFlags.format, "format", "f", "text", "output format: text, json")
	pf.BoolVar(&decideFlags.showRule, "show-rule", false, "append the matched rule ID to text output")
	pf.BoolVar(&decideFlags.explain, "explain", false, "list every rule considered")
	pf.BoolVar(&decideFlags.failOnReject, "fail-on-reject", false, "exit with status 3 when the input is rejected")
	pf.StringVar(&decideFlags.actor, "actor", "", "acting user recorded in the audit trail")

	decideNetworkCmd.Flags().IntVar(&networkFlags.status, "status", 0, "HTTP status code, required for error (success defaults to 200)")
	decideNetworkCmd.Flags().StringVar(&networkFlags.data, "data", "", "response data (success)")
	decideNetworkCmd.Flags().StringVar(&networkFlags.message, "message", "", "error message (error)")

	decideAccessCmd.Flags().StringVar(&accessFlags.user, "user", "", "target user ID")
	decideAccessCmd.Flags().StringVar(&accessFlags.data, "data", "", "update payload (update_user)")
	decideAccessCmd.Flags().StringVar(&accessFlags.level, "level", access.Guest.String(), "caller authorization level: GUEST, USER, ADMIN, SUPER_ADMIN")

	decideFileCmd.Flags().StringVar(&fileFlags.name, "name", "", "file name")
	decideFileCmd.Flags().Int64Var(&fileFlags.size, "size", 0, "file size in bytes")
	decideFileCmd.Flags().StringVar(&fileFlags.content, "content", "", "content to write (write)")

	decideQueryCmd.Flags().StringVar(&queryFlags.table, "table", "", "table name")
	decideQueryCmd.Flags().StringVar(&queryFlags.operation, "op", "", "operation: SELECT, INSERT, UPDATE, DELETE, DROP")
	decideQueryCmd.Flags().IntVar(&queryFlags.records, "records", 0, "affected record count")
	decideQueryCmd.Flags().BoolVar(&queryFlags.transaction, "tx", false, "query runs inside a transaction")
	decideQueryCmd.Flags().IntVar(&queryFlags.priority, "priority", 1, "query priority (>= 1)")

	decideOrderCmd.Flags().StringVar(&orderFlags.id, "id", "", "order ID")
	decideOrderCmd.Flags().StringVar(&orderFlags.customer, "customer", "", "customer ID")
	decideOrderCmd.Flags().Float64Var(&orderFlags.amount, "amount", 0, "order amount")
	decideOrderCmd.Flags().StringVar(&orderFlags.items, "items", "", "comma-separated item list")
	decideOrderCmd.Flags().BoolVar(&orderFlags.priority, "priority", false, "priority order")
	decideOrderCmd.Flags().StringVar(&orderFlags.tier, "tier", string(orders.Standard), "customer tier: standard, premium")
}

// decideEnvelope decodes the flag payload through the codec, so flags and
// NDJSON inputs are validated identically, then decides and prints it.
func decideEnvelope(cmd *cobra.Command, domain, shape string, payload map[string]any) error {
	cfg := config.MustCurrent()
	raw, err := json.Marshal(payload)
	if err != nil {
		return cli.NewCommandError("decide", err)
	}
	in, err := codec.DecodeEnvelope(codec.Envelope{Domain: domain, Shape: shape, Input: raw})
	if err != nil {
		return cli.NewCommandError("decide", err)
	}

	printer, err := newDecisionPrinter(cmd.OutOrStdout(), decideFlags.format, decideFlags.showRule)
	if err != nil {
		return err
	}

	if decideFlags.explain {
		c, err := catalog.Build(cfg)
		if err != nil {
			return cli.NewConfigError("rules", err.Error())
		}
		trace, err := gatekeeper.New(c).Explain(in)
		if err != nil {
			return cli.NewCommandError("decide", err)
		}
		return printer.PrintTrace(in, trace)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	if decideFlags.actor != "" {
		ctx = logging.WithActor(ctx, decideFlags.actor)
	}

	d, err := a.gatekeeper.Decide(ctx, in)
	if err != nil {
		return cli.NewCommandError("decide", err)
	}
	if err := printer.Print(in, d); err != nil {
		return err
	}
	if decideFlags.failOnReject && d.Rejected() {
		return &cli.RejectedError{Rejected: 1, Total: 1}
	}
	return nil
}

func shapeNames(shapes []guard.Shape) []string {
	names := make([]string, len(shapes))
	for i, s := range shapes {
		names[i] = string(s)
	}
	return names
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
