package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/audit/export"
	"mercator-hq/guard/pkg/audit/retention"
	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/config"
)

var auditFlags struct {
	timeRange  string
	domain     string
	rule       string
	outcome    string
	actor      string
	requestID  string
	limit      int
	offset     int
	sortBy     string
	order      string
	format     string
	output     string
	pretty     bool
	days       int
	maxRecords int64
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the decision audit trail",
	Long: `Query, export and prune the audit records written for every decision.

Subcommands:
  query   - List audit records matching filters
  export  - Stream matching records to JSON or CSV
  prune   - Apply the retention policy once

Examples:
  # Rejections of the last day
  guard audit query --outcome error --time-range "2026-10-18T00:00:00Z/2026-10-19T00:00:00Z"

  # Everything one user triggered, as CSV
  guard audit export --actor alice --format csv --output alice.csv`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List audit records",
	Long: `List audit records matching the given filters, newest first.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-10-18T00:00:00Z/2026-10-19T00:00:00Z"`,
	Args: cobra.NoArgs,
	RunE: queryAudit,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit records",
	Long: `Stream every audit record matching the filters as JSON or CSV. Records are
read and written one at a time, so exports are not bounded by memory.`,
	Args: cobra.NoArgs,
	RunE: exportAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records outside the retention policy",
	Long: `Run the retention policy once. --days and --max-records override the
configured audit.retention values for this run.`,
	Args: cobra.NoArgs,
	RunE: pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditExportCmd, auditPruneCmd)

	for _, c := range []*cobra.Command{auditQueryCmd, auditExportCmd} {
		c.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		c.Flags().StringVar(&auditFlags.domain, "domain", "", "filter by domain")
		c.Flags().StringVar(&auditFlags.rule, "rule", "", "filter by rule ID")
		c.Flags().StringVar(&auditFlags.outcome, "outcome", "", "filter by outcome (success, warning, error, pending)")
		c.Flags().StringVar(&auditFlags.actor, "actor", "", "filter by acting user")
		c.Flags().StringVar(&auditFlags.requestID, "request-id", "", "filter by request ID")
		c.Flags().StringVar(&auditFlags.sortBy, "sort-by", audit.SortDecidedAt, "sort field: decided_at, recorded_at, duration")
		c.Flags().StringVar(&auditFlags.order, "order", "desc", "sort order: asc, desc")
	}

	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", audit.DefaultLimit, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVarP(&auditFlags.format, "format", "f", "text", "output format: text, json, csv")

	auditExportCmd.Flags().StringVarP(&auditFlags.format, "format", "f", "json", "export format: json, csv")
	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
	auditExportCmd.Flags().BoolVar(&auditFlags.pretty, "pretty", false, "indent JSON output")

	auditPruneCmd.Flags().IntVar(&auditFlags.days, "days", -1, "retention period in days (default: from config)")
	auditPruneCmd.Flags().Int64Var(&auditFlags.maxRecords, "max-records", -1, "records to keep (default: from config)")
}

// buildQuery turns the filter flags into a validated query.
func buildQuery() (*audit.Query, error) {
	q := &audit.Query{
		Domain:    auditFlags.domain,
		RuleID:    auditFlags.rule,
		Outcome:   auditFlags.outcome,
		Actor:     auditFlags.actor,
		RequestID: auditFlags.requestID,
		SortBy:    auditFlags.sortBy,
		SortOrder: strings.ToLower(auditFlags.order),
	}

	if auditFlags.timeRange != "" {
		start, end, err := parseTimeRange(auditFlags.timeRange)
		if err != nil {
			return nil, cli.NewConfigError("time-range", err.Error())
		}
		q.StartTime, q.EndTime = &start, &end
	}

	return q, nil
}

func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range format (expected: start/end)")
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	return start, end, nil
}

func queryAudit(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	q, err := buildQuery()
	if err != nil {
		return err
	}
	q.Limit = auditFlags.limit
	q.Offset = auditFlags.offset
	if err := q.Validate(); err != nil {
		return cli.NewCommandError("audit", err)
	}
	q.ApplyDefaults()

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON, cli.FormatCSV:
		exporter, err := export.New(string(format), format == cli.FormatJSON)
		if err != nil {
			return cli.NewCommandError("audit", err)
		}
		return exporter.Export(ctx, records, out)
	default:
		fmt.Fprint(out, recordList{records: records, query: q}.Text())
		return nil
	}
}

func exportAudit(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	exporter, err := export.New(strings.ToLower(auditFlags.format), auditFlags.pretty)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	q, err := buildQuery()
	if err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return cli.NewCommandError("audit", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)

	var (
		out      io.Writer = cmd.OutOrStdout()
		progress = cli.DiscardProgress
	)
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return cli.NewCommandError("audit", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f

		total, err := store.Count(ctx, q)
		if err != nil {
			return cli.NewCommandError("audit", fmt.Errorf("count failed: %w", err))
		}
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "records")
		progress.Start(total)
	}

	written, err := streamExport(ctx, store, q, exporter, out, progress)
	if err != nil {
		progress.Error(err)
		return cli.NewCommandError("audit", fmt.Errorf("export failed: %w", err))
	}

	progress.Finish()
	if auditFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", written, auditFlags.output)
	}
	return nil
}

// streamExport pages through every record matching q, MaxLimit at a time,
// and feeds them to the exporter as a single stream.
func streamExport(ctx context.Context, store audit.Storage, q *audit.Query, exporter audit.Exporter, w io.Writer, progress cli.ProgressReporter) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan *audit.Record)
	pageErr := make(chan error, 1)
	var n int64

	go func() {
		defer close(records)
		pageErr <- forwardPages(ctx, store, q, func(r *audit.Record) bool {
			select {
			case records <- r:
				n++
				progress.Update(n)
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	err := exporter.ExportStream(ctx, records, w)
	cancel()
	for range records {
	}
	if perr := <-pageErr; err == nil && perr != nil && !errors.Is(perr, context.Canceled) {
		err = perr
	}
	return n, err
}

func forwardPages(ctx context.Context, store audit.Storage, q *audit.Query, send func(*audit.Record) bool) error {
	page := *q
	page.Limit = audit.MaxLimit
	for page.Offset = 0; ; page.Offset += page.Limit {
		recordsCh, errCh, err := store.QueryStream(ctx, &page)
		if err != nil {
			return err
		}
		count := 0
		for r := range recordsCh {
			if !send(r) {
				for range recordsCh {
				}
				return ctx.Err()
			}
			count++
		}
		if err := <-errCh; err != nil {
			return err
		}
		if count < page.Limit {
			return nil
		}
	}
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	policy := cfg.Audit.Retention
	if auditFlags.days >= 0 {
		policy.Days = auditFlags.days
	}
	if auditFlags.maxRecords >= 0 {
		policy.MaxRecords = auditFlags.maxRecords
	}
	if policy.Days == 0 && policy.MaxRecords == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention disabled: no records pruned.")
		return nil
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &policy)
	deleted, err := pruner.Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("prune failed: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d records.\n", deleted)
	return nil
}

// recordList renders query results for the terminal.
type recordList struct {
	records []*audit.Record
	query   *audit.Query
}

func (l recordList) Text() string {
	var sb strings.Builder
	if l.query.StartTime != nil && l.query.EndTime != nil {
		fmt.Fprintf(&sb, "Time range: %s to %s\n",
			l.query.StartTime.Format(time.RFC3339),
			l.query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "Total records: %d\n", len(l.records))

	if len(l.records) == 0 {
		sb.WriteString("No records found.\n")
		return sb.String()
	}

	for _, r := range l.records {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Record ID: %s\n", r.ID)
		fmt.Fprintf(&sb, "Request ID: %s\n", r.RequestID)
		fmt.Fprintf(&sb, "Decided: %s\n", r.DecidedAt.Format(time.RFC3339))
		if r.Actor != "" {
			fmt.Fprintf(&sb, "Actor: %s\n", r.Actor)
		}
		fmt.Fprintf(&sb, "Rule: %s (%s)\n", r.RuleID, r.Outcome)
		fmt.Fprintf(&sb, "Message: %s\n", r.Message)
		fmt.Fprintf(&sb, "Duration: %s\n", r.Duration)
	}

	if l.query.Limit > 0 && len(l.records) == l.query.Limit {
		sb.WriteString("\nUse --limit and --offset for pagination.\n")
	}
	return sb.String()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
