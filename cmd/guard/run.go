package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/telemetry/health"
	"mercator-hq/guard/pkg/telemetry/logging"
)

var runFlags struct {
	input        string
	metricsAddr  string
	watch        bool
	format       string
	showRule     bool
	failOnReject bool
	actor        string
	rejectedOut  string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decide a stream of NDJSON inputs",
	Long: `Read newline-delimited JSON envelopes and print one decision per input.

Each line is an envelope naming the domain, the shape and its fields:

  {"domain":"network","shape":"error","input":{"message":"boom","status_code":503}}
  {"domain":"dbquery","input":{"table":"users","operation":"DROP","record_count":1}}

Blank lines and lines starting with '#' are skipped. A line that cannot be
decoded is reported on stderr and the stream continues. Every decision gets
its own request ID and is recorded in the audit trail when enabled.

The command stops at end of input or on SIGINT/SIGTERM.

Examples:
  # Decide inputs from a file
  guard run --input inputs.ndjson

  # Decide inputs from stdin as JSON, exposing metrics and health probes
  cat inputs.ndjson | guard run --format json --metrics-addr 127.0.0.1:9090

  # Reload rule thresholds when the config file changes
  guard run --config guard.yaml --watch --input -

  # Keep the rejected envelopes for a later re-run
  guard run --input inputs.ndjson --rejected-out rejected.ndjson`,
	Args: cobra.NoArgs,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.input, "input", "i", "-", "input file, or - for stdin")
	runCmd.Flags().StringVar(&runFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides telemetry.metrics.listen_address)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload the rule catalog when the config file changes")
	runCmd.Flags().StringVarP(&runFlags.format, "format", "f", "text", "output format: text, json")
	runCmd.Flags().BoolVar(&runFlags.showRule, "show-rule", false, "append the matched rule ID to text output")
	runCmd.Flags().BoolVar(&runFlags.failOnReject, "fail-on-reject", false, "exit with status 3 when any input is rejected")
	runCmd.Flags().StringVar(&runFlags.actor, "actor", "", "acting user recorded in the audit trail")
	runCmd.Flags().StringVar(&runFlags.rejectedOut, "rejected-out", "", "write the envelopes of rejected inputs to this file")
}

type streamResult struct {
	in  codec.Input
	err error
}

type streamStats struct {
	total        int
	rejected     int
	decodeErrors int
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg := config.MustCurrent()
	printer, err := newDecisionPrinter(cmd.OutOrStdout(), runFlags.format, runFlags.showRule)
	if err != nil {
		return err
	}

	var input io.Reader = cmd.InOrStdin()
	if runFlags.input != "-" && runFlags.input != "" {
		f, err := os.Open(runFlags.input)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open input: %w", err))
		}
		defer f.Close()
		input = f
	}

	var rejects *codec.Writer
	if runFlags.rejectedOut != "" {
		f, err := os.Create(runFlags.rejectedOut)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to create rejected output: %w", err))
		}
		defer f.Close()
		rejects = codec.NewWriter(f)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	sigCtx, stop := cli.SetupSignalHandler(parent)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)

	a, err := newApp(ctx, cfg, appOptions{retention: true})
	if err != nil {
		cancel()
		return err
	}

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		if err := a.Close(context.Background()); err != nil {
			a.logger.Error("shutdown failed", "error", err)
		}
	}()

	addr := cfg.Telemetry.Metrics.ListenAddress
	if runFlags.metricsAddr != "" {
		addr = runFlags.metricsAddr
	}
	if addr != "" {
		mount := a.healthChecker().Mount(health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildDate: BuildDate,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.metrics.Serve(ctx, addr, cfg.Telemetry.Metrics.Path, mount); err != nil {
				a.logger.Error("metrics endpoint failed", "address", addr, "error", err)
			}
		}()
	}

	if runFlags.watch || cfg.Watch {
		if cfgFile == "" {
			a.logger.Warn("--watch needs --config; hot reload disabled")
		} else {
			watcher, err := config.NewWatcher(cfgFile, 0, a.logger)
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := watcher.Watch(ctx, func(next *config.Config) error {
					if err := a.gatekeeper.Reload(ctx, next); err != nil {
						return err
					}
					config.SetConfig(next)
					return nil
				})
				if err != nil {
					a.logger.Error("config watcher failed", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	reader := codec.NewReader(input)
	stats, err := decideStream(ctx, a, reader, printer, rejects, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d inputs: %d rejected, %d decode errors\n",
		stats.total, stats.rejected, stats.decodeErrors)

	if sigCtx.Err() != nil {
		a.logger.Info("interrupted, stream stopped early", "processed", stats.total, "line", reader.Line())
		return nil
	}
	if stats.decodeErrors > 0 {
		return cli.NewCommandError("run", fmt.Errorf("%d of %d lines could not be decoded",
			stats.decodeErrors, stats.total+stats.decodeErrors))
	}
	if runFlags.failOnReject && stats.rejected > 0 {
		return &cli.RejectedError{Rejected: stats.rejected, Total: stats.total}
	}
	return nil
}

// decideStream reads in a separate goroutine so a blocked read never
// delays shutdown. Rejected inputs are also written to rejects when it is
// not nil.
func decideStream(ctx context.Context, a *app, reader *codec.Reader, printer *decisionPrinter, rejects *codec.Writer, errOut io.Writer) (streamStats, error) {
	var stats streamStats

	results := make(chan streamResult)
	go func() {
		defer close(results)
		for {
			in, err := reader.Next()
			select {
			case results <- streamResult{in: in, err: err}:
			case <-ctx.Done():
				return
			}
			var de *codec.DecodeError
			if err != nil && !errors.As(err, &de) {
				return
			}
		}
	}()

	for {
		var r streamResult
		select {
		case <-ctx.Done():
			return stats, nil
		case next, ok := <-results:
			if !ok {
				return stats, nil
			}
			r = next
		}

		if errors.Is(r.err, io.EOF) {
			return stats, nil
		}
		var de *codec.DecodeError
		if errors.As(r.err, &de) {
			stats.decodeErrors++
			a.metrics.RecordDecodeError(de.Domain)
			a.logger.Warn("skipping undecodable input", "line", de.Line, "error", de.Cause)
			fmt.Fprintln(errOut, de.Error())
			continue
		}
		if r.err != nil {
			return stats, r.err
		}

		inCtx := logging.WithRequestID(ctx, uuid.NewString())
		if runFlags.actor != "" {
			inCtx = logging.WithActor(inCtx, runFlags.actor)
		}
		d, err := a.gatekeeper.Decide(inCtx, r.in)
		if err != nil {
			return stats, err
		}
		stats.total++
		if d.Rejected() {
			stats.rejected++
			if rejects != nil {
				if err := rejects.Write(r.in); err != nil {
					return stats, fmt.Errorf("write rejected input: %w", err)
				}
			}
		}
		if err := printer.Print(r.in, d); err != nil {
			return stats, err
		}
	}
}
