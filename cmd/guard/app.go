package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/audit/recorder"
	"mercator-hq/guard/pkg/audit/retention"
	"mercator-hq/guard/pkg/audit/storage"
	"mercator-hq/guard/pkg/catalog"
	"mercator-hq/guard/pkg/cli"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/gatekeeper"
	"mercator-hq/guard/pkg/telemetry/health"
	"mercator-hq/guard/pkg/telemetry/metrics"
	"mercator-hq/guard/pkg/telemetry/tracing"
)

// app wires the gatekeeper to its collaborators for one command run.
type app struct {
	logger     *slog.Logger
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
	storage    audit.Storage
	recorder   *recorder.Recorder
	pruner     *retention.Pruner
	gatekeeper *gatekeeper.Gatekeeper
}

type appOptions struct {
	// retention starts the scheduled pruner; only long-running commands
	// want it.
	retention bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{
		logger:  slog.Default().With("component", "guard"),
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}
	fail := func(err error) (*app, error) {
		a.Close(ctx)
		return nil, err
	}

	var err error
	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing,
		tracing.WithServiceVersion(Version),
		tracing.AsGlobal(),
	)
	if err != nil {
		return fail(cli.NewConfigError("telemetry.tracing", err.Error()))
	}

	c, err := catalog.Build(cfg)
	if err != nil {
		return fail(cli.NewConfigError("rules", err.Error()))
	}

	gkOpts := []gatekeeper.Option{
		gatekeeper.WithTracer(a.tracer),
		gatekeeper.WithMetrics(a.metrics),
		gatekeeper.WithLogger(slog.Default().With("component", "gatekeeper")),
	}

	if cfg.Audit.Enabled {
		a.storage, err = storage.New(&cfg.Audit)
		if err != nil {
			return fail(fmt.Errorf("failed to open audit storage: %w", err))
		}
		a.recorder = recorder.NewRecorder(a.storage, &cfg.Audit.Recorder,
			recorder.WithObserver(a.metrics),
		)
		gkOpts = append(gkOpts, gatekeeper.WithSink(a.recorder))

		if opts.retention && (cfg.Audit.Retention.Days > 0 || cfg.Audit.Retention.MaxRecords > 0) {
			a.pruner = retention.NewPruner(a.storage, &cfg.Audit.Retention,
				retention.WithObserver(a.metrics),
			)
			if err := a.pruner.Start(ctx); err != nil {
				a.logger.Warn("failed to start retention scheduler", "error", err)
				a.pruner = nil
			} else if next := a.pruner.NextPruning(); next != nil {
				a.logger.Debug("audit retention scheduler started", "next_pruning", next)
			}
		}
	}

	a.gatekeeper = gatekeeper.New(c, gkOpts...)
	return a, nil
}

// Close flushes the audit trail and releases every resource. The recorder
// is closed before its storage so queued records are written.
func (a *app) Close(ctx context.Context) error {
	var errs []error

	if a.pruner != nil {
		a.pruner.Stop()
	}
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close recorder: %w", err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audit storage: %w", err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}

	return errors.Join(errs...)
}

// healthChecker registers readiness checks for the loaded catalog and, when
// auditing, the audit storage.
func (a *app) healthChecker() *health.Checker {
	checker := health.New(2 * time.Second)
	checker.RegisterCheck("config", health.ConfigCheck(config.Current))
	checker.RegisterCheck("catalog", health.CatalogCheck(a.gatekeeper.Catalog))
	if a.storage != nil {
		checker.RegisterCheck("audit_storage", health.StorageCheck(a.storage))
	}
	return checker
}

// openStorage opens the configured audit backend for the audit commands.
func openStorage(cfg *config.Config) (audit.Storage, error) {
	store, err := storage.New(&cfg.Audit)
	if err != nil {
		return nil, cli.NewCommandError("audit", fmt.Errorf("failed to open storage: %w", err))
	}
	return store, nil
}
