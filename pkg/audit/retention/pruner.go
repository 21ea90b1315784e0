package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/config"
)

// Observer is notified of pruned record counts.
type Observer interface {
	RecordAuditPruned(n int64)
}

// Pruner enforces the retention policy on audit records.
type Pruner struct {
	storage   audit.Storage
	config    config.RetentionConfig
	observer  Observer
	now       func() time.Time
	logger    *slog.Logger
	scheduler *Scheduler
}

// Option customizes a Pruner.
type Option func(*Pruner)

// WithObserver reports pruned counts to o.
func WithObserver(o Observer) Option {
	return func(p *Pruner) { p.observer = o }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pruner) { p.now = now }
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, cfg *config.RetentionConfig, opts ...Option) *Pruner {
	if cfg == nil {
		cfg = &config.Default().Audit.Retention
	}

	p := &Pruner{
		storage: storage,
		config:  *cfg,
		now:     time.Now,
		logger:  slog.Default().With("component", "audit.retention"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scheduler = NewScheduler(p)

	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.observer != nil && totalDeleted > 0 {
		p.observer.RecordAuditPruned(totalDeleted)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("audit pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records decided before the retention cutoff.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.Days,
	)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.Days, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records while the total exceeds
// MaxRecords. Records sharing the cutoff timestamp are deleted together.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	var totalDeleted int64

	for {
		count, err := p.storage.Count(ctx, &audit.Query{})
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to count records: %w", err)
		}
		if count <= p.config.MaxRecords {
			return totalDeleted, nil
		}

		excess := count - p.config.MaxRecords
		if excess > audit.MaxLimit {
			excess = audit.MaxLimit
		}

		oldest, err := p.storage.Query(ctx, &audit.Query{
			Limit:     int(excess),
			SortBy:    audit.SortDecidedAt,
			SortOrder: "asc",
		})
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to query records: %w", err)
		}
		if len(oldest) == 0 {
			return totalDeleted, nil
		}

		cutoff := oldest[len(oldest)-1].DecidedAt
		p.logger.Debug("pruning by count",
			"current_count", count,
			"max_records", p.config.MaxRecords,
			"cutoff_time", cutoff,
		)

		deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
		if err != nil {
			return totalDeleted, fmt.Errorf("delete failed: %w", err)
		}
		totalDeleted += deleted
		if deleted == 0 {
			return totalDeleted, nil
		}
	}
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
