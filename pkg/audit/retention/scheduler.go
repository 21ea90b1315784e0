package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Pruner on the policy's cron expression. Overlapping
// runs are skipped rather than queued.
type Scheduler struct {
	pruner *Pruner
	logger *slog.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
}

// NewScheduler returns an idle scheduler for p.
func NewScheduler(p *Pruner) *Scheduler {
	return &Scheduler{
		pruner: p,
		logger: slog.Default().With("component", "audit.scheduler"),
	}
}

// Start registers the prune job, for example "0 3 * * *" or "@daily", and
// stops it again once ctx is done. An empty schedule leaves the scheduler
// idle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec := s.pruner.config.Schedule
	if spec == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.cron != nil {
		return fmt.Errorf("retention scheduler already running")
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})))
	s.entry = c.Schedule(schedule, cron.FuncJob(func() { s.run(ctx) }))
	c.Start()
	s.cron = c

	s.logger.Info("retention scheduler started",
		"schedule", spec,
		"retention_days", s.pruner.config.Days,
		"max_records", s.pruner.config.MaxRecords,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	started := time.Now()
	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}
	s.logger.Debug("scheduled pruning completed",
		"deleted", deleted,
		"duration", time.Since(started),
	)
}

// Stop removes the job and waits for a run in progress. It is safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info("retention scheduler stopped")
}

// IsRunning reports whether a prune job is registered.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// NextRun returns when the job fires next, or nil when none is registered.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	next := s.cron.Entry(s.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Debug(msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, append(kv, "error", err)...)
}
