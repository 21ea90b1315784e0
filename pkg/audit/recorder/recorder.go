package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/guard"
)

// ErrClosed is returned when recording after Close.
var ErrClosed = errors.New("recorder is closed")

// Entry is a decision handed to the recorder.
type Entry struct {
	Decision  guard.Decision
	Input     codec.Input
	RequestID string
	Actor     string
	DecidedAt time.Time
	Duration  time.Duration
}

// Observer is notified about the fate of each record. The metrics collector
// implements it.
type Observer interface {
	RecordAuditWrite(err error)
	RecordAuditDropped()
}

type nopObserver struct{}

func (nopObserver) RecordAuditWrite(error) {}
func (nopObserver) RecordAuditDropped()    {}

// Recorder writes audit records asynchronously so that decisions never wait
// on storage.
type Recorder struct {
	storage    audit.Storage
	config     config.RecorderConfig
	observer   Observer
	recordChan chan *audit.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithObserver reports writes and drops to o.
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRecorder creates a recorder writing to storage and starts its worker.
func NewRecorder(storage audit.Storage, cfg *config.RecorderConfig, opts ...Option) *Recorder {
	c := config.RecorderConfig{
		AsyncBuffer:  config.DefaultAuditRecorderAsyncBuffer,
		WriteTimeout: config.DefaultAuditRecorderWriteTimeout,
	}
	if cfg != nil {
		if cfg.AsyncBuffer > 0 {
			c.AsyncBuffer = cfg.AsyncBuffer
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
	}

	r := &Recorder{
		storage:    storage,
		config:     c,
		observer:   nopObserver{},
		recordChan: make(chan *audit.Record, c.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", c.AsyncBuffer,
		"write_timeout", c.WriteTimeout,
	)

	return r
}

// Record builds an audit record for e and enqueues it for writing. It
// returns immediately unless the queue is full, in which case it waits up to
// the write timeout before dropping the record.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	record, err := NewRecord(e)
	if err != nil {
		return audit.NewRecorderError("", err)
	}

	select {
	case <-r.done:
		return audit.NewRecorderError(record.ID, ErrClosed)
	default:
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.recordChan <- record:
		r.logger.Debug("audit record enqueued",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return nil
	case <-timer.C:
		r.observer.RecordAuditDropped()
		r.logger.Error("audit channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return audit.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-ctx.Done():
		r.observer.RecordAuditDropped()
		return audit.NewRecorderError(record.ID, ctx.Err())
	case <-r.done:
		r.observer.RecordAuditDropped()
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return audit.NewRecorderError(record.ID, ErrClosed)
	}
}

// Close drains the queue, waits for pending writes and stops the worker.
// It does not close the storage.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down audit recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("audit recorder shut down complete")
	})
	return nil
}

// NewRecord converts an entry into an audit record with a fresh ID.
func NewRecord(e Entry) (*audit.Record, error) {
	input, err := codec.Encode(e.Input)
	if err != nil {
		return nil, err
	}

	decidedAt := e.DecidedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now()
	}

	return &audit.Record{
		ID:        uuid.New().String(),
		RequestID: e.RequestID,
		DecidedAt: decidedAt.UTC(),
		Domain:    e.Decision.Domain,
		Shape:     string(e.Decision.Shape),
		RuleID:    e.Decision.RuleID,
		Outcome:   string(e.Decision.Outcome),
		Message:   e.Decision.Message,
		Input:     string(input),
		InputHash: HashContent(input),
		Actor:     e.Actor,
		Duration:  e.Duration,
	}, nil
}

// worker drains the record channel until Close, then writes what is left.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single audit record to storage.
func (r *Recorder) writeRecord(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	record.RecordedAt = start.UTC()

	err := r.storage.Store(ctx, record)
	r.observer.RecordAuditWrite(err)
	if err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"rule_id", record.RuleID,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
