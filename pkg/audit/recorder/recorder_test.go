package recorder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/audit/storage"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains/dbquery"
	"mercator-hq/guard/pkg/guard"
)

type countingObserver struct {
	writes  atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

func (o *countingObserver) RecordAuditWrite(err error) {
	o.writes.Add(1)
	if err != nil {
		o.failed.Add(1)
	}
}

func (o *countingObserver) RecordAuditDropped() { o.dropped.Add(1) }

// blockingStorage blocks every Store until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	started chan struct{}
	once    sync.Once
	release chan struct{}
}

func newBlockingStorage() *blockingStorage {
	return &blockingStorage{
		MemoryStorage: storage.NewMemoryStorage(0),
		started:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (s *blockingStorage) Store(ctx context.Context, r *audit.Record) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.MemoryStorage.Store(ctx, r)
}

type failingStorage struct{ *storage.MemoryStorage }

func (failingStorage) Store(context.Context, *audit.Record) error {
	return errors.New("disk full")
}

func testEntry(requestID string) Entry {
	q := dbquery.NewQuery("users", dbquery.Drop, 1)
	return Entry{
		Decision: guard.Decision{
			Domain:  "dbquery",
			Shape:   dbquery.ShapeQuery,
			RuleID:  "dbquery.drop_outside_transaction",
			Outcome: guard.OutcomeError,
			Message: "❌ DROP operations require transaction",
		},
		Input:     codec.Input{Domain: "dbquery", Value: q},
		RequestID: requestID,
		Actor:     "alice",
		DecidedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Duration:  3 * time.Microsecond,
	}
}

func TestNewRecord(t *testing.T) {
	r, err := NewRecord(testEntry("req-1"))
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	if r.ID == "" || r.ID == "req-1" {
		t.Errorf("expected a generated ID, got %q", r.ID)
	}
	if r.Domain != "dbquery" || r.Shape != "query" || r.RuleID != "dbquery.drop_outside_transaction" {
		t.Errorf("decision fields not copied: %+v", r)
	}
	if r.Outcome != "error" || r.Actor != "alice" || r.Duration != 3*time.Microsecond {
		t.Errorf("unexpected record: %+v", r)
	}
	if !strings.Contains(r.Input, `"operation":"DROP"`) {
		t.Errorf("input not encoded: %s", r.Input)
	}
	if r.InputHash != HashContent([]byte(r.Input)) {
		t.Error("input hash does not match input")
	}

	in, err := codec.Decode([]byte(r.Input))
	if err != nil {
		t.Fatalf("stored input does not decode: %v", err)
	}
	if in.Value != testEntry("").Input.Value {
		t.Errorf("decoded input = %#v", in.Value)
	}
}

func TestNewRecord_NilInput(t *testing.T) {
	e := testEntry("req-1")
	e.Input.Value = nil
	if _, err := NewRecord(e); err == nil {
		t.Error("expected error for nil input")
	}
}

func TestRecorder_WritesRecords(t *testing.T) {
	store := storage.NewMemoryStorage(0)
	obs := &countingObserver{}
	rec := NewRecorder(store, &config.RecorderConfig{AsyncBuffer: 10, WriteTimeout: time.Second}, WithObserver(obs))

	for _, id := range []string{"a", "b", "c"} {
		if err := rec.Record(context.Background(), testEntry(id)); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}
	rec.Close()

	if store.Size() != 3 {
		t.Errorf("stored %d records, want 3", store.Size())
	}
	if obs.writes.Load() != 3 || obs.failed.Load() != 0 {
		t.Errorf("observer writes=%d failed=%d", obs.writes.Load(), obs.failed.Load())
	}

	records, _ := store.Query(context.Background(), &audit.Query{RequestID: "b"})
	if len(records) != 1 || records[0].RecordedAt.IsZero() {
		t.Errorf("record b = %+v", records)
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := newBlockingStorage()
	obs := &countingObserver{}
	rec := NewRecorder(store, &config.RecorderConfig{AsyncBuffer: 1, WriteTimeout: 50 * time.Millisecond}, WithObserver(obs))

	if err := rec.Record(context.Background(), testEntry("1")); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	<-store.started

	if err := rec.Record(context.Background(), testEntry("2")); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	err := rec.Record(context.Background(), testEntry("3"))
	var re *audit.RecorderError
	if !errors.As(err, &re) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("third Record() error = %v, want deadline exceeded", err)
	}
	if obs.dropped.Load() != 1 {
		t.Errorf("dropped = %d, want 1", obs.dropped.Load())
	}

	close(store.release)
	rec.Close()

	if store.Size() != 2 {
		t.Errorf("stored %d records, want 2", store.Size())
	}
}

func TestRecorder_StorageFailure(t *testing.T) {
	obs := &countingObserver{}
	rec := NewRecorder(failingStorage{storage.NewMemoryStorage(0)}, nil, WithObserver(obs))

	if err := rec.Record(context.Background(), testEntry("x")); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rec.Close()

	if obs.failed.Load() != 1 {
		t.Errorf("failed writes = %d, want 1", obs.failed.Load())
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	rec := NewRecorder(storage.NewMemoryStorage(0), nil)
	rec.Close()
	rec.Close()

	err := rec.Record(context.Background(), testEntry("late"))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Record() after Close error = %v, want ErrClosed", err)
	}
}

func TestHashContent(t *testing.T) {
	if HashContent(nil) != "" {
		t.Error("empty content should hash to empty string")
	}
	got := HashContent([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashContent(abc) = %s, want %s", got, want)
	}

	big := make([]byte, MaxHashSize+10)
	if HashContent(big) != HashContent(big[:MaxHashSize]) {
		t.Error("content beyond MaxHashSize should not affect the hash")
	}
}
