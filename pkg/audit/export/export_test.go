package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mercator-hq/guard/pkg/audit"
)

func testRecords() []*audit.Record {
	decided := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	return []*audit.Record{
		{
			ID: "r1", RequestID: "q1", DecidedAt: decided, RecordedAt: decided.Add(time.Millisecond),
			Domain: "orders", Shape: "order", RuleID: "orders.manual_review", Outcome: "warning",
			Message: "⚠️ Large order requires manual review", Input: `{"domain":"orders"}`,
			InputHash: "abc", Actor: "alice", Duration: 12 * time.Microsecond,
		},
		{
			ID: "r2", RequestID: "q2", DecidedAt: decided.Add(time.Second),
			Domain: "files", Shape: "write", RuleID: "files.write.path_traversal", Outcome: "error",
			Message: "❌ Invalid filename, contains, commas", Input: `{"domain":"files"}`,
		},
	}
}

func TestJSONExporter_Export(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		if err := NewJSONExporter(pretty).Export(context.Background(), testRecords(), &buf); err != nil {
			t.Fatalf("Export(pretty=%v) error = %v", pretty, err)
		}

		var got []audit.Record
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
		}
		if len(got) != 2 || got[0].RuleID != "orders.manual_review" || got[1].ID != "r2" {
			t.Errorf("unexpected export: %+v", got)
		}
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), nil, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]" {
		t.Errorf("Export(nil) = %q, want []", buf.String())
	}

	buf.Reset()
	ch := make(chan *audit.Record)
	close(ch)
	if err := NewJSONExporter(false).ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]" {
		t.Errorf("ExportStream(empty) = %q, want []", buf.String())
	}
}

func TestJSONExporter_ExportStreamMatchesExport(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		ch := make(chan *audit.Record, 2)
		for _, r := range testRecords() {
			ch <- r
		}
		close(ch)

		var buf bytes.Buffer
		if err := NewJSONExporter(pretty).ExportStream(context.Background(), ch, &buf); err != nil {
			t.Fatalf("ExportStream() error = %v", err)
		}

		var got []audit.Record
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("stream output is not a JSON array: %v\n%s", err, buf.String())
		}
		if len(got) != 2 {
			t.Errorf("streamed %d records, want 2", len(got))
		}
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), testRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != len(Header()) {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[2] != "2026-04-02T08:30:00Z" {
		t.Errorf("decided_at = %q", first[2])
	}
	if first[12] != "12" {
		t.Errorf("duration_us = %q, want 12", first[12])
	}
	if rows[2][8] != "❌ Invalid filename, contains, commas" {
		t.Errorf("message with commas = %q", rows[2][8])
	}
	if rows[2][3] != "" {
		t.Errorf("zero recorded_at should be empty, got %q", rows[2][3])
	}
}

func TestCSVExporter_Stream(t *testing.T) {
	ch := make(chan *audit.Record, 2)
	for _, r := range testRecords() {
		ch <- r
	}
	close(ch)

	var buf bytes.Buffer
	if err := NewCSVExporter(false).ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "r1" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestExportStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan *audit.Record)
	var buf bytes.Buffer
	if err := NewCSVExporter(true).ExportStream(ctx, ch, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("CSV ExportStream() error = %v, want context.Canceled", err)
	}
	if err := NewJSONExporter(false).ExportStream(ctx, ch, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("JSON ExportStream() error = %v, want context.Canceled", err)
	}
}

func TestNew(t *testing.T) {
	for _, format := range Formats() {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) error = %v", format, err)
		}
	}
	_, err := New("xml", false)
	var ee *audit.ExportError
	if !errors.As(err, &ee) {
		t.Errorf("New(xml) error = %v, want *audit.ExportError", err)
	}
}
