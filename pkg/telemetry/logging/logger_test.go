package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "json debug", cfg: Config{Level: "debug", Format: "json"}},
		{name: "console", cfg: Config{Level: "WARN", Format: "console"}},
		{name: "invalid level", cfg: Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Writer = &bytes.Buffer{}
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn were logged: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warn and error messages: %s", out)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithActor(WithRequestID(context.Background(), "req-1"), "user123")
	logger.InfoContext(ctx, "decided", "domain", "access")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if entry["request_id"] != "req-1" || entry["actor"] != "user123" || entry["domain"] != "access" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestFieldsFrom(t *testing.T) {
	ctx := WithTraceID(WithRequestID(context.Background(), "req-9"), "abc")
	ctx = WithRequestID(ctx, "req-10")

	got := FieldsFrom(ctx)
	if got != (Fields{RequestID: "req-10", TraceID: "abc"}) {
		t.Errorf("FieldsFrom() = %+v", got)
	}
	if args := FieldsFrom(context.Background()).Args(); len(args) != 0 {
		t.Errorf("expected no args for empty context, got %v", args)
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().Info("write requested",
		"content", "top secret payload",
		"owner", "alice@example.com",
		"filename", "output.txt",
	)

	out := buf.String()
	if strings.Contains(out, "top secret payload") {
		t.Errorf("content was not masked: %s", out)
	}
	if strings.Contains(out, "alice@example.com") {
		t.Errorf("email was not redacted: %s", out)
	}
	if !strings.Contains(out, "output.txt") {
		t.Errorf("filename should be kept: %s", out)
	}
}

func TestLogger_ConsoleOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hello")
	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console output contains time: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	FromContext(WithRequestID(context.Background(), "req-9"), base).Info("x")
	if !strings.Contains(buf.String(), `"request_id":"req-9"`) {
		t.Errorf("request_id missing: %s", buf.String())
	}

	if got := FromContext(context.Background(), base); got != base {
		t.Error("FromContext without fields should return base")
	}
}
