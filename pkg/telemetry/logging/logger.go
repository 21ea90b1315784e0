package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatText    LogFormat = "text"
	FormatConsole LogFormat = "console"
)

// Config contains configuration for the Logger.
type Config struct {
	Level     string // debug, info, warn or error
	Format    string // json, text or console
	AddSource bool
	RedactPII bool
	Writer    io.Writer // defaults to os.Stderr; stdout carries decisions
}

// Logger is a slog.Logger whose *Context methods also attach the request
// ID, actor and trace ID stored on the context.
type Logger struct {
	*slog.Logger
	level slog.Level
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	var replacers []func([]string, slog.Attr) slog.Attr
	if format == FormatConsole {
		replacers = append(replacers, dropTime)
	}
	if cfg.RedactPII {
		replacers = append(replacers, NewRedactor().ReplaceAttr)
	}
	if len(replacers) > 0 {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			for _, r := range replacers {
				if a = r(groups, a); a.Equal(slog.Attr{}) {
					return a
				}
			}
			return a
		}
	}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(contextHandler{h}), level: level}, nil
}

// Slog returns the underlying slog.Logger, suitable for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.Logger
}

// Level returns the minimum level.
func (l *Logger) Level() slog.Level {
	return l.level
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// contextHandler adds the context's Fields to each record.
type contextHandler struct{ slog.Handler }

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Add(FieldsFrom(ctx).Args()...)
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// ParseLevel maps a level name to slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
}

// ParseFormat maps a format name to LogFormat. Empty means text.
func ParseFormat(s string) (LogFormat, error) {
	switch f := LogFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatText, FormatConsole:
		return f, nil
	case "":
		return FormatText, nil
	}
	return FormatText, fmt.Errorf("unknown log format: %s", s)
}
