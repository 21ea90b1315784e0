// Package logging provides structured logging with PII redaction.
//
// The package wraps log/slog to provide JSON, text and console formats,
// redaction of secrets and file contents, and context-aware logging that
// carries the request ID and acting user of a decision.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", RedactPII: true})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "Decision made", "domain", "files")
package logging
