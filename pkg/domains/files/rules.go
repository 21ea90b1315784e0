package files

import (
	"fmt"
	"strings"

	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/guard"
)

// Limits holds the thresholds of the file table.
type Limits struct {
	// MaxReadBytes is the largest readable file. Default: 100,000,000.
	MaxReadBytes int64

	// MaxWriteBytes is the largest writable file. Default: 500,000,000.
	MaxWriteBytes int64

	// TempSuffix marks files that may not be read. Default: ".tmp".
	TempSuffix string

	// SystemPrefix marks files that may not be deleted. Default: "system_".
	SystemPrefix string
}

// DefaultLimits returns the default thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxReadBytes:  100_000_000,
		MaxWriteBytes: 500_000_000,
		TempSuffix:    ".tmp",
		SystemPrefix:  "system_",
	}
}

// NewTable builds the file operation table. Size limits are checked before
// any content or name inspection.
func NewTable(limits Limits) (*guard.Table[Operation], error) {
	if limits.MaxReadBytes < 0 || limits.MaxWriteBytes < 0 {
		return nil, fmt.Errorf("files: size limits must not be negative")
	}
	return guard.NewTable(domains.Files, Shapes(), rules(limits)...)
}

func rules(l Limits) []guard.Rule[Operation] {
	return []guard.Rule[Operation]{
		guard.Case[Operation]("files.read.too_large",
			func(r Read) bool { return r.Size > l.MaxReadBytes },
			guard.OutcomeError,
			func(r Read) string { return fmt.Sprintf("❌ File too large to read (%d bytes)", r.Size) }),
		guard.Case[Operation]("files.read.temporary",
			func(r Read) bool { return l.TempSuffix != "" && strings.HasSuffix(r.Filename, l.TempSuffix) },
			guard.OutcomeError,
			guard.Message[Read]("❌ Cannot read temporary files")),
		guard.Case[Operation]("files.read.allow", nil,
			guard.OutcomeSuccess,
			func(r Read) string { return fmt.Sprintf("✅ Reading file: %s (%d bytes)", r.Filename, r.Size) }),

		guard.Case[Operation]("files.write.too_large",
			func(w Write) bool { return w.Size > l.MaxWriteBytes },
			guard.OutcomeError,
			func(w Write) string { return fmt.Sprintf("❌ File too large to write (%d bytes)", w.Size) }),
		guard.Case[Operation]("files.write.empty",
			func(w Write) bool { return strings.TrimSpace(w.Content) == "" },
			guard.OutcomeError,
			guard.Message[Write]("❌ Cannot write empty content")),
		guard.Case[Operation]("files.write.path_traversal",
			func(w Write) bool { return strings.Contains(w.Filename, "..") },
			guard.OutcomeError,
			guard.Message[Write]("❌ Invalid filename - contains path traversal")),
		guard.Case[Operation]("files.write.allow", nil,
			guard.OutcomeSuccess,
			func(w Write) string { return fmt.Sprintf("✅ Writing file: %s (%d bytes)", w.Filename, w.Size) }),

		guard.Case[Operation]("files.delete.system",
			func(d Delete) bool { return l.SystemPrefix != "" && strings.HasPrefix(d.Filename, l.SystemPrefix) },
			guard.OutcomeError,
			guard.Message[Delete]("❌ Cannot delete system files")),
		guard.Case[Operation]("files.delete.empty",
			func(d Delete) bool { return d.Size == 0 },
			guard.OutcomeError,
			guard.Message[Delete]("❌ Cannot delete empty files")),
		guard.Case[Operation]("files.delete.allow", nil,
			guard.OutcomeSuccess,
			func(d Delete) string { return "✅ Deleting file: " + d.Filename }),
	}
}

// Samples returns the demonstration operations in presentation order.
func Samples() []Operation {
	return []Operation{
		Read{Filename: "document.pdf", Size: 50_000},
		Read{Filename: "huge_file.zip", Size: 150_000_000},
		Read{Filename: "temp_file.tmp", Size: 1_000},
		Write{Filename: "output.txt", Size: 1_000, Content: "Hello World"},
		Write{Filename: "large_file.dat", Size: 600_000_000, Content: "Data"},
		Write{Filename: "../../../etc/passwd", Size: 100, Content: "malicious"},
		Delete{Filename: "system_config.ini", Size: 5_000},
		Delete{Filename: "user_data.json", Size: 10_000},
	}
}
