// Package export writes audit records as JSON or CSV.
package export

import (
	"fmt"

	"mercator-hq/guard/pkg/audit"
)

// Formats lists the supported export formats.
func Formats() []string {
	return []string{"json", "csv"}
}

// New returns the exporter for format. pretty applies to JSON only.
func New(format string, pretty bool) (audit.Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(pretty), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, audit.NewExportError(format, 0, fmt.Errorf("unsupported format %q", format))
	}
}
