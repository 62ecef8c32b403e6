package export

import (
	"fmt"

	"github.com/yingtu35/doombot/internal/report"
)

type Exporter interface {
	// Export writes the report to filename plus the exporter's extension
	// and returns the path written.
	Export(rep *report.Report, filename string) (string, error)
}

// New returns the exporter for one of config.OutputFormats.
func New(format string) (Exporter, error) {
	switch format {
	case "markdown", "md":
		return NewMarkdownExporter(), nil
	case "json":
		return NewJsonExporter(), nil
	case "csv":
		return NewCSVExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
