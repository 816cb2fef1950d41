// Package output renders repository status views and check reports in
// the supported display formats.
package output

import (
	"io"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/watch"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	FormatStatuses(statuses []service.RepoStatus, w io.Writer) error
	FormatReport(report watch.Report, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format. Unknown
// formats fall back to the table.
func NewFormatter(format Format, thresholds config.Thresholds) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{Thresholds: thresholds}
	default:
		return &TableFormatter{Thresholds: thresholds}
	}
}
