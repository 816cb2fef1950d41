package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/watch"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// FormatStatuses outputs status views as JSON
func (f *JSONFormatter) FormatStatuses(statuses []service.RepoStatus, w io.Writer) error {
	return f.encode(statuses, w)
}

// FormatReport outputs a check report as JSON
func (f *JSONFormatter) FormatReport(report watch.Report, w io.Writer) error {
	return f.encode(report, w)
}

func (f *JSONFormatter) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
