// Package export writes fetched records to local artifact files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spiffcs/repowatch/internal/model"
)

// csvHeader is the fixed column layout. Kind is exported under the
// "type" column.
var csvHeader = []string{
	"repo", "external_id", "number", "type", "state", "title",
	"author", "assignee", "created_at", "closed_at", "merged_at", "labels",
}

// WriteCSV writes records to w, one row per record, in input order.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Repo,
			strconv.FormatInt(r.ExternalID, 10),
			strconv.Itoa(r.Number),
			string(r.Kind),
			string(r.State),
			r.Title,
			r.Author,
			r.Assignee,
			formatTimestamp(r.CreatedAt),
			formatTimestamp(r.ClosedAt),
			formatTimestamp(r.MergedAt),
			strings.Join(r.Labels, ","),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record #%d: %w", r.Number, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to the file at path, replacing any
// existing content.
func WriteCSVFile(path string, records []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// formatTimestamp renders an optional timestamp as RFC3339 UTC, empty
// when missing.
func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
