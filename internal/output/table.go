package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/format"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/watch"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	Thresholds config.Thresholds
}

// Column widths
const (
	colRepo    = 28
	colRecords = 7
	colIssues  = 12
	colPRs     = 10
	colStale   = 9
	colActive  = 12
)

// FormatStatuses outputs one row per repository with its current
// metrics. Breached checks are colored by severity.
func (f *TableFormatter) FormatStatuses(statuses []service.RepoStatus, w io.Writer) error {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No repositories configured.")
		return nil
	}

	now := time.Now()

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s\n",
		format.Pad("Repository", colRepo),
		format.Pad("Records", colRecords),
		format.Pad("Open Issues", colIssues),
		format.Pad("Open PRs", colPRs),
		format.Pad("Stale", colStale),
		format.Pad("Last Active", colActive),
		"Fetched")
	fmt.Fprintln(w, strings.Repeat("-", colRepo+colRecords+colIssues+colPRs+colStale+colActive+19))

	for _, status := range statuses {
		repo := format.Pad(format.Truncate(status.Repo, colRepo), colRepo)
		if !status.HasSnapshot {
			fmt.Fprintf(w, "%s  no data (run: repowatch fetch %s)\n", repo, status.Repo)
			continue
		}

		issues := fmt.Sprintf("%d/%d", status.Metrics.OpenIssues, f.Thresholds.OpenIssues)
		prs := fmt.Sprintf("%d/%d", status.Metrics.OpenPRs, f.Thresholds.OpenPRs)
		stale := fmt.Sprintf("%d", len(status.Metrics.StalePRs))
		active := format.AgeAt(status.Metrics.LastActivity, now)

		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s\n",
			repo,
			format.Pad(fmt.Sprintf("%d", status.RecordCount), colRecords),
			alertCell(issues, colIssues, status.Alerts, model.CategoryTooManyOpenIssues),
			alertCell(prs, colPRs, status.Alerts, model.CategoryTooManyOpenPRs),
			alertCell(stale, colStale, status.Alerts, model.CategoryStalePRs),
			alertCell(active, colActive, status.Alerts, model.CategoryNoRecentActivity),
			format.Age(now.Sub(status.FetchedAt)),
		)
	}

	printAlertFooter(statuses, w)
	return nil
}

// FormatReport outputs a check report with one line per alert.
func (f *TableFormatter) FormatReport(report watch.Report, w io.Writer) error {
	if len(report.Alerts) == 0 {
		fmt.Fprintf(w, "%s: all checks passed\n", report.Repo)
		return nil
	}

	fmt.Fprintf(w, "%s: %d alerts, %d delivered\n", report.Repo, report.Attempted, report.Delivered)
	for _, alert := range report.Alerts {
		severity := colorSeverity(alert.Severity, format.Pad(strings.ToUpper(string(alert.Severity)), 8))
		fmt.Fprintf(w, "  %s  %s: %d%s\n", severity, alert.Category.Display(), alert.MetricValue, detailSuffix(alert))
	}
	return nil
}

// alertCell pads the cell, then colors it when the alerts contain a
// breach of the given category. Coloring after padding keeps the
// escape codes out of the width math.
func alertCell(cell string, width int, alerts []model.Alert, category model.Category) string {
	padded := format.Pad(cell, width)
	for _, alert := range alerts {
		if alert.Category == category {
			return colorSeverity(alert.Severity, padded)
		}
	}
	return padded
}

func colorSeverity(severity model.Severity, text string) string {
	switch severity {
	case model.SeverityCritical:
		return color.RedString("%s", text)
	case model.SeverityWarning:
		return color.YellowString("%s", text)
	default:
		return color.CyanString("%s", text)
	}
}

// detailSuffix renders an alert's supporting evidence inline.
func detailSuffix(alert model.Alert) string {
	switch alert.Category {
	case model.CategoryStalePRs:
		parts := make([]string, 0, len(alert.Details))
		for _, d := range alert.Details {
			parts = append(parts, fmt.Sprintf("#%d %dd", d.Number, d.AgeDays))
		}
		if len(parts) == 0 {
			return ""
		}
		return " (" + strings.Join(parts, ", ") + ")"
	case model.CategoryNoRecentActivity:
		if len(alert.Details) > 0 && alert.Details[0].LastAt != nil {
			return fmt.Sprintf(" (last activity %s)", alert.Details[0].LastAt.UTC().Format(time.RFC3339))
		}
	}
	return ""
}

// printAlertFooter prints a one-line summary when anything is alerting.
func printAlertFooter(statuses []service.RepoStatus, w io.Writer) {
	var alerting, total int
	for _, status := range statuses {
		if len(status.Alerts) > 0 {
			alerting++
			total += len(status.Alerts)
		}
	}
	if total == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %d alerts across %d repositories\n", color.RedString("●"), total, alerting)
}
