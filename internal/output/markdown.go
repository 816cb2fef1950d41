package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/format"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/watch"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	Thresholds config.Thresholds
}

// FormatStatuses outputs status views as a Markdown table
func (f *MarkdownFormatter) FormatStatuses(statuses []service.RepoStatus, w io.Writer) error {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No repositories configured.")
		return nil
	}

	now := time.Now()

	fmt.Fprintln(w, "# Repository Status")
	fmt.Fprintf(w, "\n*Generated: %s*\n\n", now.Format("2006-01-02 15:04"))

	fmt.Fprintln(w, "| Repository | Records | Open Issues | Open PRs | Stale PRs | Last Activity | Alerts |")
	fmt.Fprintln(w, "|------------|---------|-------------|----------|-----------|---------------|--------|")

	for _, status := range statuses {
		if !status.HasSnapshot {
			fmt.Fprintf(w, "| %s | - | - | - | - | - | no data |\n", status.Repo)
			continue
		}

		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %d |\n",
			status.Repo,
			status.RecordCount,
			markCell(fmt.Sprintf("%d/%d", status.Metrics.OpenIssues, f.Thresholds.OpenIssues), status.Alerts, model.CategoryTooManyOpenIssues),
			markCell(fmt.Sprintf("%d/%d", status.Metrics.OpenPRs, f.Thresholds.OpenPRs), status.Alerts, model.CategoryTooManyOpenPRs),
			markCell(fmt.Sprintf("%d", len(status.Metrics.StalePRs)), status.Alerts, model.CategoryStalePRs),
			markCell(format.AgeAt(status.Metrics.LastActivity, now), status.Alerts, model.CategoryNoRecentActivity),
			len(status.Alerts),
		)
	}

	return nil
}

// FormatReport outputs a check report as Markdown
func (f *MarkdownFormatter) FormatReport(report watch.Report, w io.Writer) error {
	fmt.Fprintf(w, "## %s\n\n", report.Repo)

	if len(report.Alerts) == 0 {
		fmt.Fprintln(w, "All checks passed.")
		return nil
	}

	for _, alert := range report.Alerts {
		fmt.Fprintf(w, "- %s **%s:** %d%s\n",
			severityEmoji(alert.Severity), alert.Category.Display(), alert.MetricValue, detailSuffix(alert))
	}
	fmt.Fprintf(w, "\n*%d alerts attempted, %d delivered*\n", report.Attempted, report.Delivered)
	return nil
}

// markCell appends the severity emoji when the category is alerting.
func markCell(cell string, alerts []model.Alert, category model.Category) string {
	for _, alert := range alerts {
		if alert.Category == category {
			return cell + " " + severityEmoji(alert.Severity)
		}
	}
	return cell
}

func severityEmoji(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	case model.SeverityInfo:
		return "ℹ️"
	default:
		return "📋"
	}
}
