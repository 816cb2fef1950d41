package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/format"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/service"
)

// Column widths for the dashboard table
const (
	dashColRepo    = 28
	dashColRecords = 7
	dashColIssues  = 12
	dashColPRs     = 10
	dashColStale   = 9
	dashColActive  = 12
)

// renderDashboard renders the complete watch view.
func renderDashboard(m Dashboard) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(renderDashTitle(m))
	b.WriteString("\n\n")

	if len(m.statuses) == 0 {
		if m.refreshing {
			b.WriteString(dashEmptyStyle.Render("  Loading repository status..."))
		} else {
			b.WriteString(dashEmptyStyle.Render("  No repositories configured."))
		}
		b.WriteString("\n")
	} else {
		now := time.Now()
		b.WriteString(renderDashHeader())
		b.WriteString("\n")
		b.WriteString(dashSeparatorStyle.Render("  " + strings.Repeat("─", dashTableWidth())))
		b.WriteString("\n")
		for _, st := range m.statuses {
			b.WriteString(renderDashRow(st, m.thresholds, now))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("  refresh failed: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(dashHelpStyle.Render("\n  r: refresh now   q: quit"))
	b.WriteString("\n")

	return b.String()
}

// renderDashTitle renders the top line: name, refresh state, interval.
func renderDashTitle(m Dashboard) string {
	title := dashTitleStyle.Render("repowatch")

	var state string
	switch {
	case m.refreshing:
		state = spinnerStyle.Render(m.spinner.View()) + dashDimStyle.Render("refreshing")
	default:
		age := format.Age(time.Since(m.refreshedAt))
		if age == "now" {
			state = dashDimStyle.Render("refreshed just now")
		} else {
			state = dashDimStyle.Render(fmt.Sprintf("refreshed %s ago", age))
		}
	}

	every := dashDimStyle.Render(fmt.Sprintf("every %s", format.Age(m.interval)))
	return fmt.Sprintf("  %s   %s   %s", title, state, every)
}

// renderDashHeader renders the table header.
func renderDashHeader() string {
	return dashHeaderStyle.Render(fmt.Sprintf(
		"  %-*s  %-*s  %-*s  %-*s  %-*s  %-*s  %s",
		dashColRepo, "Repository",
		dashColRecords, "Records",
		dashColIssues, "Open Issues",
		dashColPRs, "Open PRs",
		dashColStale, "Stale PRs",
		dashColActive, "Last Active",
		"Fetched",
	))
}

// dashTableWidth is the width of the table through the last column header.
func dashTableWidth() int {
	return dashColRepo + 2 + dashColRecords + 2 + dashColIssues + 2 + dashColPRs + 2 + dashColStale + 2 + dashColActive + 2 + len("Fetched")
}

// renderDashRow renders one repository row. Cells whose category is
// alerting are colored by severity.
func renderDashRow(st service.RepoStatus, t config.Thresholds, now time.Time) string {
	repo := format.Pad(format.Truncate(st.Repo, dashColRepo), dashColRepo)

	if !st.HasSnapshot {
		hint := fmt.Sprintf("no data (run: repowatch fetch %s)", st.Repo)
		return fmt.Sprintf("  %s  %s", repo, dashDimStyle.Render(hint))
	}

	records := format.Pad(strconv.Itoa(st.RecordCount), dashColRecords)
	issues := dashAlertCell(fmt.Sprintf("%d/%d", st.Metrics.OpenIssues, t.OpenIssues), dashColIssues, st.Alerts, model.CategoryTooManyOpenIssues)
	prs := dashAlertCell(fmt.Sprintf("%d/%d", st.Metrics.OpenPRs, t.OpenPRs), dashColPRs, st.Alerts, model.CategoryTooManyOpenPRs)
	stale := dashAlertCell(strconv.Itoa(len(st.Metrics.StalePRs)), dashColStale, st.Alerts, model.CategoryStalePRs)
	active := dashAlertCell(format.AgeAt(st.Metrics.LastActivity, now), dashColActive, st.Alerts, model.CategoryNoRecentActivity)
	fetched := dashDimStyle.Render(format.Age(now.Sub(st.FetchedAt)))

	return fmt.Sprintf("  %s  %s  %s  %s  %s  %s  %s", repo, records, issues, prs, stale, active, fetched)
}

// dashAlertCell pads the plain cell text, then colors it when the
// category is alerting. Coloring after padding keeps the escape codes
// out of the width math.
func dashAlertCell(text string, width int, alerts []model.Alert, category model.Category) string {
	cell := format.Pad(text, width)
	for _, a := range alerts {
		if a.Category == category {
			return severityStyle(a.Severity).Render(cell)
		}
	}
	return cell
}

func severityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityCritical:
		return dashCriticalStyle
	case model.SeverityWarning:
		return dashWarningStyle
	default:
		return dashInfoStyle
	}
}

// Dashboard styles - balanced palette (vibrant but not harsh)
var (
	dashTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#60A5FA"))

	dashHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CBD5E1"))

	dashSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#475569"))

	dashDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	dashEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	dashHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	dashCriticalStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF4444"))

	dashWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F59E0B"))

	dashInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))
)
