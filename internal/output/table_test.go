package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/watch"
)

func sampleStatuses() []service.RepoStatus {
	lastActive := time.Now().Add(-2 * 24 * time.Hour)
	return []service.RepoStatus{
		{
			Repo:        "acme/widgets",
			HasSnapshot: true,
			FetchedAt:   time.Now().Add(-5 * time.Minute),
			RecordCount: 120,
			Metrics: watch.Metrics{
				OpenIssues:   85,
				OpenPRs:      12,
				StalePRs:     []watch.StalePR{{Number: 12, AgeDays: 30}},
				LastActivity: &lastActive,
			},
			Alerts: []model.Alert{
				{Category: model.CategoryTooManyOpenIssues, Severity: model.SeverityCritical, MetricValue: 85},
			},
		},
		{Repo: "acme/gears"},
	}
}

func sampleReport() watch.Report {
	last := time.Date(2025, 6, 11, 8, 30, 0, 0, time.UTC)
	return watch.Report{
		Repo:      "acme/widgets",
		StartedAt: time.Now(),
		Alerts: []model.Alert{
			{Category: model.CategoryTooManyOpenIssues, Severity: model.SeverityCritical, MetricValue: 85},
			{Category: model.CategoryStalePRs, Severity: model.SeverityWarning, MetricValue: 4, Details: []model.Detail{
				{Number: 12, AgeDays: 30},
				{Number: 7, AgeDays: 10},
			}},
			{Category: model.CategoryNoRecentActivity, Severity: model.SeverityInfo, MetricValue: 4, Details: []model.Detail{
				{LastAt: &last},
			}},
		},
		Attempted: 3,
		Delivered: 2,
	}
}

func TestTableFormatStatuses(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	f := &TableFormatter{Thresholds: config.DefaultThresholds()}
	if err := f.FormatStatuses(sampleStatuses(), &buf); err != nil {
		t.Fatalf("FormatStatuses() error = %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"Repository",
		"acme/widgets",
		"85/80",
		"12/20",
		"no data (run: repowatch fetch acme/gears)",
		"1 alerts across 1 repositories",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestTableFormatStatusesEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	f := &TableFormatter{Thresholds: config.DefaultThresholds()}
	if err := f.FormatStatuses(nil, &buf); err != nil {
		t.Fatalf("FormatStatuses() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No repositories configured.") {
		t.Errorf("output = %q, want empty-state message", buf.String())
	}
}

func TestTableFormatReport(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	f := &TableFormatter{Thresholds: config.DefaultThresholds()}
	if err := f.FormatReport(sampleReport(), &buf); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"acme/widgets: 3 alerts, 2 delivered",
		"CRITICAL",
		"Too many open issues: 85",
		"Stale PRs: 4 (#12 30d, #7 10d)",
		"No recent activity: 4 (last activity 2025-06-11T08:30:00Z)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestTableFormatReportQuiet(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	f := &TableFormatter{Thresholds: config.DefaultThresholds()}
	report := watch.Report{Repo: "acme/widgets", StartedAt: time.Now()}
	if err := f.FormatReport(report, &buf); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "acme/widgets: all checks passed") {
		t.Errorf("output = %q, want all-clear line", buf.String())
	}
}

func TestMarkdownFormatStatuses(t *testing.T) {
	var buf bytes.Buffer
	f := &MarkdownFormatter{Thresholds: config.DefaultThresholds()}
	if err := f.FormatStatuses(sampleStatuses(), &buf); err != nil {
		t.Fatalf("FormatStatuses() error = %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"# Repository Status",
		"| Repository | Records | Open Issues | Open PRs | Stale PRs | Last Activity | Alerts |",
		"| acme/widgets | 120 | 85/80 🔴 | 12/20 | 1 |",
		"| acme/gears | - | - | - | - | - | no data |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestMarkdownFormatReport(t *testing.T) {
	var buf bytes.Buffer
	f := &MarkdownFormatter{Thresholds: config.DefaultThresholds()}
	if err := f.FormatReport(sampleReport(), &buf); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"## acme/widgets",
		"- 🔴 **Too many open issues:** 85",
		"- 🟡 **Stale PRs:** 4 (#12 30d, #7 10d)",
		"*3 alerts attempted, 2 delivered*",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestJSONFormatRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{Pretty: true}
	if err := f.FormatReport(sampleReport(), &buf); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}

	var report watch.Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("unmarshaling report: %v", err)
	}
	if report.Repo != "acme/widgets" || report.Attempted != 3 || report.Delivered != 2 {
		t.Errorf("report = %+v, want repo/attempted/delivered preserved", report)
	}
	if len(report.Alerts) != 3 {
		t.Errorf("len(Alerts) = %d, want 3", len(report.Alerts))
	}

	buf.Reset()
	if err := f.FormatStatuses(sampleStatuses(), &buf); err != nil {
		t.Fatalf("FormatStatuses() error = %v", err)
	}
	var statuses []service.RepoStatus
	if err := json.Unmarshal(buf.Bytes(), &statuses); err != nil {
		t.Fatalf("unmarshaling statuses: %v", err)
	}
	if len(statuses) != 2 || statuses[0].Repo != "acme/widgets" {
		t.Errorf("statuses = %+v, want both repos preserved", statuses)
	}
}

func TestNewFormatter(t *testing.T) {
	thresholds := config.DefaultThresholds()

	tests := []struct {
		format Format
		want   string
	}{
		{FormatTable, "*output.TableFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatMarkdown, "*output.MarkdownFormatter"},
		{Format("bogus"), "*output.TableFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := typeName(NewFormatter(tt.format, thresholds))
			if got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TableFormatter:
		return "*output.TableFormatter"
	case *JSONFormatter:
		return "*output.JSONFormatter"
	case *MarkdownFormatter:
		return "*output.MarkdownFormatter"
	}
	return "unknown"
}
