package model

import "time"

// Severity classifies how urgent an alert is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category identifies which threshold check produced an alert.
type Category string

const (
	CategoryTooManyOpenIssues Category = "too_many_open_issues"
	CategoryTooManyOpenPRs    Category = "too_many_open_prs"
	CategoryStalePRs          Category = "stale_prs"
	CategoryNoRecentActivity  Category = "no_recent_activity"
)

// AllCategories lists every alert category in evaluation order.
// This is the single source of truth for valid category values.
var AllCategories = []Category{
	CategoryTooManyOpenIssues,
	CategoryTooManyOpenPRs,
	CategoryStalePRs,
	CategoryNoRecentActivity,
}

// Severity returns the fixed severity for the category. The mapping is
// part of the alert contract and is not configurable.
func (c Category) Severity() Severity {
	switch c {
	case CategoryTooManyOpenIssues:
		return SeverityCritical
	case CategoryTooManyOpenPRs, CategoryStalePRs:
		return SeverityWarning
	case CategoryNoRecentActivity:
		return SeverityInfo
	}
	return SeverityInfo
}

// Display returns a human-readable name for the category.
func (c Category) Display() string {
	switch c {
	case CategoryTooManyOpenIssues:
		return "Too many open issues"
	case CategoryTooManyOpenPRs:
		return "Too many open PRs"
	case CategoryStalePRs:
		return "Stale PRs"
	case CategoryNoRecentActivity:
		return "No recent activity"
	}
	return string(c)
}

// Detail carries supporting evidence for an alert: number and age for each
// of the stalest PRs on a stale-PR alert, or the last-activity timestamp on
// an inactivity alert.
type Detail struct {
	Number  int        `json:"number,omitempty"`
	AgeDays int        `json:"ageDays,omitempty"`
	LastAt  *time.Time `json:"lastAt,omitempty"`
}

// Alert is a single threshold breach produced by one evaluation pass.
type Alert struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	MetricValue int      `json:"metricValue"`
	Details     []Detail `json:"details,omitempty"`
}
