// Package watch evaluates repository records against alert thresholds.
package watch

import (
	"math"
	"sort"
	"time"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/model"
)

// StalePR is one open pull request whose age exceeds the stale threshold.
type StalePR struct {
	Number  int `json:"number"`
	AgeDays int `json:"ageDays"`
}

// Metrics are the raw numbers one evaluation pass inspects, with no
// threshold judgement applied. The status view displays them directly.
type Metrics struct {
	OpenIssues   int        `json:"openIssues"`
	OpenPRs      int        `json:"openPRs"`
	StalePRs     []StalePR  `json:"stalePRs,omitempty"`     // age descending, ties in input order
	LastActivity *time.Time `json:"lastActivity,omitempty"` // nil when no record has any timestamp
}

// InactivityDays returns the gap between the last activity and now in
// whole days. The second return is false when no record carried any
// timestamp, in which case the inactivity check does not apply.
func (m Metrics) InactivityDays(now time.Time) (int, bool) {
	if m.LastActivity == nil {
		return 0, false
	}
	return wholeDays(*m.LastActivity, now), true
}

// Compute derives metrics from records at the given instant. Only the
// stale-PR cutoff consumes a threshold; the volume counts are threshold
// independent. Pure: the clock is injected, records are never mutated.
func Compute(records []model.Record, t config.Thresholds, now time.Time) Metrics {
	var m Metrics

	for _, r := range records {
		if r.IsOpen() {
			switch r.Kind {
			case model.KindIssue:
				m.OpenIssues++
			case model.KindPR:
				m.OpenPRs++
				// Age is unknowable without a creation timestamp;
				// such records sit out the stale check.
				if r.CreatedAt != nil {
					if age := wholeDays(*r.CreatedAt, now); age > t.StalePRDays {
						m.StalePRs = append(m.StalePRs, StalePR{Number: r.Number, AgeDays: age})
					}
				}
			}
		}

		if ts, ok := r.LastActivity(); ok {
			if m.LastActivity == nil || ts.After(*m.LastActivity) {
				v := ts
				m.LastActivity = &v
			}
		}
	}

	// Stalest first; stable sort keeps input order on equal ages.
	sort.SliceStable(m.StalePRs, func(i, j int) bool {
		return m.StalePRs[i].AgeDays > m.StalePRs[j].AgeDays
	})

	return m
}

// Evaluate runs the four threshold checks in their fixed order and
// returns at most one alert per category. Every comparison is strict:
// a metric equal to its threshold never alerts.
func Evaluate(records []model.Record, t config.Thresholds, now time.Time) []model.Alert {
	m := Compute(records, t, now)

	var alerts []model.Alert

	if m.OpenIssues > t.OpenIssues {
		alerts = append(alerts, newAlert(model.CategoryTooManyOpenIssues, m.OpenIssues, nil))
	}

	if m.OpenPRs > t.OpenPRs {
		alerts = append(alerts, newAlert(model.CategoryTooManyOpenPRs, m.OpenPRs, nil))
	}

	if len(m.StalePRs) > 0 {
		details := make([]model.Detail, 0, constants.StaleDetailLimit)
		for _, pr := range m.StalePRs {
			if len(details) == constants.StaleDetailLimit {
				break
			}
			details = append(details, model.Detail{Number: pr.Number, AgeDays: pr.AgeDays})
		}
		alerts = append(alerts, newAlert(model.CategoryStalePRs, len(m.StalePRs), details))
	}

	if gap, ok := m.InactivityDays(now); ok && gap > t.InactiveDays {
		last := *m.LastActivity
		alerts = append(alerts, newAlert(model.CategoryNoRecentActivity, gap, []model.Detail{{LastAt: &last}}))
	}

	return alerts
}

func newAlert(c model.Category, value int, details []model.Detail) model.Alert {
	return model.Alert{
		Category:    c,
		Severity:    c.Severity(),
		MetricValue: value,
		Details:     details,
	}
}

// wholeDays is the floor of the day difference between from and to.
// Floor rather than truncation so clock skew (from after to) yields a
// negative age instead of rounding toward a breach.
func wholeDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
