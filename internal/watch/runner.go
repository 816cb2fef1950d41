package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/model"
)

// NotifyFunc delivers one rendered alert message.
type NotifyFunc func(ctx context.Context, text string) error

// Report summarizes one monitoring pass over a repository. Partial
// delivery is a normal outcome, not an error state for the run.
type Report struct {
	Repo      string        `json:"repo"`
	StartedAt time.Time     `json:"startedAt"`
	Alerts    []model.Alert `json:"alerts,omitempty"`
	Attempted int           `json:"attempted"`
	Delivered int           `json:"delivered"`
}

// Runner evaluates records and delivers the resulting alerts.
type Runner struct {
	Thresholds config.Thresholds
	Notify     NotifyFunc
}

// Run evaluates records as of now and sends one message per alert, in
// category order, sequentially. A delivery failure is logged and counted
// but never stops the remaining deliveries. The returned error is
// reserved for configuration problems, which abort before evaluation.
func (r *Runner) Run(ctx context.Context, repo string, records []model.Record, now time.Time) (Report, error) {
	report := Report{Repo: repo, StartedAt: now}

	if err := r.Thresholds.Validate(); err != nil {
		return report, err
	}
	if r.Notify == nil {
		return report, fmt.Errorf("%w: runner has no notifier", config.ErrInvalid)
	}

	report.Alerts = Evaluate(records, r.Thresholds, now)
	report.Attempted = len(report.Alerts)

	for _, alert := range report.Alerts {
		text := Render(alert, repo, r.Thresholds)
		if err := r.Notify(ctx, text); err != nil {
			log.Error("alert delivery failed", "repo", repo, "category", alert.Category, "error", err)
			continue
		}
		report.Delivered++
	}

	return report, nil
}
