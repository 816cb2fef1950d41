package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/model"
)

// Render produces the Telegram Markdown message for one alert. Pure
// formatting: one fixed template per category, nothing configurable.
func Render(a model.Alert, repo string, t config.Thresholds) string {
	var b strings.Builder

	switch a.Category {
	case model.CategoryTooManyOpenIssues:
		b.WriteString("🚨 *GitHub Alert – Too many open issues*\n")
		fmt.Fprintf(&b, "Repo: `%s`\n", repo)
		fmt.Fprintf(&b, "Open issues: *%d* (threshold: %d)", a.MetricValue, t.OpenIssues)

	case model.CategoryTooManyOpenPRs:
		b.WriteString("⚠️ *GitHub Alert – Too many open PRs*\n")
		fmt.Fprintf(&b, "Repo: `%s`\n", repo)
		fmt.Fprintf(&b, "Open PRs: *%d* (threshold: %d)", a.MetricValue, t.OpenPRs)

	case model.CategoryStalePRs:
		b.WriteString("🐢 *GitHub Alert – Old PRs*\n")
		fmt.Fprintf(&b, "Repo: `%s`\n", repo)
		fmt.Fprintf(&b, "Open PRs older than *%d* days: *%d*", t.StalePRDays, a.MetricValue)
		for _, d := range a.Details {
			fmt.Fprintf(&b, "\n- PR #%d – %d days open", d.Number, d.AgeDays)
		}

	case model.CategoryNoRecentActivity:
		b.WriteString("🕒 *GitHub Alert – No recent activity*\n")
		fmt.Fprintf(&b, "Repo: `%s`\n", repo)
		fmt.Fprintf(&b, "No new issues or PR merges in the last *%d* days.", a.MetricValue)
		if len(a.Details) > 0 && a.Details[0].LastAt != nil {
			fmt.Fprintf(&b, "\nLast activity: `%s`", a.Details[0].LastAt.UTC().Format(time.RFC3339))
		}
	}

	return b.String()
}
