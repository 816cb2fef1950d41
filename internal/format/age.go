// Package format provides shared text formatting helpers for terminal output.
package format

import (
	"fmt"
	"time"
)

// Age formats a duration as a compact human-readable age:
// "now", "5m", "2h", "3d", "2w", "3mo", "1y".
func Age(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	switch {
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	case days < 365:
		return fmt.Sprintf("%dmo", days/30)
	}
	return fmt.Sprintf("%dy", days/365)
}

// AgeAt formats the age of ts relative to now, or "-" when ts is unknown.
func AgeAt(ts *time.Time, now time.Time) string {
	if ts == nil {
		return "-"
	}
	d := now.Sub(*ts)
	if d < 0 {
		d = 0
	}
	return Age(d)
}
