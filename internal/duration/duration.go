// Package duration provides parsing for human-readable interval strings.
package duration

import (
	"fmt"
	"time"
)

// Parse parses human-readable intervals like "90s", "15m", "1h", "1d".
// Units cover seconds through weeks; anything longer makes no sense for
// a refresh interval.
func Parse(s string) (time.Duration, error) {
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid interval format: %s (use e.g., 90s, 15m, 1h, 1d)", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("interval must be positive: %s", s)
	}

	switch unit {
	case "s", "sec", "secs":
		return time.Duration(n) * time.Second, nil
	case "m", "min", "mins":
		return time.Duration(n) * time.Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * 24 * time.Hour, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown interval unit: %s", unit)
	}
}
