package format

import (
	"github.com/mattn/go-runewidth"

	"github.com/spiffcs/repowatch/internal/constants"
)

// Truncate cuts s to fit within max display columns, appending "..."
// when anything was removed. Width is measured in terminal columns so
// wide runes count as two.
func Truncate(s string, max int) string {
	return runewidth.Truncate(s, max, constants.TruncationSuffix)
}

// Pad right-pads s with spaces to the given display width.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Width returns the display width of s in terminal columns.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
