// Package util provides shared utility functions used across the codebase.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// This function properly handles ANSI escape codes and wide characters, making it
// suitable for terminal output with styling.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, "...")
}

// WrapANSI wraps s to width visual columns, breaking on spaces and hyphens
// where possible. Escape sequences are preserved.
func WrapANSI(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wrap(s, width, "-")
}

// PadRightANSI pads s with spaces to width visual columns. Wider strings are
// returned unchanged.
func PadRightANSI(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// OverlayANSI draws fg over bg with fg's top-left corner at column x, line y.
// Lines of fg falling outside bg are dropped; bg lines shorter than x are
// padded. Both strings may contain escape sequences.
func OverlayANSI(bg, fg string, x, y int) string {
	if fg == "" {
		return bg
	}
	x, y = max(x, 0), max(y, 0)

	bgLines := strings.Split(bg, "\n")
	for i, line := range strings.Split(fg, "\n") {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		base := bgLines[row]
		fw := ansi.StringWidth(line)

		left := PadRightANSI(ansi.Truncate(base, x, ""), x)
		right := ""
		if ansi.StringWidth(base) > x+fw {
			right = ansi.TruncateLeft(base, x+fw, "")
		}
		bgLines[row] = left + line + right
	}
	return strings.Join(bgLines, "\n")
}
