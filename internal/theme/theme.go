// Package theme provides the Lip Gloss palette and reusable styles shared by
// the command output and the stream dashboard. It is a leaf package with no
// internal imports.
package theme

import "github.com/charmbracelet/lipgloss"

// Stream state colors.
var (
	ColorConnecting = lipgloss.Color("#7c3aed")
	ColorOpen       = lipgloss.Color("#16a34a")
	ColorClosing    = lipgloss.Color("#d97706")
	ColorClosed     = lipgloss.Color("#4b5563")
	ColorDefault    = lipgloss.Color("#9ca3af")
)

// Send rate thresholds, relative to one event per two seconds.
var (
	ColorRateLow  = lipgloss.Color("#22c55e")
	ColorRateMid  = lipgloss.Color("#d97706")
	ColorRateHigh = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorSuccess = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorKey     = lipgloss.Color("#06b6d4")
)

// StateColor returns the color for a stream state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "connecting":
		return ColorConnecting
	case "open":
		return ColorOpen
	case "closing":
		return ColorClosing
	case "closed":
		return ColorClosed
	default:
		return ColorDefault
	}
}

// StateGlyph returns a glyph for a stream state name.
func StateGlyph(state string) string {
	switch state {
	case "connecting":
		return "◎"
	case "open":
		return "●"
	case "closing":
		return "◌"
	case "closed":
		return "○"
	default:
		return "·"
	}
}

// RateColor colors a send rate in events per second. Rates above 0.5/s are
// faster than the advisory interval.
func RateColor(perSec float64) lipgloss.Color {
	switch {
	case perSec > 1:
		return ColorRateHigh
	case perSec > 0.5:
		return ColorRateMid
	default:
		return ColorRateLow
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleKey = lipgloss.NewStyle().
			Foreground(ColorKey)

	StyleSuccess = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StyleFailure = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)
)
