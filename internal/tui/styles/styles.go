// Package styles holds the color palette and style definitions for the
// dashboard so the rest of the TUI references a single source of truth.
package styles

import "github.com/charmbracelet/lipgloss"

// --- Color palette ---

var (
	White   = lipgloss.Color("#E2E2E2")
	Gray    = lipgloss.Color("#888888")
	Muted   = lipgloss.Color("#555555")
	DimGray = lipgloss.Color("#444444")

	Blue     = lipgloss.Color("#5FAFFF")
	DarkBlue = lipgloss.Color("#1A2F40")
	Green    = lipgloss.Color("#5FD787")
	Yellow   = lipgloss.Color("#FFD787")
	Red      = lipgloss.Color("#FF8787")
)

// --- Typography ---

var (
	// Title is the dashboard header text style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	// Subtitle carries the window and refresh info next to the title.
	Subtitle = lipgloss.NewStyle().
			Foreground(Gray)

	// Label names a chart or field.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	// MutedText is for hints and per-chart stat lines.
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// ErrorText is for load failures.
	ErrorText = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)
)

// --- Tabs ---

var (
	Tab = lipgloss.NewStyle().
		Foreground(Gray).
		Padding(0, 2)

	TabActive = lipgloss.NewStyle().
			Foreground(White).
			Background(DarkBlue).
			Bold(true).
			Padding(0, 2)
)

// --- Charts ---

var (
	// ChartLine is the plotted series.
	ChartLine = lipgloss.NewStyle().
			Foreground(Blue)

	// Axis and AxisLabel style the chart frame.
	Axis = lipgloss.NewStyle().
		Foreground(DimGray)

	AxisLabel = lipgloss.NewStyle().
			Foreground(Muted)
)

// --- Key binding hints ---

var (
	KeyStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true)

	KeyDescStyle = lipgloss.NewStyle().
			Foreground(Muted)
)

// FormatKeyBinding formats a single key binding for the footer.
func FormatKeyBinding(key, desc string) string {
	return KeyStyle.Render(key) + " " + KeyDescStyle.Render(desc)
}
