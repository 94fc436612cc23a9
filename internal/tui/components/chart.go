package components

import (
	"fmt"
	"time"

	"resmon/internal/tui/styles"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
)

// Point is one plotted observation.
type Point struct {
	Time  time.Time
	Value float64
}

// TimeChart renders a braille line chart with a label header and a
// cur/min/max stat line. Returns a placeholder when data is empty.
func TimeChart(label string, pts []Point, width, height int, suffix string) string {
	if len(pts) == 0 {
		return styles.MutedText.Render(label + ": no data")
	}
	if width < 20 {
		width = 20
	}
	if height < 4 {
		height = 4
	}

	chart := timeserieslinechart.New(width, height)
	chart.AxisStyle = styles.Axis
	chart.LabelStyle = styles.AxisLabel
	chart.SetStyle(styles.ChartLine)

	minV, maxV := minMax(pts)
	loV, hiV := minV, maxV
	if loV == hiV {
		// A flat series still needs a non-degenerate Y range.
		hiV = loV + 1
	}
	first, last := pts[0].Time, pts[len(pts)-1].Time
	if !last.After(first) {
		last = first.Add(time.Minute)
	}
	chart.SetYRange(loV, hiV)
	chart.SetViewYRange(loV, hiV)
	chart.SetTimeRange(first, last)
	chart.SetViewTimeRange(first, last)

	for _, p := range pts {
		chart.Push(timeserieslinechart.TimePoint{Time: p.Time, Value: p.Value})
	}
	chart.DrawBraille()

	cur := pts[len(pts)-1].Value
	summary := styles.MutedText.Render(
		fmt.Sprintf("  cur: %s  min: %s  max: %s",
			formatValue(cur, suffix),
			formatValue(minV, suffix),
			formatValue(maxV, suffix),
		),
	)

	header := styles.Label.Render(label)
	return lipgloss.JoinVertical(lipgloss.Left, header, chart.View(), summary)
}

func minMax(pts []Point) (float64, float64) {
	min, max := pts[0].Value, pts[0].Value
	for _, p := range pts[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return min, max
}

// formatValue renders a float with an optional suffix, scaling large
// values for readability.
func formatValue(v float64, suffix string) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fG%s", v/1_000_000_000, suffix)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM%s", v/1_000_000, suffix)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK%s", v/1_000, suffix)
	default:
		return fmt.Sprintf("%.1f%s", v, suffix)
	}
}
