// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue),
	)
}

// RenderTimeAxis renders the first and last label under a chart of the given width.
func RenderTimeAxis(labels []string, width int) string {
	if len(labels) == 0 {
		return ""
	}
	first := labels[0]
	last := labels[len(labels)-1]
	if len(labels) == 1 || first == last {
		return styles.HelpStyle.Render(first)
	}

	gap := width - lipgloss.Width(first) - lipgloss.Width(last)
	if gap < 1 {
		gap = 1
	}
	return styles.HelpStyle.Render(first + strings.Repeat(" ", gap) + last)
}

// RenderErrorBars draws one vertical bar per machine with a legend underneath.
func RenderErrorBars(counts []models.MachineErrorCount, width, height int) string {
	if len(counts) == 0 {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if height < 4 {
		height = 4
	}

	barWidth := (width / len(counts)) - 1
	switch {
	case barWidth > 6:
		barWidth = 6
	case barWidth < 1:
		barWidth = 1
	}
	chartWidth := min(width, len(counts)*(barWidth+1))

	bc := barchart.New(chartWidth, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for _, c := range counts {
		bc.Push(barchart.BarData{
			Label: c.MachineName,
			Values: []barchart.BarValue{
				{Name: c.MachineName, Value: float64(c.Count), Style: styles.ErrorBarStyle},
			},
		})
	}
	bc.Draw()

	items := make([]LegendItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, LegendItem{
			Label: fmt.Sprintf("%s: %d", c.MachineName, c.Count),
			Color: styles.Error,
		})
	}

	return lipgloss.JoinVertical(lipgloss.Left, bc.View(), "", RenderLegend(items))
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	// Find max value
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = max(0, min(normalized, len(sparkChars)-1))
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
