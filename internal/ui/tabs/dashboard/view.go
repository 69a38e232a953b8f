package dashboard

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

const (
	kpiPending = "…"
	kpiFailed  = "ERR"

	errorChartHeight      = 8
	throughputChartHeight = 8
)

// View renders the dashboard component.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderKpiCards(),
		"",
		m.renderErrorChart(),
		"",
		m.renderThroughputChart(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Factory Dashboard")
	subtitle := styles.HelpStyle.Render("Machine KPIs, recent errors and throughput")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// cardWidth is the width available to full-width cards.
func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderKpiCards renders the three KPI totals side by side.
func (m *Model) renderKpiCards() string {
	throughput, errs, machines := kpiPending, kpiPending, kpiPending

	switch {
	case m.kpis.Loading:
	case m.kpis.Err != nil:
		throughput, errs, machines = kpiFailed, kpiFailed, kpiFailed
	case m.kpis.Loaded:
		totals := m.kpis.Data
		throughput = humanize.Commaf(totals.Throughput)
		errs = humanize.Comma(totals.Errors)
		machines = strconv.Itoa(totals.Machines)
	}

	// Each card adds a border and a right margin
	width := max((m.cardWidth()-9)/3, 18)
	cards := []string{
		renderKpiCard("Total Throughput (7d)", throughput, width),
		renderKpiCard("Total Errors (7d)", errs, width),
		renderKpiCard("Machines Reporting", machines, width),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderKpiCard(label, value string, width int) string {
	valueStyle := styles.KpiValueStyle
	if value == kpiFailed {
		valueStyle = valueStyle.Foreground(styles.Error)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.KpiLabelStyle.Render(label),
		valueStyle.Render(value),
	)
	return styles.KpiCardStyle.Width(width).Render(content)
}

// renderErrorChart renders the per-machine error bars.
func (m *Model) renderErrorChart() string {
	width := m.cardWidth()

	var body string
	switch {
	case m.errors.Loading:
		body = m.spinner.ViewLabel("Loading error chart…")
	case m.errors.Err != nil:
		body = styles.ErrorTextStyle.Render(m.errors.Err.Error())
	case len(m.errors.Data) == 0:
		body = styles.HelpStyle.Render("No recent errors.")
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render("Recent Errors by Machine"),
			"",
			components.RenderErrorBars(m.errors.Data, width-6, errorChartHeight),
		)
	}

	return styles.CardStyle.Width(width).Render(body)
}

// renderThroughputChart renders the throughput card with its filter bar.
func (m *Model) renderThroughputChart() string {
	width := m.cardWidth()
	rows := []string{m.renderFilters(), ""}

	switch {
	case m.collapsed:
		rows = append(rows, styles.HelpStyle.Render("Chart collapsed. Press c to expand."))
	case m.throughput.Loading:
		rows = append(rows, m.spinner.ViewLabel("Loading throughput…"))
	case m.throughput.Err != nil:
		rows = append(rows, styles.ErrorTextStyle.Render(m.throughput.Err.Error()))
	case m.throughput.Data.IsEmpty():
		rows = append(rows, styles.HelpStyle.Render("No throughput data for this selection."))
	default:
		chartWidth := max(width-16, 30)
		chart := components.RenderLineChart(m.throughput.Data.Values(), chartWidth, throughputChartHeight, m.throughputCaption())
		rows = append(rows, chart, components.RenderTimeAxis(m.throughput.Data.Labels(), chartWidth+8))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// throughputCaption labels the series with its bucket and machine filter.
func (m *Model) throughputCaption() string {
	caption := fmt.Sprintf("Throughput (%s)", m.bucket)
	if id := m.selectedMachineID(); id != nil {
		caption += fmt.Sprintf(" — Machine %d", *id)
	}
	return caption
}

func (m *Model) renderFilters() string {
	controlStyle := styles.ButtonActiveStyle
	if m.collapsed {
		controlStyle = styles.ButtonInactiveStyle
	}

	collapse := "[c] Collapse"
	if m.collapsed {
		collapse = "[c] Expand"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.TitleStyle.Render("Throughput"),
		"  ",
		controlStyle.Render("[b] "+m.bucket.Label()),
		controlStyle.Render("[m] "+m.selectedMachineLabel()),
		styles.ButtonActiveStyle.Render(collapse),
	)
}
