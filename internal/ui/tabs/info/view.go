package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/factory-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderSessionCard(),
		m.renderRequestsCard(),
		m.renderDownloadsCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, session and local audit log")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

func (m *Model) card(title string, rows ...string) string {
	rows = append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigCard renders the resolved configuration.
func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}

	timeout := "transport default"
	if m.config.HTTPTimeout > 0 {
		timeout = m.config.HTTPTimeout.String()
	}

	return m.card("Configuration",
		renderConfigRow("API Base", m.config.APIBaseURL),
		renderConfigRow("Session File", m.config.SessionPath),
		renderConfigRow("Database", m.config.DatabasePath),
		renderConfigRow("Reports", m.config.ReportsDir),
		renderConfigRow("Log File", m.config.LogPath),
		renderConfigRow("HTTP Timeout", timeout),
		renderConfigRow("Error Logs", strconv.Itoa(m.config.TopErrorLogs)),
		renderConfigRow("Notifications", strconv.FormatBool(m.config.Notify)),
	)
}

// renderConfigRow renders a configuration key-value row.
func renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderSessionCard() string {
	user := m.state.User()
	style := styles.WarningTextStyle
	if user != nil {
		style = styles.SuccessTextStyle
	}
	return m.card("Session", style.Render(app.UserLabel(user)))
}

// auditBody returns the placeholder for the shared audit states, if any.
func (m *Model) auditBody() (string, bool) {
	switch {
	case m.audit.Loading && !m.audit.Loaded:
		return m.spinner.ViewLabel("Loading audit log…"), true
	case m.audit.Err != nil:
		return styles.ErrorTextStyle.Render(m.audit.Err.Error()), true
	}
	return "", false
}

// renderRequestsCard renders request totals, a duration sparkline and the
// newest requests.
func (m *Model) renderRequestsCard() string {
	if body, ok := m.auditBody(); ok {
		return m.card("API Requests", body)
	}

	a := m.audit.Data
	if a.stats == nil || a.stats.Total == 0 {
		return m.card("API Requests", styles.HelpStyle.Render("No requests recorded yet."))
	}

	failed := styles.SuccessTextStyle.Render("0")
	if a.stats.Failed > 0 {
		failed = styles.ErrorTextStyle.Render(humanize.Comma(a.stats.Failed))
	}

	rows := []string{
		renderConfigRow("Total", humanize.Comma(a.stats.Total)),
		renderConfigRow("Failed", failed),
		renderConfigRow("Avg Duration", fmt.Sprintf("%.0f ms", a.stats.AvgDurationMs)),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("Duration of the last %d requests", len(a.durations))),
		components.RenderSparkline(a.durations, m.cardWidth()-6),
		"",
	}
	for _, r := range a.requests {
		rows = append(rows, renderRequestRow(r))
	}

	return m.card("API Requests", rows...)
}

func renderRequestRow(r models.RequestRecord) string {
	status := strconv.Itoa(r.StatusCode)
	if r.StatusCode == 0 {
		status = "---"
	}
	statusStyle := styles.SuccessTextStyle
	if r.Failed() {
		statusStyle = styles.ErrorTextStyle
	}

	line := fmt.Sprintf("%s  %-6s %-28s %s %6d ms",
		r.Timestamp.Local().Format("15:04:05"),
		r.Method,
		r.Path,
		statusStyle.Render(status),
		r.DurationMs,
	)
	if r.Error != "" {
		line += "  " + styles.ErrorTextStyle.Render(r.Error)
	}
	return line
}

// renderDownloadsCard renders the newest saved reports.
func (m *Model) renderDownloadsCard() string {
	if body, ok := m.auditBody(); ok {
		return m.card("Report Downloads", body)
	}

	downloads := m.audit.Data.downloads
	if len(downloads) == 0 {
		return m.card("Report Downloads", styles.HelpStyle.Render("No reports downloaded yet."))
	}

	rows := make([]string, 0, len(downloads))
	for _, dl := range downloads {
		user := dl.Username
		if user == "" {
			user = "-"
		}
		rows = append(rows, fmt.Sprintf("%s  %s  %s  %s",
			styles.InfoTextStyle.Render(dl.FileName),
			humanize.Bytes(uint64(dl.Bytes)),
			humanize.Time(dl.DownloadedAt),
			styles.HelpStyle.Render(user),
		))
	}
	return m.card("Report Downloads", rows...)
}

// renderAboutCard renders the version information card.
func (m *Model) renderAboutCard() string {
	return m.card("About Factory Dashboard TUI",
		renderConfigRow("Version", version.GetVersion()),
		renderConfigRow("Commit", version.GetCommit()),
		renderConfigRow("Built", version.GetDate()),
		renderConfigRow("Go Version", runtime.Version()),
		renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)
}
