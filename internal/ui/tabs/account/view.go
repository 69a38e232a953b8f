package account

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

// View renders the account tab.
func (m *Model) View() string {
	sections := []string{m.renderTitle()}

	if m.user != nil {
		sections = append(sections, m.renderSignedIn())
	} else {
		sections = append(sections, m.renderLoginForm())
	}

	sections = append(sections, m.renderReport(), components.RenderFooter(m.ShortHelp()))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Account")
	subtitle := styles.HelpStyle.Render("Sign in to download the KPI report")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) formWidth() int {
	return min(max(m.width-10, 50), 80)
}

func (m *Model) renderSignedIn() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.SuccessTextStyle.Render(app.UserLabel(m.user)),
		"",
		styles.HelpStyle.Render("Press x to sign out."),
	)
	return styles.CardStyle.Width(m.formWidth()).Render(content)
}

// renderLoginForm renders the username and password form.
func (m *Model) renderLoginForm() string {
	width := m.formWidth()

	rows := []string{
		styles.CardTitleStyle.Render("Sign In"),
		"",
	}
	rows = append(rows, m.renderField("Username:", fieldUsername, m.usernameInput, width)...)
	rows = append(rows, m.renderField("Password:", fieldPassword, m.passwordInput, width)...)

	submitStyle := styles.ButtonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, submitStyle.Render(" Sign In "), "")

	switch {
	case m.login.Loading:
		rows = append(rows, m.spinner.ViewLabel("Signing in…"))
	case m.formErr != "":
		rows = append(rows, styles.ErrorTextStyle.Render(m.formErr))
	case m.focusedField == fieldNone:
		rows = append(rows, styles.InfoTextStyle.Render("Press enter to start typing"))
	default:
		rows = append(rows, styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: leave form"))
	}

	return styles.ModalContentStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderField(label string, field formField, input textinput.Model, width int) []string {
	labelStyle, inputStyle := styles.BlurredStyle, styles.BlurredBorderStyle
	prefix := "  "
	if m.focusedField == field {
		labelStyle, inputStyle = styles.FocusedStyle, styles.FocusedBorderStyle
		prefix = "> "
	}
	return []string{
		labelStyle.Render(prefix + label),
		inputStyle.Width(width - 10).Render(input.View()),
		"",
	}
}

// renderReport renders the outcome of the last report download.
func (m *Model) renderReport() string {
	var body string
	switch {
	case m.report.Loading:
		body = m.spinner.ViewLabel("Downloading report…")
	case m.report.Err != nil:
		body = styles.ErrorTextStyle.Render(reportErrorText(m.report.Err))
	case m.report.Loaded && m.report.Data != nil:
		dl := m.report.Data
		body = lipgloss.JoinVertical(lipgloss.Left,
			styles.SuccessTextStyle.Render("Report saved"),
			fmt.Sprintf("%s (%s)", dl.Path, humanize.Bytes(uint64(dl.Bytes))),
		)
	default:
		body = styles.HelpStyle.Render("Press d to download the latest KPI report.")
	}

	return styles.CardStyle.Width(m.formWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("KPI Report"),
		"",
		body,
	))
}
