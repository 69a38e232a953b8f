package machines

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

const statusColumn = 2

// View renders the machines tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Machines"),
		m.renderMachineList(),
		"",
		m.renderLogs(),
		components.RenderFooter(m.ShortHelp()),
	)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) paneStyle(p pane) lipgloss.Style {
	style := styles.BlurredBorderStyle
	if m.focus == p {
		style = styles.FocusedBorderStyle
	}
	return style.Width(max(m.width-8, 40))
}

func (m *Model) renderMachineList() string {
	var body string
	switch {
	case m.machines.Loading:
		body = m.spinner.ViewLabel("Loading machines…")
	case m.machines.Err != nil:
		body = styles.ErrorTextStyle.Render(m.machines.Err.Error())
	case len(m.machines.Data) == 0:
		body = styles.HelpStyle.Render("No machines found.")
	default:
		body = m.renderMachineViewport()
	}
	return m.paneStyle(paneMachines).Render(body)
}

// syncList re-renders the machine table into the list viewport and scrolls
// the cursor row into view. The header rows stay above the viewport.
func (m *Model) syncList() {
	lines := strings.Split(m.renderMachineTable(), "\n")
	headerLines := max(len(lines)-len(m.machines.Data), 0)
	m.listHeader = strings.Join(lines[:headerLines], "\n")
	m.list.SetContent(strings.Join(lines[headerLines:], "\n"))

	switch {
	case m.cursor < m.list.YOffset:
		m.list.SetYOffset(m.cursor)
	case m.cursor >= m.list.YOffset+m.list.Height:
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m *Model) renderMachineViewport() string {
	list := lipgloss.JoinVertical(lipgloss.Left, m.listHeader, m.list.View())
	if len(m.machines.Data) > m.list.Height {
		list = lipgloss.JoinVertical(lipgloss.Left, list,
			styles.HelpStyle.Render(fmt.Sprintf("%d of %d", m.cursor+1, len(m.machines.Data))))
	}
	return list
}

// renderMachineTable renders every machine, one line per row below the header.
func (m *Model) renderMachineTable() string {
	machines := m.machines.Data
	rows := make([][]string, 0, len(machines))
	for i, machine := range machines {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		status := string(machine.Status)
		if status == "" {
			status = "Unknown"
		}
		rows = append(rows, []string{marker + strconv.Itoa(machine.ID), machine.DisplayName(), status})
	}

	t := ltable.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers("ID", "Name", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return styles.TableHeaderStyle
			case row < 0 || row >= len(machines):
				return styles.TableCellStyle
			case col == statusColumn:
				return statusCellStyle(machines[row].Status)
			case row == m.cursor:
				return styles.TableSelectedStyle
			default:
				return styles.TableCellStyle
			}
		})

	return t.Render()
}

func statusCellStyle(status models.MachineStatus) lipgloss.Style {
	return styles.GetStatusStyle(status).Padding(0, 1)
}

func (m *Model) renderLogs() string {
	if !m.hasSelection {
		return m.paneStyle(paneLogs).Render(styles.HelpStyle.Render("Select a machine and press enter to view its logs."))
	}

	header := styles.CardTitleStyle.Render(fmt.Sprintf("Logs (Machine %d)", m.selectedID))

	var body string
	switch {
	case m.logs.Loading:
		body = m.spinner.ViewLabel("Loading logs…")
	case m.logs.Err != nil:
		body = styles.ErrorTextStyle.Render(m.logs.Err.Error())
	case len(m.logs.Data) == 0:
		body = styles.HelpStyle.Render("No logs.")
	default:
		body = m.logsTable.View()
	}

	return m.paneStyle(paneLogs).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
}
