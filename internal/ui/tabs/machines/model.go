// Package machines provides the machine list and per-machine log viewer.
package machines

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/fetch"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

// DataSource is what the machines tab reads from the service manager.
type DataSource interface {
	ListMachines(ctx context.Context) ([]models.Machine, error)
	GetLogs(ctx context.Context, machineID int) ([]models.LogEntry, error)
}

// pane is the part of the tab receiving navigation keys.
type pane int

const (
	paneMachines pane = iota
	paneLogs
)

// keyMap defines the key bindings specific to the machines tab.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	ViewLogs key.Binding
	Focus    key.Binding
	Refresh  key.Binding
}

// defaultKeyMap returns the default key bindings for the machines tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view logs"),
		),
		Focus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "switch pane"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type (
	machinesLoadedMsg fetch.Result[[]models.Machine]
	logsLoadedMsg     fetch.Result[[]models.LogEntry]
)

// Model represents the machines tab state.
type Model struct {
	state   *app.State
	data    DataSource
	ctx     context.Context
	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int

	machines   fetch.Resource[[]models.Machine]
	cursor     int
	list       viewport.Model
	listHeader string

	logs         fetch.Resource[[]models.LogEntry]
	selectedID   int
	hasSelection bool
	logsTable    table.Model
	focus        pane
}

// New creates a new machines model.
func New(state *app.State, data DataSource) *Model {
	t := table.New(
		table.WithColumns(logColumns(80)),
		table.WithFocused(false),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:     state,
		data:      data,
		ctx:       context.Background(),
		spinner:   components.NewSpinner("Loading machines…"),
		keys:      defaultKeyMap(),
		list:      viewport.New(80, 10),
		logsTable: t,
	}
}

// logColumns sizes the log table for the given inner width.
func logColumns(width int) []table.Column {
	msgWidth := max(width-8-21-6, 20)
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Timestamp", Width: 21},
		{Title: "Message", Width: msgWidth},
	}
}

// Init loads the machine list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), m.loadMachines())
}

func (m *Model) loadMachines() tea.Cmd {
	req, ctx := m.machines.Begin(m.ctx)
	return fetch.Cmd(ctx, req, m.data.ListMachines, func(r fetch.Result[[]models.Machine]) tea.Msg {
		return machinesLoadedMsg(r)
	})
}

// viewLogs selects a machine and loads its logs. It is a no-op while a logs
// request is in flight.
func (m *Model) viewLogs(machineID int) tea.Cmd {
	if m.logs.Loading {
		return nil
	}
	m.selectedID = machineID
	m.hasSelection = true
	m.logsTable.SetRows(nil)
	req, ctx := m.logs.Begin(m.ctx)
	fn := func(ctx context.Context) ([]models.LogEntry, error) {
		return m.data.GetLogs(ctx, machineID)
	}
	return fetch.Cmd(ctx, req, fn, func(r fetch.Result[[]models.LogEntry]) tea.Msg {
		return logsLoadedMsg(r)
	})
}

// Update handles messages for the machines tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case machinesLoadedMsg:
		if m.machines.Resolve(msg.Req, msg.Data, msg.Err) {
			m.cursor = min(m.cursor, max(len(m.machines.Data)-1, 0))
			m.syncList()
		}

	case logsLoadedMsg:
		if m.logs.Resolve(msg.Req, msg.Data, msg.Err) && msg.Err == nil {
			m.logsTable.SetRows(logRows(msg.Data))
			m.logsTable.GotoTop()
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.loadMachines()

	case key.Matches(msg, m.keys.Focus):
		m.setFocus(m.focus == paneMachines && m.hasSelection)
		return nil

	case m.focus == paneLogs:
		var cmd tea.Cmd
		m.logsTable, cmd = m.logsTable.Update(msg)
		return cmd

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.syncList()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.machines.Data)-1 {
			m.cursor++
			m.syncList()
		}

	case key.Matches(msg, m.keys.ViewLogs):
		if machine, ok := m.SelectedMachine(); ok {
			return m.viewLogs(machine.ID)
		}
	}
	return nil
}

func (m *Model) setFocus(logs bool) {
	if logs {
		m.focus = paneLogs
		m.logsTable.Focus()
		return
	}
	m.focus = paneMachines
	m.logsTable.Blur()
}

// SelectedMachine returns the machine under the cursor.
func (m *Model) SelectedMachine() (models.Machine, bool) {
	if m.cursor < 0 || m.cursor >= len(m.machines.Data) {
		return models.Machine{}, false
	}
	return m.machines.Data[m.cursor], true
}

func logRows(entries []models.LogEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.Display(),
			e.Message,
		})
	}
	return rows
}

// SetSize sets the available size for the machines tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// Split the height between the machine list and the log pane
	inner := max(height-styles.DocStyle.GetVerticalFrameSize()-6, 8)
	m.list.Width = max(width-10, 40)
	m.list.Height = max(inner/3, 3)
	m.logsTable.SetHeight(max(inner-m.list.Height-8, 3))
	m.logsTable.SetColumns(logColumns(max(width-10, 40)))
	m.syncList()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ViewLogs,
		m.keys.Focus,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.ViewLogs, m.keys.Focus},
		{m.keys.Refresh},
	}
}
