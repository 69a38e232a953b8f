// Package dashboard provides the KPI, error and throughput overview tab.
package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/fetch"
	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

// DataSource is what the dashboard reads from the service manager.
type DataSource interface {
	GetKpiTotals(ctx context.Context) (models.KpiTotals, error)
	GetRecentErrors(ctx context.Context) ([]models.MachineErrorCount, error)
	GetThroughput(ctx context.Context, bucket models.Bucket, machineID *int) (*models.ThroughputSeries, error)
	ListMachines(ctx context.Context) ([]models.Machine, error)
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Bucket   key.Binding
	Machine  key.Binding
	Collapse key.Binding
	Refresh  key.Binding
	Up       key.Binding
	Down     key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Bucket: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "hour/day"),
		),
		Machine: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cycle machine"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "collapse chart"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

type (
	kpisLoadedMsg       fetch.Result[models.KpiTotals]
	errorsLoadedMsg     fetch.Result[[]models.MachineErrorCount]
	throughputLoadedMsg fetch.Result[*models.ThroughputSeries]
	machinesLoadedMsg   fetch.Result[[]models.Machine]
)

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	data     DataSource
	ctx      context.Context
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	kpis       fetch.Resource[models.KpiTotals]
	errors     fetch.Resource[[]models.MachineErrorCount]
	throughput fetch.Resource[*models.ThroughputSeries]
	machines   fetch.Resource[[]models.Machine]

	// Throughput filters. machineIdx 0 means all machines.
	bucket     models.Bucket
	machineIdx int
	collapsed  bool
}

// New creates a new dashboard model.
func New(state *app.State, data DataSource) *Model {
	return &Model{
		state:    state,
		data:     data,
		ctx:      context.Background(),
		spinner:  components.NewSpinner("Loading…"),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		bucket:   models.BucketHour,
	}
}

// Init fetches every widget once.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick(),
		m.loadKpis(),
		m.loadErrors(),
		m.loadMachines(),
		m.loadThroughput(),
	)
}

func (m *Model) loadKpis() tea.Cmd {
	req, ctx := m.kpis.Begin(m.ctx)
	return fetch.Cmd(ctx, req, m.data.GetKpiTotals, func(r fetch.Result[models.KpiTotals]) tea.Msg {
		return kpisLoadedMsg(r)
	})
}

func (m *Model) loadErrors() tea.Cmd {
	req, ctx := m.errors.Begin(m.ctx)
	return fetch.Cmd(ctx, req, m.data.GetRecentErrors, func(r fetch.Result[[]models.MachineErrorCount]) tea.Msg {
		return errorsLoadedMsg(r)
	})
}

func (m *Model) loadMachines() tea.Cmd {
	req, ctx := m.machines.Begin(m.ctx)
	return fetch.Cmd(ctx, req, m.data.ListMachines, func(r fetch.Result[[]models.Machine]) tea.Msg {
		return machinesLoadedMsg(r)
	})
}

// loadThroughput fetches the series for the current filters. Nothing is
// fetched while the chart is collapsed.
func (m *Model) loadThroughput() tea.Cmd {
	if m.collapsed {
		return nil
	}
	bucket, machineID := m.bucket, m.selectedMachineID()
	req, ctx := m.throughput.Begin(m.ctx)
	fn := func(ctx context.Context) (*models.ThroughputSeries, error) {
		return m.data.GetThroughput(ctx, bucket, machineID)
	}
	return fetch.Cmd(ctx, req, fn, func(r fetch.Result[*models.ThroughputSeries]) tea.Msg {
		return throughputLoadedMsg(r)
	})
}

// Update handles messages for the dashboard tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case kpisLoadedMsg:
		m.kpis.Resolve(msg.Req, msg.Data, msg.Err)

	case errorsLoadedMsg:
		m.errors.Resolve(msg.Req, msg.Data, msg.Err)

	case throughputLoadedMsg:
		m.throughput.Resolve(msg.Req, msg.Data, msg.Err)

	case machinesLoadedMsg:
		if m.machines.Resolve(msg.Req, msg.Data, msg.Err) && msg.Err != nil {
			logger.Warn("failed to load machines for throughput filter", "error", msg.Err)
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
		return tea.Batch(m.loadKpis(), m.loadErrors(), m.loadThroughput())

	case key.Matches(msg, m.keys.Collapse):
		m.collapsed = !m.collapsed
		if m.collapsed {
			m.throughput.Cancel()
			return nil
		}
		return m.loadThroughput()

	case key.Matches(msg, m.keys.Bucket):
		if m.collapsed {
			return nil
		}
		m.bucket = m.bucket.Next()
		return m.loadThroughput()

	case key.Matches(msg, m.keys.Machine):
		if m.collapsed {
			return nil
		}
		m.machineIdx = (m.machineIdx + 1) % (len(m.machines.Data) + 1)
		return m.loadThroughput()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// selectedMachineID returns the filtered machine ID, or nil for all machines.
func (m *Model) selectedMachineID() *int {
	if m.machineIdx <= 0 || m.machineIdx > len(m.machines.Data) {
		return nil
	}
	id := m.machines.Data[m.machineIdx-1].ID
	return &id
}

// selectedMachineLabel returns the label of the machine filter.
func (m *Model) selectedMachineLabel() string {
	if m.machineIdx <= 0 || m.machineIdx > len(m.machines.Data) {
		return "All machines"
	}
	return m.machines.Data[m.machineIdx-1].DisplayName()
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-styles.DocStyle.GetHorizontalFrameSize(), 0)
	m.viewport.Height = max(height-styles.DocStyle.GetVerticalFrameSize(), 0)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Bucket,
		m.keys.Machine,
		m.keys.Collapse,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Bucket, m.keys.Machine, m.keys.Collapse},
		{m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
