// Package info provides the configuration and local audit tab.
package info

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/config"
	"github.com/j-veylop/factory-dashboard-tui/internal/db"
	"github.com/j-veylop/factory-dashboard-tui/internal/fetch"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/services"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

const (
	recentRequestLimit  = 10
	recentDownloadLimit = 5
	sparklineSamples    = 40
)

// DataSource is what the info tab reads from the service manager.
type DataSource interface {
	Config() *config.Config
	RecentRequests(ctx context.Context, limit int) ([]models.RequestRecord, error)
	RequestStats(ctx context.Context) (*db.RequestStats, error)
	RecentDownloads(ctx context.Context, limit int) ([]models.ReportDownload, error)
}

// audit is one read of the local audit store.
type audit struct {
	stats     *db.RequestStats
	requests  []models.RequestRecord
	durations []float64
	downloads []models.ReportDownload
}

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

type auditLoadedMsg fetch.Result[audit]

// Model represents the info tab state.
type Model struct {
	state    *app.State
	data     DataSource
	config   *config.Config
	ctx      context.Context
	spinner  components.LoadingSpinner
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	audit fetch.Resource[audit]
}

// New creates a new info model.
func New(state *app.State, data DataSource) *Model {
	return &Model{
		state:    state,
		data:     data,
		config:   data.Config(),
		ctx:      context.Background(),
		spinner:  components.NewSpinner("Loading audit log…"),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init loads the audit store.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), m.loadAudit())
}

func (m *Model) loadAudit() tea.Cmd {
	req, ctx := m.audit.Begin(m.ctx)
	return fetch.Cmd(ctx, req, m.readAudit, func(r fetch.Result[audit]) tea.Msg {
		return auditLoadedMsg(r)
	})
}

func (m *Model) readAudit(ctx context.Context) (audit, error) {
	stats, err := m.data.RequestStats(ctx)
	if err != nil {
		return audit{}, fmt.Errorf("failed to read request stats: %w", err)
	}

	requests, err := m.data.RecentRequests(ctx, sparklineSamples)
	if err != nil {
		return audit{}, fmt.Errorf("failed to read request log: %w", err)
	}

	downloads, err := m.data.RecentDownloads(ctx, recentDownloadLimit)
	if err != nil {
		return audit{}, fmt.Errorf("failed to read report downloads: %w", err)
	}

	// Rows arrive newest first; the sparkline reads left to right
	durations := make([]float64, len(requests))
	for i, r := range requests {
		durations[len(requests)-1-i] = float64(r.DurationMs)
	}

	return audit{
		stats:     stats,
		requests:  requests[:min(len(requests), recentRequestLimit)],
		durations: durations,
		downloads: downloads,
	}, nil
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case auditLoadedMsg:
		m.audit.Resolve(msg.Req, msg.Data, msg.Err)

	case app.ServiceEventMsg:
		// Downloads and logins add audit rows
		switch msg.Event.(type) {
		case services.ReportSavedEvent, services.SessionChangedEvent:
			cmds = append(cmds, m.loadAudit())
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			cmds = append(cmds, m.loadAudit())
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-styles.DocStyle.GetHorizontalFrameSize(), 0)
	m.viewport.Height = max(height-styles.DocStyle.GetVerticalFrameSize(), 0)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
