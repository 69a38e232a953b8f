// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/factory-dashboard-tui/internal/services"
	"github.com/j-veylop/factory-dashboard-tui/internal/session"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabMachines is the ID for the machines tab.
	TabMachines
	// TabAccount is the ID for the account tab.
	TabAccount
	// TabInfo is the ID for the info tab.
	TabInfo
)

// navbarHeight is the number of rows taken by the tab bar.
const navbarHeight = 3

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabMachines:
		return "Machines"
	case TabAccount:
		return "Account"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs with text inputs. While it reports
// true, only ctrl+c is handled globally and every other key goes to the tab.
type InputCapturer interface {
	CapturingInput() bool
}

// Services is the part of the service manager the root model depends on.
type Services interface {
	Subscribe() chan services.ServiceEvent
	Unsubscribe(ch chan services.ServiceEvent)
	CurrentUser() *session.User
}

// KeyMap defines the global keybindings.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "machines"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "account"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	User        lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Toast   lipgloss.Style
	Alert   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	s := Styles{}
	s.TabBar = styles.TabBarStyle
	s.ActiveTab = styles.ActiveTabStyle
	s.InactiveTab = styles.InactiveTabStyle
	s.User = lipgloss.NewStyle().Foreground(styles.TextSecondary).Padding(0, 1)

	s.NotificationSuccess = styles.NotificationSuccessStyle
	s.NotificationError = styles.NotificationErrorStyle
	s.NotificationWarning = styles.NotificationWarningStyle
	s.NotificationInfo = styles.NotificationInfoStyle

	s.Content = styles.DocStyle
	s.Toast = styles.ToastStyle
	s.Alert = styles.AlertPanelStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	s.Subtle = lipgloss.NewStyle().Foreground(styles.Subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(styles.Primary)

	return s
}

// Model is the main application model. It holds no fetched data: every tab
// issues and owns its own requests.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services Services
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. svc may be nil.
func NewModel(svc Services) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	names := make([]string, 0, 4)
	for id := TabDashboard; id <= TabInfo; id++ {
		names = append(names, id.String())
	}

	return &Model{
		activeTab: TabDashboard,
		tabNames:  names,
		tabs:      make([]Tab, len(names)), // Placeholder - tabs will be set externally
		state:     NewState(),
		services:  svc,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init subscribes to service events for the lifetime of the program and
// initializes every tab.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		m.state.SetUser(m.services.CurrentUser())
		if m.eventChannel == nil {
			m.eventChannel = m.services.Subscribe()
		}
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Close ends the service subscription. It is safe to call more than once.
func (m *Model) Close() {
	if m.services != nil && m.eventChannel != nil {
		m.services.Unsubscribe(m.eventChannel)
	}
	m.eventChannel = nil
}

// Update handles messages and updates the model. Key messages reach only the
// active tab; every other message reaches all tabs.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, forward := m.handleKeyMsg(msg)
		cmds = append(cmds, cmd)
		if forward {
			cmds = append(cmds, m.updateActiveTab(msg))
		}
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case spinner.TickMsg:
		cmds = append(cmds, m.handleSpinnerTick(msg))

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	cmds = append(cmds, m.updateAllTabs(msg)...)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case StartLoadingMsg:
		m.state.SetLoadingNotification(msg.Label)
	case StopLoadingMsg:
		m.state.ClearLoadingNotification()
	case AlertMsg:
		m.state.SetAlert(msg.Message)
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.SessionChangedEvent:
		if !e.LoggedIn {
			m.state.SetUser(nil)
			return NotifyInfo("Signed out")
		}
		m.state.SetUser(e.User)
		if e.User != nil && e.User.Username != "" {
			return NotifySuccess("Signed in as " + e.User.Username)
		}
		return NotifySuccess("Signed in")

	case services.ReportSavedEvent:
		return NotifySuccess("Report saved to " + e.Download.Path)

	case services.ErrorEvent:
		return NotifyError(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}
	return nil
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-navbarHeight)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(id TabID) {
	if int(id) < 0 || int(id) >= len(m.tabs) {
		return
	}
	m.activeTab = id
	m.updateTabSizes()
}

func (m *Model) activeTabCapturesInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// handleKeyMsg handles global keys. It reports whether the key should also
// reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m.quit(), false
	}

	// Any key dismisses a pending alert and is consumed by it
	if m.state.HasAlert() {
		m.state.SetAlert("")
		return func() tea.Msg { return AlertDismissedMsg{} }, false
	}

	if m.activeTabCapturesInput() {
		return nil, true
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keymap.Help), key.Matches(msg, m.keymap.Escape):
			m.showHelp = false
		case key.Matches(msg, m.keymap.Quit):
			return m.quit(), false
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit(), false

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return nil, false

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabDashboard)
		return nil, false

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabMachines)
		return nil, false

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabAccount)
		return nil, false

	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabInfo)
		return nil, false

	case key.Matches(msg, m.keymap.NextTab):
		if len(m.tabs) > 0 {
			m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}
		return nil, false

	case key.Matches(msg, m.keymap.PrevTab):
		if len(m.tabs) > 0 {
			m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}
		return nil, false
	}

	return nil, true
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if alert := m.state.Alert(); alert != "" {
		mainView = m.overlayCentered(mainView, m.renderAlert(alert))
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	// Pad so the overlay fits even over a short view
	for len(mainLines) < m.height {
		mainLines = append(mainLines, "")
	}

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	user := m.styles.User.Render(UserLabel(m.state.User()))
	gap := m.width - lipgloss.Width(tabBar) - lipgloss.Width(user) - 2
	if gap > 0 {
		tabBar = tabBar + strings.Repeat(" ", gap) + user
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

// UserLabel renders the navbar user text.
func UserLabel(user *session.User) string {
	if user == nil || user.Username == "" {
		return "Not signed in"
	}
	if user.Role == "" {
		return "Signed in as " + user.Username
	}
	return fmt.Sprintf("Signed in as %s (%s)", user.Username, user.Role)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderAlert(message string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		message,
		"",
		m.styles.Subtle.Render("Press any key to continue"),
	)
	return m.styles.Alert.Render(content)
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, fmt.Sprintf("  1-%d        Switch tabs", len(m.tabNames)))
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
