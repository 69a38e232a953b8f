// Package account provides the login form and the KPI report download.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/factory-dashboard-tui/internal/api"
	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/fetch"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/services"
	"github.com/j-veylop/factory-dashboard-tui/internal/session"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/components"
)

// MsgCredentialsRequired is shown when the form is submitted incomplete.
const MsgCredentialsRequired = "Username and password are required"

// DataSource is what the account tab needs from the service manager.
type DataSource interface {
	Login(ctx context.Context, username, password string) (*session.User, error)
	Logout() error
	CurrentUser() *session.User
	LoggedIn() bool
	DownloadReport(ctx context.Context) (*models.ReportDownload, error)
}

// formField represents which part of the login form is focused.
type formField int

const (
	fieldNone formField = iota
	fieldUsername
	fieldPassword
	fieldSubmit
)

const formFields = 3

// keyMap defines the key bindings specific to the account tab.
type keyMap struct {
	Focus    key.Binding
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Escape   key.Binding
	Logout   key.Binding
	Download key.Binding
}

// defaultKeyMap returns the default key bindings for the account tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Focus: key.NewBinding(
			key.WithKeys("enter", "l"),
			key.WithHelp("enter/l", "sign in"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave form"),
		),
		Logout: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "sign out"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download report"),
		),
	}
}

type (
	loginDoneMsg  fetch.Result[*session.User]
	reportDoneMsg fetch.Result[*models.ReportDownload]
	logoutDoneMsg struct{ err error }
)

// Model represents the account tab state.
type Model struct {
	state   *app.State
	data    DataSource
	ctx     context.Context
	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int

	user          *session.User
	focusedField  formField
	usernameInput textinput.Model
	passwordInput textinput.Model
	formErr       string

	login  fetch.Resource[*session.User]
	report fetch.Resource[*models.ReportDownload]
}

// New creates a new account model.
func New(state *app.State, data DataSource) *Model {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "username"
	usernameInput.CharLimit = 100
	usernameInput.Width = 40

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 200
	passwordInput.Width = 40
	passwordInput.EchoMode = textinput.EchoPassword

	return &Model{
		state:         state,
		data:          data,
		ctx:           context.Background(),
		spinner:       components.NewSpinner("Signing in…"),
		keys:          defaultKeyMap(),
		user:          data.CurrentUser(),
		usernameInput: usernameInput,
		passwordInput: passwordInput,
	}
}

// Init initializes the account tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick()
}

// CapturingInput reports whether the login form holds the keyboard.
func (m *Model) CapturingInput() bool {
	return m.focusedField != fieldNone
}

// Update handles messages for the account tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		if !m.login.Resolve(msg.Req, msg.Data, msg.Err) {
			return m, nil
		}
		if msg.Err != nil {
			m.formErr = loginErrorText(msg.Err)
			return m, nil
		}
		m.user = msg.Data
		m.resetForm()

	case logoutDoneMsg:
		if msg.err != nil {
			return m, app.NotifyError("Sign out failed: " + msg.err.Error())
		}
		m.user = nil
		m.resetForm()

	case reportDoneMsg:
		if !m.report.Resolve(msg.Req, msg.Data, msg.Err) {
			return m, nil
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrAuthRequired) {
				m.report.Err = nil
				return m, tea.Batch(app.StopLoading(), app.Alert(api.MsgLoginRequired))
			}
			return m, tea.Batch(app.StopLoading(), app.NotifyError(reportErrorText(msg.Err)))
		}
		return m, app.StopLoading()

	case app.ServiceEventMsg:
		if ev, ok := msg.Event.(services.SessionChangedEvent); ok {
			if ev.LoggedIn {
				m.user = ev.User
			} else {
				m.user = nil
				m.resetForm()
			}
		}

	case tea.KeyMsg:
		if m.focusedField != fieldNone {
			return m.updateForm(msg)
		}
		return m, m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		// Cursor blink
		var userCmd, passCmd tea.Cmd
		m.usernameInput, userCmd = m.usernameInput.Update(msg)
		m.passwordInput, passCmd = m.passwordInput.Update(msg)
		return m, tea.Batch(userCmd, passCmd)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Download):
		return m.downloadReport()

	case m.user != nil:
		if key.Matches(msg, m.keys.Logout) {
			return m.logout()
		}

	case key.Matches(msg, m.keys.Focus):
		m.focusedField = fieldUsername
		m.updateFormFocus()
		return textinput.Blink
	}
	return nil
}

// updateForm handles keys while the login form is focused.
func (m *Model) updateForm(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.focusedField = fieldNone
		m.updateFormFocus()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.focusedField = m.focusedField%formFields + 1
		m.updateFormFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Prev):
		m.focusedField = (m.focusedField+formFields-2)%formFields + 1
		m.updateFormFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focusedField == fieldSubmit {
			return m, m.submit()
		}
		m.focusedField++
		m.updateFormFocus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case fieldUsername:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	case fieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// updateFormFocus updates which form input is focused.
func (m *Model) updateFormFocus() {
	m.usernameInput.Blur()
	m.passwordInput.Blur()

	switch m.focusedField {
	case fieldUsername:
		m.usernameInput.Focus()
	case fieldPassword:
		m.passwordInput.Focus()
	}
}

// submit validates the form and starts the login request.
func (m *Model) submit() tea.Cmd {
	if m.login.Loading {
		return nil
	}

	username := strings.TrimSpace(m.usernameInput.Value())
	password := m.passwordInput.Value()
	if username == "" || password == "" {
		m.formErr = MsgCredentialsRequired
		return nil
	}

	m.formErr = ""
	req, ctx := m.login.Begin(m.ctx)
	fn := func(ctx context.Context) (*session.User, error) {
		return m.data.Login(ctx, username, password)
	}
	return fetch.Cmd(ctx, req, fn, func(r fetch.Result[*session.User]) tea.Msg {
		return loginDoneMsg(r)
	})
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: m.data.Logout()}
	}
}

// downloadReport starts a report download, or raises the login alert when no
// token is stored.
func (m *Model) downloadReport() tea.Cmd {
	if m.report.Loading {
		return nil
	}
	if !m.data.LoggedIn() {
		return app.Alert(api.MsgLoginRequired)
	}

	req, ctx := m.report.Begin(m.ctx)
	return tea.Batch(
		app.StartLoading("Downloading report…"),
		fetch.Cmd(ctx, req, m.data.DownloadReport, func(r fetch.Result[*models.ReportDownload]) tea.Msg {
			return reportDoneMsg(r)
		}),
	)
}

// resetForm clears and blurs the inputs and drops any form error.
func (m *Model) resetForm() {
	m.usernameInput.SetValue("")
	m.passwordInput.SetValue("")
	m.formErr = ""
	m.focusedField = fieldNone
	m.updateFormFocus()
}

func loginErrorText(err error) string {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return api.MsgLogin + ": " + err.Error()
}

func reportErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail()
	}
	return api.MsgReport + ": " + err.Error()
}

// SetSize sets the available size for the account tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputWidth := min(max(width-24, 20), 50)
	m.usernameInput.Width = inputWidth
	m.passwordInput.Width = inputWidth
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	switch {
	case m.focusedField != fieldNone:
		return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Escape}
	case m.user != nil:
		return []key.Binding{m.keys.Download, m.keys.Logout}
	default:
		return []key.Binding{m.keys.Focus, m.keys.Download}
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Focus, m.keys.Next, m.keys.Prev, m.keys.Escape},
		{m.keys.Download, m.keys.Logout},
	}
}
