package machines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
)

type fakeData struct {
	machines    []models.Machine
	machinesErr error
	logs        map[int][]models.LogEntry
	logsErr     error
	logCalls    []int
}

func (f *fakeData) ListMachines(context.Context) ([]models.Machine, error) {
	return f.machines, f.machinesErr
}

func (f *fakeData) GetLogs(_ context.Context, machineID int) ([]models.LogEntry, error) {
	f.logCalls = append(f.logCalls, machineID)
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs[machineID], nil
}

func sampleData() *fakeData {
	ts := models.NewTimestamp(time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC))
	return &fakeData{
		machines: []models.Machine{
			{ID: 1, Name: "Press A", Status: models.StatusRunning},
			{ID: 2, Name: "Lathe B", Status: models.StatusIdle},
			{ID: 3, Name: "", Status: "Fault"},
		},
		logs: map[int][]models.LogEntry{
			1: {
				{ID: 101, Timestamp: ts, Message: "Spindle started", Type: "INFO"},
				{ID: 102, Timestamp: ts, Message: "Overheat", Type: "ERROR"},
			},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func loaded(t *testing.T, data *fakeData) *Model {
	t.Helper()
	m := New(app.NewState(), data)
	m.SetSize(120, 50)
	run(t, m, m.loadMachines())
	return m
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), sampleData())
	if m.Init() == nil {
		t.Fatal("Init returned nil")
	}
	if !m.machines.Loading {
		t.Error("Init should start loading machines")
	}
	m.SetSize(120, 50)
	if !strings.Contains(m.View(), "Loading machines…") {
		t.Error("view should show the loading state")
	}
}

func TestModel_MachineList(t *testing.T) {
	m := loaded(t, sampleData())

	view := m.View()
	for _, want := range []string{"ID", "Name", "Status", "Press A", "Running", "Lathe B", "Idle", "Machine 3", "Fault"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if !strings.Contains(view, "Select a machine") {
		t.Error("log pane should prompt for a selection")
	}
}

func TestModel_MachineStates(t *testing.T) {
	data := sampleData()
	data.machinesErr = errors.New("Failed to fetch machines")
	m := loaded(t, data)
	if !strings.Contains(m.View(), "Failed to fetch machines") {
		t.Error("view should show the machine list error")
	}

	m = loaded(t, &fakeData{})
	if !strings.Contains(m.View(), "No machines found.") {
		t.Error("view should show the empty machine list")
	}
}

func TestModel_CursorMovement(t *testing.T) {
	m := loaded(t, sampleData())

	m.Update(keyMsg("up"))
	if m.cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.cursor)
	}
	m.Update(keyMsg("down"))
	m.Update(keyMsg("j"))
	m.Update(keyMsg("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	m.Update(keyMsg("k"))
	if got, _ := m.SelectedMachine(); got.ID != 2 {
		t.Errorf("selected machine = %d, want 2", got.ID)
	}
}

func manyMachines(n int) *fakeData {
	data := &fakeData{}
	for i := 1; i <= n; i++ {
		data.machines = append(data.machines, models.Machine{ID: i, Name: fmt.Sprintf("Mach-%02d", i), Status: models.StatusIdle})
	}
	return data
}

func TestModel_ListRendersEveryMachine(t *testing.T) {
	m := loaded(t, manyMachines(25))
	if m.list.Height >= 25 {
		t.Fatalf("list height %d should be smaller than the machine count", m.list.Height)
	}

	if got := strings.Count(m.renderMachineTable(), "Mach-"); got != 25 {
		t.Errorf("rendered rows = %d, want 25", got)
	}
	if got := m.list.TotalLineCount(); got != 25 {
		t.Errorf("list content lines = %d, want 25", got)
	}
	if !strings.Contains(m.View(), "Name") {
		t.Error("header should stay visible above the list")
	}
}

func TestModel_ListScrollsToCursor(t *testing.T) {
	m := loaded(t, manyMachines(25))

	for range 24 {
		m.Update(keyMsg("down"))
	}
	view := m.View()
	if !strings.Contains(view, "Mach-25") {
		t.Error("cursor row should be scrolled into view")
	}
	if strings.Contains(view, "Mach-01") {
		t.Error("first row should scroll out of view")
	}
	if !strings.Contains(view, "25 of 25") {
		t.Error("view should show the position")
	}

	for range 24 {
		m.Update(keyMsg("up"))
	}
	if m.list.YOffset != 0 || !strings.Contains(m.View(), "Mach-01") {
		t.Errorf("list should scroll back to the top, offset %d", m.list.YOffset)
	}
}

func TestModel_ViewLogs(t *testing.T) {
	data := sampleData()
	m := loaded(t, data)

	_, cmd := m.Update(keyMsg("enter"))
	if m.selectedID != 1 || !m.logs.Loading {
		t.Fatal("enter should select the machine and load its logs")
	}
	if !strings.Contains(m.View(), "Loading logs…") {
		t.Error("view should show the loading logs state")
	}

	run(t, m, cmd)
	view := m.View()
	for _, want := range []string{"Logs (Machine 1)", "Timestamp", "Message", "101", "Spindle started", "Overheat"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if len(data.logCalls) != 1 || data.logCalls[0] != 1 {
		t.Errorf("log calls = %v", data.logCalls)
	}
}

func TestModel_ViewLogsMachineZero(t *testing.T) {
	ts := models.NewTimestamp(time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC))
	data := &fakeData{
		machines: []models.Machine{{ID: 0, Name: "Bootstrap", Status: models.StatusRunning}},
		logs: map[int][]models.LogEntry{
			0: {{ID: 7, Timestamp: ts, Message: "Commissioned", Type: "INFO"}},
		},
	}
	m := loaded(t, data)

	_, cmd := m.Update(keyMsg("enter"))
	run(t, m, cmd)
	if len(data.logCalls) != 1 || data.logCalls[0] != 0 {
		t.Errorf("log calls = %v", data.logCalls)
	}
	view := m.View()
	if !strings.Contains(view, "Logs (Machine 0)") || !strings.Contains(view, "Commissioned") {
		t.Error("logs for machine 0 should be shown")
	}

	m.Update(keyMsg("f"))
	if m.focus != paneLogs {
		t.Error("logs pane should be focusable for machine 0")
	}
}

func TestModel_ViewLogsIgnoredWhileLoading(t *testing.T) {
	data := sampleData()
	m := loaded(t, data)

	_, first := m.Update(keyMsg("enter"))
	m.Update(keyMsg("down"))
	if _, cmd := m.Update(keyMsg("enter")); cmd != nil {
		t.Error("a second request must not start while logs are loading")
	}
	if m.selectedID != 1 {
		t.Errorf("selection changed to %d while loading", m.selectedID)
	}

	run(t, m, first)
	_, cmd := m.Update(keyMsg("enter"))
	run(t, m, cmd)
	if m.selectedID != 2 {
		t.Errorf("selected = %d, want 2", m.selectedID)
	}
	if !strings.Contains(m.View(), "No logs.") {
		t.Error("view should show the empty log state")
	}
}

func TestModel_LogErrorScopedToPane(t *testing.T) {
	data := sampleData()
	data.logsErr = errors.New("Failed to fetch logs")
	m := loaded(t, data)

	_, cmd := m.Update(keyMsg("enter"))
	run(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "Failed to fetch logs") {
		t.Error("view should show the logs error")
	}
	if !strings.Contains(view, "Press A") {
		t.Error("machine list should still render")
	}
	if m.machines.Err != nil {
		t.Error("logs error leaked into the machine list")
	}
}

func TestModel_FocusSwitch(t *testing.T) {
	m := loaded(t, sampleData())

	m.Update(keyMsg("f"))
	if m.focus != paneMachines {
		t.Error("logs pane cannot be focused before a machine is selected")
	}

	_, cmd := m.Update(keyMsg("enter"))
	run(t, m, cmd)
	m.Update(keyMsg("f"))
	if m.focus != paneLogs || !m.logsTable.Focused() {
		t.Fatal("f should focus the logs pane")
	}

	m.Update(keyMsg("down"))
	if m.cursor != 0 {
		t.Error("navigation keys belong to the logs pane while focused")
	}
	if m.logsTable.Cursor() != 1 {
		t.Errorf("log cursor = %d, want 1", m.logsTable.Cursor())
	}

	m.Update(keyMsg("f"))
	if m.focus != paneMachines || m.logsTable.Focused() {
		t.Error("f should return focus to the machine list")
	}
}

func TestModel_Refresh(t *testing.T) {
	m := loaded(t, sampleData())
	_, cmd := m.Update(keyMsg("r"))
	if cmd == nil || !m.machines.Loading {
		t.Fatal("refresh should reload machines")
	}
}

func TestModel_RefreshClampsCursor(t *testing.T) {
	data := sampleData()
	m := loaded(t, data)
	m.cursor = 2

	data.machines = data.machines[:1]
	_, cmd := m.Update(keyMsg("r"))
	run(t, m, cmd)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), sampleData())
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings missing")
	}
	m.SetSize(120, 50)
	if !strings.Contains(m.View(), "view logs") {
		t.Error("footer should list shortcuts")
	}
}
