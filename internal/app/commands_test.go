package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/factory-dashboard-tui/internal/services"
)

func TestTickCmd(t *testing.T) {
	if tickCmd(time.Millisecond) == nil {
		t.Error("tickCmd returned nil")
	}
	if defaultTickCmd() == nil {
		t.Error("defaultTickCmd returned nil")
	}
}

func TestNotifyCommands(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", NotifySuccess, NotificationSuccess},
		{"Error", NotifyError, NotificationError},
		{"Warning", NotifyWarning, NotificationWarning},
		{"Info", NotifyInfo, NotificationInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration <= 0 {
				t.Error("Duration should be positive")
			}
		})
	}
}

func TestAlertCmd(t *testing.T) {
	msg := Alert("stop")()
	alert, ok := msg.(AlertMsg)
	if !ok {
		t.Fatalf("Expected AlertMsg, got %T", msg)
	}
	if alert.Message != "stop" {
		t.Errorf("Message = %q", alert.Message)
	}
}

func TestLoadingCmds(t *testing.T) {
	if msg, ok := StartLoading("Downloading")().(StartLoadingMsg); !ok || msg.Label != "Downloading" {
		t.Errorf("StartLoading produced %#v", msg)
	}
	if _, ok := StopLoading()().(StopLoadingMsg); !ok {
		t.Error("StopLoading should produce StopLoadingMsg")
	}
}

func TestWaitForServiceEventCmd(t *testing.T) {
	ch := make(chan services.ServiceEvent, 1)
	ch <- services.SessionChangedEvent{LoggedIn: true}

	msg := waitForServiceEventCmd(ch)()
	evt, ok := msg.(ServiceEventMsg)
	if !ok {
		t.Fatalf("Expected ServiceEventMsg, got %T", msg)
	}
	if _, ok := evt.Event.(services.SessionChangedEvent); !ok {
		t.Errorf("Event = %T", evt.Event)
	}

	close(ch)
	if msg := waitForServiceEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}
}

func TestClearNotificationCmd(t *testing.T) {
	msg := clearNotificationCmd("n1", time.Millisecond)()
	rm, ok := msg.(RemoveNotificationMsg)
	if !ok || rm.ID != "n1" {
		t.Errorf("got %#v", msg)
	}
}
