package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/factory-dashboard-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// waitForServiceEventCmd returns a command that waits for the next service event.
// A closed channel ends the loop.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// NotifySuccess returns a command that adds a success toast.
func NotifySuccess(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// NotifyError returns a command that adds an error toast.
func NotifyError(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// NotifyWarning returns a command that adds a warning toast.
func NotifyWarning(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// NotifyInfo returns a command that adds an info toast.
func NotifyInfo(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Alert returns a command that raises a blocking alert.
func Alert(message string) tea.Cmd {
	return func() tea.Msg {
		return AlertMsg{Message: message}
	}
}

// StartLoading returns a command that shows the loading toast.
func StartLoading(label string) tea.Cmd {
	return func() tea.Msg {
		return StartLoadingMsg{Label: label}
	}
}

// StopLoading returns a command that hides the loading toast.
func StopLoading() tea.Cmd {
	return func() tea.Msg {
		return StopLoadingMsg{}
	}
}
