package app

import (
	"time"

	"github.com/j-veylop/factory-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// StartLoadingMsg shows the loading toast with a label.
type StartLoadingMsg struct {
	Label string
}

// StopLoadingMsg hides the loading toast.
type StopLoadingMsg struct{}

// AlertMsg shows a blocking alert that is dismissed by any key.
type AlertMsg struct {
	Message string
}

// AlertDismissedMsg is delivered to every tab after an alert is closed.
type AlertDismissedMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
// It is delivered to the root model and to every tab.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}
