// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/factory-dashboard-tui/internal/session"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the UI state shared by the root model and the tabs.
// It never holds fetched API data; each view owns its own.
type State struct {
	mu sync.RWMutex

	user  *session.User
	alert string

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
	}
}

// SetUser records the signed-in user; nil means signed out.
func (s *State) SetUser(user *session.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// User returns the signed-in user or nil.
func (s *State) User() *session.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetAlert shows a blocking alert. An empty message dismisses it.
func (s *State) SetAlert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = message
}

// Alert returns the pending alert message.
func (s *State) Alert() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alert
}

// HasAlert reports whether an alert is waiting to be dismissed.
func (s *State) HasAlert() bool {
	return s.Alert() != ""
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "n" + strconv.Itoa(s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = activeNotifications(s.notifications)
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotifications(s.notifications)
}

// SetLoadingNotification sets or replaces the loading notification.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

func activeNotifications(all []Notification) []Notification {
	active := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}
