package app

import (
	"testing"
	"time"

	"github.com/j-veylop/factory-dashboard-tui/internal/session"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.User() != nil {
		t.Error("User should be nil")
	}
	if s.HasAlert() {
		t.Error("Alert should be empty")
	}
}

func TestState_User(t *testing.T) {
	s := NewState()

	s.SetUser(&session.User{Username: "alice", Role: "admin"})
	if got := s.User(); got == nil || got.Username != "alice" {
		t.Errorf("User = %+v, want alice", got)
	}

	s.SetUser(nil)
	if s.User() != nil {
		t.Error("User should be cleared")
	}
}

func TestState_Alert(t *testing.T) {
	s := NewState()

	s.SetAlert("Please log in")
	if !s.HasAlert() {
		t.Fatal("HasAlert should be true")
	}
	if s.Alert() != "Please log in" {
		t.Errorf("Alert = %q", s.Alert())
	}

	s.SetAlert("")
	if s.HasAlert() {
		t.Error("Alert should be dismissed")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationIDsUnique(t *testing.T) {
	s := NewState()
	seen := make(map[string]bool)
	for range 5 {
		id := s.AddNotification(NotificationInfo, "x", 0)
		if seen[id] {
			t.Fatalf("duplicate ID %s", id)
		}
		seen[id] = true
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState()
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "x", 0)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("len = %d, want %d", got, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
