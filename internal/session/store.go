// Package session provides the file-backed login session with change notifications.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
)

// User is the signed-in identity returned by the login endpoint.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the persisted authentication state.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Change is delivered to subscribers whenever the session is saved or cleared.
// Session is nil after a clear.
type Change struct {
	Session *Session
}

// LoggedIn reports whether the change left a usable token behind.
func (c Change) LoggedIn() bool {
	return c.Session != nil && c.Session.Token != ""
}

// Store persists the session under a single JSON file and fans out changes.
type Store struct {
	mu          sync.Mutex
	path        string
	subscribers []chan Change
	closed      bool
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Save persists token and user together and notifies subscribers.
func (s *Store) Save(token string, user *User) error {
	sess := &Session{Token: token, User: user}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	// Write to temp file first, then rename
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.notify(Change{Session: sess})
	return nil
}

// Clear removes the persisted session. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	s.notify(Change{})
	return nil
}

// Read returns the stored session, or nil when nothing usable is stored.
// Malformed or unreadable content is treated as absent.
func (s *Store) Read() *Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to read session", "path", s.path, "error", err)
		}
		return nil
	}

	var sess *Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logger.Warn("ignoring malformed session", "path", s.path, "error", err)
		return nil
	}
	if sess == nil || (sess.Token == "" && sess.User == nil) {
		return nil
	}
	return sess
}

// Token returns the stored token or "".
func (s *Store) Token() string {
	if sess := s.Read(); sess != nil {
		return sess.Token
	}
	return ""
}

// User returns the stored user or nil.
func (s *Store) User() *User {
	if sess := s.Read(); sess != nil {
		return sess.User
	}
	return nil
}

// Subscribe registers a channel that receives every subsequent change.
func (s *Store) Subscribe() chan Change {
	ch := make(chan Change, 8)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (s *Store) Unsubscribe(ch chan Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close closes all subscriber channels. Later subscriptions are closed immediately.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscribers {
		close(sub)
	}
	s.subscribers = nil
	s.closed = true
}

// notify sends a change to every subscriber without blocking.
func (s *Store) notify(change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscribers {
		select {
		case sub <- change:
		default:
			// Subscriber channel full, skip
		}
	}
}
