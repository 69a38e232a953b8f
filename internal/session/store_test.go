package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestStore_SaveRead(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("abc", &User{Username: "alice", Role: "admin"}))

	sess := s.Read()
	require.NotNil(t, sess)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, &User{Username: "alice", Role: "admin"}, sess.User)
	assert.Equal(t, "abc", s.Token())
	assert.Equal(t, "alice", s.User().Username)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "dir", "session.json"))
	require.NoError(t, s.Save("tok", &User{Username: "bob"}))
	assert.Equal(t, "tok", s.Token())
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("abc", &User{Username: "alice"}))

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Read())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestStore_ReadFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Malformed", "{not json"},
		{"Null", "null"},
		{"Empty", ""},
		{"EmptyObject", "{}"},
		{"WrongShape", `["token"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o600))

			assert.Nil(t, s.Read())
			assert.Empty(t, s.Token())
			assert.Nil(t, s.User())
		})
	}
}

func TestStore_ReadMissing(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.Read())
}

func TestStore_ReadTokenOnly(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"token":"t"}`), 0o600))

	assert.Equal(t, "t", s.Token())
	assert.Nil(t, s.User())
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t)
	ch := s.Subscribe()

	require.NoError(t, s.Save("abc", &User{Username: "alice"}))
	change := <-ch
	assert.True(t, change.LoggedIn())
	assert.Equal(t, "alice", change.Session.User.Username)

	require.NoError(t, s.Clear())
	change = <-ch
	assert.False(t, change.LoggedIn())
	assert.Nil(t, change.Session)

	s.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")

	// No panic when notifying after unsubscribe.
	require.NoError(t, s.Save("x", nil))
}

func TestStore_NotifyDoesNotBlock(t *testing.T) {
	s := newTestStore(t)
	ch := s.Subscribe()

	for range cap(ch) + 5 {
		require.NoError(t, s.Clear())
	}
	assert.Len(t, ch, cap(ch))
}

func TestStore_Close(t *testing.T) {
	s := newTestStore(t)
	a := s.Subscribe()
	b := s.Subscribe()

	s.Close()

	_, okA := <-a
	_, okB := <-b
	assert.False(t, okA)
	assert.False(t, okB)

	late := s.Subscribe()
	_, ok := <-late
	assert.False(t, ok, "subscriptions after close are closed")
}
