package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/models"
)

func testSession() models.Session {
	return models.Session{
		Token: "tok-123",
		User: models.User{
			ID:       7,
			Email:    "user@example.com",
			Username: "user",
			Role:     models.RoleOrganizer,
		},
	}
}

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFreshStoreIsUnauthenticated(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	assert.False(t, s.Authenticated())
	assert.Nil(t, s.Current())
	assert.Empty(t, s.Token())
	assert.Empty(t, s.Role())
}

func TestSetSession(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	require.NoError(t, s.SetSession(testSession()))

	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok-123", s.Token())
	assert.Equal(t, models.RoleOrganizer, s.Role())

	user := s.Current()
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s := openStore(t, path)
	require.NoError(t, s.SetSession(testSession()))
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	assert.True(t, reopened.Authenticated())
	assert.Equal(t, "tok-123", reopened.Token())

	user := reopened.Current()
	require.NotNil(t, user)
	assert.Equal(t, models.RoleOrganizer, user.Role)
}

func TestLogoutClearsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s := openStore(t, path)
	require.NoError(t, s.SetSession(testSession()))
	s.Logout()

	assert.False(t, s.Authenticated())
	assert.Nil(t, s.Current())
	require.NoError(t, s.Close())

	// Cleared state stays cleared across a restart.
	reopened := openStore(t, path)
	assert.False(t, reopened.Authenticated())
}

func TestListenersRunSynchronously(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	require.NoError(t, s.SetSession(testSession()))

	// Delivery happened before SetSession returned.
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Authenticated)
	require.NotNil(t, changes[0].User)
	assert.Equal(t, models.RoleOrganizer, changes[0].User.Role)

	s.Logout()
	require.Len(t, changes, 2)
	assert.False(t, changes[1].Authenticated)

	unsubscribe()
	require.NoError(t, s.SetSession(testSession()))
	assert.Len(t, changes, 2)
}

func TestCorruptPersistedStateDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s := openStore(t, path)
	require.NoError(t, s.SetSession(testSession()))

	// Mangle the stored user record behind the store's back.
	_, err := s.db.Exec(`UPDATE session_state SET value = 'not-json' WHERE key = 'user'`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// The corrupt record is discarded and cleared, not half-restored.
	reopened := openStore(t, path)
	assert.False(t, reopened.Authenticated())
	assert.Nil(t, reopened.Current())

	var count int
	require.NoError(t, reopened.db.QueryRow(`SELECT COUNT(*) FROM session_state`).Scan(&count))
	assert.Zero(t, count)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, s.SetSession(testSession()))

	u := s.Current()
	u.Role = models.RoleAdmin

	assert.Equal(t, models.RoleOrganizer, s.Role())
}
