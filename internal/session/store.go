// Package session holds the authenticated identity for the lifetime of a
// client session. It is the single writer of identity state: the auth flow
// records login results here, everything else reads. State is persisted to a
// local sqlite file so a session survives restarts, the way the browser app
// kept token/role/userId in local storage.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"eventdesk/internal/logger"
	"eventdesk/internal/models"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path string
}

// Change is delivered to subscribers on every login and logout.
type Change struct {
	Authenticated bool
	User          *models.User
}

// Listener receives session changes. Listeners are invoked synchronously so
// role-gated views never render against a stale identity.
type Listener func(Change)

type Store struct {
	mu        sync.RWMutex
	db        *sql.DB
	token     string
	user      *models.User
	listeners map[int]Listener
	nextSub   int
}

// Open loads any persisted session from the sqlite file at cfg.Path, creating
// the file and schema on first use.
func Open(cfg Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	// Single connection avoids "database is locked" on concurrent writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init session schema: %w", err)
	}

	s := &Store{
		db:        db,
		listeners: make(map[int]Listener),
	}
	s.restore()
	return s, nil
}

// restore loads persisted state. A corrupt or partial record clears the
// session rather than restoring half an identity.
func (s *Store) restore() {
	state := make(map[string]string)
	rows, err := s.db.Query(`SELECT key, value FROM session_state`)
	if err != nil {
		return
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return
		}
		state[k] = v
	}
	if err := rows.Err(); err != nil {
		// A partial key set must not restore half an identity.
		logger.Get().Warn("Discarding unreadable persisted session", "error", err)
		s.clearPersisted()
		return
	}

	token, user := state["token"], state["user"]
	if token == "" || user == "" {
		return
	}

	var u models.User
	if err := json.Unmarshal([]byte(user), &u); err != nil {
		logger.Get().Warn("Discarding unreadable persisted session", "error", err)
		s.clearPersisted()
		return
	}

	s.token = token
	s.user = &u
}

// SetSession records a successful login and notifies subscribers.
func (s *Store) SetSession(sess models.Session) error {
	s.mu.Lock()
	s.token = sess.Token
	u := sess.User
	s.user = &u
	err := s.persist(sess)
	s.mu.Unlock()

	s.notify(Change{Authenticated: true, User: &u})
	return err
}

func (s *Store) persist(sess models.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		"token":   sess.Token,
		"role":    string(sess.User.Role),
		"user_id": strconv.FormatInt(sess.User.ID, 10),
		"user":    string(userJSON),
	}
	for k, v := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO session_state (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	return tx.Commit()
}

// Logout clears all session state unconditionally. Persistence failures are
// logged, never surfaced: the in-memory identity is gone regardless.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.clearPersisted()
	s.mu.Unlock()

	s.notify(Change{Authenticated: false})
}

func (s *Store) clearPersisted() {
	if _, err := s.db.Exec(`DELETE FROM session_state`); err != nil {
		logger.Get().Warn("Failed to clear persisted session", "error", err)
	}
}

// Current returns the cached identity, or nil when not authenticated.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token for the current session, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Role returns the current role, or "" when not authenticated.
func (s *Store) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Subscribe registers a listener for session changes. The returned function
// removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.RUnlock()

	for _, l := range ls {
		l(c)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
