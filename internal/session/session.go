// Package session is the authenticated-identity provider: it answers
// "who is signed in" for the rest of the client and keeps the answer
// across restarts via the snapshot store.
package session

import (
	"errors"
	"fmt"
	"sync"

	"letstalk/internal/models"
	"letstalk/internal/store"
)

const statusLogin = "login"

// storage is the slice of the snapshot store the manager needs.
type storage interface {
	SaveSession(sess store.Session) error
	LoadSession() (store.Session, error)
	ClearSession() error
}

// Manager tracks the signed-in user.
type Manager struct {
	store storage

	mu     sync.RWMutex
	userID string
	status string
}

// New loads any persisted identity. A missing record is a signed-out
// state, not an error.
func New(st storage) (*Manager, error) {
	m := &Manager{store: st}

	rec, err := st.LoadSession()
	switch {
	case err == nil:
		m.userID = rec.UserID
		m.status = rec.Status
	case errors.Is(err, models.ErrNotFound):
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}
	return m, nil
}

// SignIn persists the identity for the given user id.
func (m *Manager) SignIn(userID string) error {
	if err := m.store.SaveSession(store.Session{UserID: userID, Status: statusLogin}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	m.userID = userID
	m.status = statusLogin
	m.mu.Unlock()
	return nil
}

// SignOut clears the persisted identity.
func (m *Manager) SignOut() error {
	if err := m.store.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.mu.Lock()
	m.userID = ""
	m.status = ""
	m.mu.Unlock()
	return nil
}

// UserID returns the signed-in user id, empty when signed out.
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// SignedIn reports whether a user is signed in.
func (m *Manager) SignedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID != "" && m.status == statusLogin
}
