// Package session holds the authenticated user and bearer token, loaded once
// at startup from durable storage and written through on login, register,
// and logout.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/fastorder/storefront/internal/auth"
	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/model"
	"github.com/fastorder/storefront/internal/storage"
)

// Session is the current user's identity as persisted under the "user" key.
type Session struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Manager is the single writer for session state in this process.
type Manager struct {
	mu    sync.RWMutex
	store storage.Store
	sess  *Session
	token string
}

// NewManager restores any persisted session. A token without a readable user
// record (or vice versa) is treated as logged out and cleaned up.
func NewManager(store storage.Store) *Manager {
	m := &Manager{store: store}

	token, hasToken := store.Get(storage.KeyToken)
	rawUser, hasUser := store.Get(storage.KeyUser)
	if !hasToken || !hasUser {
		if hasToken || hasUser {
			m.wipe()
		}
		return m
	}

	var sess Session
	if err := json.Unmarshal([]byte(rawUser), &sess); err != nil {
		log.Printf("ERROR: discarding unreadable persisted session: %v", err)
		m.wipe()
		return m
	}
	if _, err := auth.ParseUnverified(token); err != nil {
		log.Printf("ERROR: discarding unreadable persisted token: %v", err)
		m.wipe()
		return m
	}

	m.token = token
	m.sess = &sess
	return m
}

// Begin stores a fresh login or registration result.
func (m *Manager) Begin(token string, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := Session{UserID: user.ID, Name: user.Name, Role: user.Role}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(storage.KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.Set(storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	m.token = token
	m.sess = &sess
	return nil
}

// Clear forgets the session in memory and in storage. Used on logout and on
// any 401 from the backend. The caller is responsible for clearing the cart
// alongside (they are always cleared together).
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	m.token = ""
	m.wipe()
}

// Current returns the session and whether anyone is logged in.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return Session{}, false
	}
	return *m.sess, true
}

// Token returns the bearer token, or "" when logged out. Satisfies the API
// client's TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsAdmin reports whether the current user holds the admin role.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess != nil && m.sess.Role == enum.RoleAdmin
}

func (m *Manager) wipe() {
	if err := m.store.Delete(storage.KeyToken); err != nil {
		log.Printf("ERROR: delete token: %v", err)
	}
	if err := m.store.Delete(storage.KeyUser); err != nil {
		log.Printf("ERROR: delete user: %v", err)
	}
}
