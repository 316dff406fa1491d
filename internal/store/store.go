// Package store persists the admin session (access token, refresh token and
// the cached user profile) across process restarts. A session is stored as a
// single blob so consumers can never observe a partially written one.
package store

import "sync"

// Role is an authorization claim attached to a user.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserProfile is the denormalized user snapshot cached next to the tokens so
// the UI can read identity synchronously without decoding a token.
type UserProfile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Roles    []Role `json:"roles,omitempty"`
}

// Session is the unit of persistence: both tokens plus the profile. A session
// missing either token is not a session.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	Profile      UserProfile `json:"profile"`
}

// Complete reports whether the session has both tokens.
func (s *Session) Complete() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// TokenStore defines the interface for session persistence.
//
// Get returns nil, nil when no session exists. Backends that find a partial
// record (for example after a schema change) must also report nil rather than
// surface the fragment. Clear is a no-op when the store is already empty.
type TokenStore interface {
	// Save persists the session atomically. Incomplete sessions are rejected.
	Save(session Session) error

	// SetAccessToken replaces only the access token, leaving the refresh
	// token and profile as issued. Fails when no session exists.
	SetAccessToken(token string) error

	// Get retrieves the current session, or nil, nil if there is none.
	Get() (*Session, error)

	// Clear removes the session. Safe to call when no session exists.
	Clear() error
}

// MemoryStore is an in-process TokenStore. It backs tests and short-lived
// tools that have no use for durable storage.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(session Session) error {
	if !session.Complete() {
		return ErrIncompleteSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &session
	return nil
}

func (m *MemoryStore) SetAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ErrNoSession
	}
	updated := *m.session
	updated.AccessToken = token
	m.session = &updated
	return nil
}

func (m *MemoryStore) Get() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.session.Complete() {
		return nil, nil
	}
	session := *m.session
	return &session, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
