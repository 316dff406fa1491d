package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements TokenStore using a single-row SQLite table with the
// session encrypted at rest.
type SQLiteStore struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based token store.
// The dbPath is the path to the SQLite database file.
// The encryptionKey is used to encrypt/decrypt the session blob.
func NewSQLiteStore(dbPath string, encryptionKey []byte) (*SQLiteStore, error) {
	// WAL mode and busy timeout so the keepalive service and the CLI can
	// share the file.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Tighten permissions; the file may not exist until the first write.
	_ = os.Chmod(dbPath, 0600)

	store := &SQLiteStore{
		db:            db,
		encryptionKey: encryptionKey,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		encrypted_session TEXT NOT NULL,
		last_updated DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create session table: %w", err)
	}

	return nil
}

// Save stores or replaces the session. The whole session is one encrypted
// blob, so readers see either all of it or none of it.
func (s *SQLiteStore) Save(session Session) error {
	if !session.Complete() {
		return ErrIncompleteSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(&session)
}

// SetAccessToken replaces the access token in the persisted session.
func (s *SQLiteStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.read()
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoSession
	}

	session.AccessToken = token
	return s.write(session)
}

// Get retrieves the session. Returns nil, nil if none is stored.
func (s *SQLiteStore) Get() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Clear removes the session. No-op when the store is empty.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM session WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) read() (*Session, error) {
	var encrypted string
	err := s.db.QueryRow("SELECT encrypted_session FROM session WHERE id = 1").Scan(&encrypted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	sessionJSON, err := Decrypt(encrypted, s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// A blob missing a token is treated as no session at all.
	if !session.Complete() {
		return nil, nil
	}

	return &session, nil
}

func (s *SQLiteStore) write(session *Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	encrypted, err := Encrypt(sessionJSON, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO session (id, encrypted_session, last_updated)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			encrypted_session = excluded.encrypted_session,
			last_updated = excluded.last_updated
	`, encrypted, time.Now())

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}
