package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, dbPath string) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(dbPath, DeriveKey("test-passphrase"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")
	exerciseTokenStore(t, newTestSQLiteStore(t, dbPath))
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")

	first := newTestSQLiteStore(t, dbPath)
	require.NoError(t, first.Save(testSession()))
	require.NoError(t, first.Close())

	second := newTestSQLiteStore(t, dbPath)
	session, err := second.Get()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, testSession(), *session)
}

func TestSQLiteStoreWrongKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")

	first := newTestSQLiteStore(t, dbPath)
	require.NoError(t, first.Save(testSession()))
	require.NoError(t, first.Close())

	other, err := NewSQLiteStore(dbPath, DeriveKey("different-passphrase"))
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Get()
	assert.Error(t, err, "a different key must not decrypt the session")
}

func TestSQLiteStoreTokensEncryptedAtRest(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")

	s := newTestSQLiteStore(t, dbPath)
	require.NoError(t, s.Save(testSession()))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), testSession().AccessToken)
	assert.NotContains(t, string(raw), testSession().RefreshToken)
}
