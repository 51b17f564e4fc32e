package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reset clears the package state between tests.
func reset() {
	k.initialized.Store(false)
	k.readOnly.Store(false)
	k.watcher = nil
}

func TestInitSettings_FirstRun(t *testing.T) {
	reset()
	tempDir := t.TempDir()

	require.NoError(t, InitSettings(tempDir))

	assert.Equal(t, "en-US", GetString(LocaleKey), "default locale should be set")
	_, err := os.Stat(filepath.Join(tempDir, settingsFileName))
	assert.NoError(t, err, "settings file should be created")
}

func TestInitSettings_ExistingFile(t *testing.T) {
	reset()
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, settingsFileName)
	content := []byte(`{"locale": "pt-BR", "email": "user@example.com", "file_path": "` + path + `"}`)
	require.NoError(t, os.WriteFile(path, content, 0600))

	require.NoError(t, InitSettings(tempDir))

	assert.Equal(t, "pt-BR", GetString(LocaleKey))
	assert.Equal(t, "user@example.com", GetString(EmailKey))
}

func TestSetPersists(t *testing.T) {
	reset()
	tempDir := t.TempDir()
	require.NoError(t, InitSettings(tempDir))

	require.NoError(t, Set(UserIDKey, "usr_123"))

	reset()
	require.NoError(t, InitSettings(tempDir))
	assert.Equal(t, "usr_123", GetString(UserIDKey))
}

func TestDelete(t *testing.T) {
	reset()
	tempDir := t.TempDir()
	require.NoError(t, InitSettings(tempDir))

	require.NoError(t, Set(SessionTokenKey, "tok"))
	require.NoError(t, Set(EmailKey, "user@example.com"))
	require.NoError(t, Delete(SessionTokenKey, EmailKey))

	assert.Empty(t, GetString(SessionTokenKey))
	assert.Empty(t, GetString(EmailKey))
}

func TestReadOnly(t *testing.T) {
	reset()
	tempDir := t.TempDir()
	require.NoError(t, InitSettings(tempDir))
	require.NoError(t, Set(LocaleKey, "de-DE"))

	reset()
	require.NoError(t, InitReadOnly(tempDir, false))
	assert.Equal(t, "de-DE", GetString(LocaleKey))
	assert.ErrorIs(t, Set(LocaleKey, "fr-FR"), ErrReadOnly)
	assert.ErrorIs(t, Delete(LocaleKey), ErrReadOnly)
}

func TestInitReadOnly_MissingFile(t *testing.T) {
	reset()
	assert.Error(t, InitReadOnly(t.TempDir(), false))
}
