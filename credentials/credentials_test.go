package credentials

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("RECAP_CONFIG_DIR", t.TempDir())
	t.Setenv("RECAP_ENCRYPTION_KEY", testKeyHex)

	store, err := NewStore()
	require.NoError(t, err)
	return store
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&Credentials{
		GeminiAPIKey: "AIzaSy-test-key-1234",
		GraphToken:   "eyJhbGciOi-test-token",
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "AIzaSy-test-key-1234", loaded.GeminiAPIKey)
	assert.Equal(t, "eyJhbGciOi-test-token", loaded.GraphToken)
	assert.False(t, loaded.LastUpdated.IsZero())
}

func TestStore_SecretsEncryptedAtRest(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&Credentials{GeminiAPIKey: "super-secret-value"}))

	path, err := CredentialsPath()
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-value")
}

func TestStore_LoadMissingReturnsErrNoCredentials(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&Credentials{GeminiAPIKey: "key"}))
	assert.True(t, store.Exists())

	require.NoError(t, store.Delete())
	assert.False(t, store.Exists())

	// Deleting again is not an error.
	require.NoError(t, store.Delete())
}

func TestStore_WrongKeyFailsToDecrypt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECAP_CONFIG_DIR", dir)
	t.Setenv("RECAP_ENCRYPTION_KEY", testKeyHex)

	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Save(&Credentials{GeminiAPIKey: "key"}))

	otherKey := make([]byte, 32)
	otherKey[0] = 0xff
	t.Setenv("RECAP_ENCRYPTION_KEY", hex.EncodeToString(otherKey))

	other, err := NewStore()
	require.NoError(t, err)
	_, err = other.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncryptionFailed)
}

func TestStore_GeminiKeyPrefersEnvironment(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Credentials{GeminiAPIKey: "stored-key"}))

	t.Setenv("RECAP_GEMINI_API_KEY", "env-key")
	key, err := store.GeminiKey()
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)
}

func TestStore_GraphTokenFromStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Credentials{GraphToken: "stored-token"}))

	token, err := store.GraphToken()
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
}

func TestCredentialsDir_EnvOverride(t *testing.T) {
	t.Setenv("RECAP_CONFIG_DIR", "/tmp/recap-creds")

	dir, err := CredentialsDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/recap-creds", dir)

	path, err := CredentialsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/recap-creds", DefaultCredentialsFile), path)
}

func TestMaskCredential(t *testing.T) {
	assert.Equal(t, "****", MaskCredential("abcd"))
	masked := MaskCredential("AIzaSy-example-credential")
	assert.Equal(t, "AIza", masked[:4])
	assert.Contains(t, masked, "****")
	assert.Equal(t, "tial", masked[len(masked)-4:])
}
