package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_ListAndFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sync.vtt"), []byte("WEBVTT"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.vtt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	candidates, err := store.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	names := []string{candidates[0].Name, candidates[1].Name}
	assert.Contains(t, names, "sync.vtt")
	assert.Contains(t, names, "archive")

	path, err := store.ResolveDownloadURL(context.Background(), "sync.vtt")
	require.NoError(t, err)
	require.NotEmpty(t, path)

	text, err := store.FetchText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT", text)
}

func TestLocalStore_MissingFileResolvesEmpty(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.ResolveDownloadURL(context.Background(), "nope.vtt")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestNewLocalStore_RejectsMissingDir(t *testing.T) {
	_, err := NewLocalStore("/does/not/exist")
	assert.Error(t, err)
}
