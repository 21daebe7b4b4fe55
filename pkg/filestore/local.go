package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Transcript file extensions the local store recognizes.
var transcriptExtensions = map[string]bool{
	".vtt": true,
	".srt": true,
	".txt": true,
}

// LocalStore implements Store over a local directory. It backs the watch
// command and makes the pipeline runnable without a document store.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a Store over the given directory.
func NewLocalStore(dir string) (*LocalStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening transcript directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &LocalStore{dir: dir}, nil
}

// ListCandidates lists transcript files in the directory.
func (s *LocalStore) ListCandidates(ctx context.Context) ([]Candidate, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			candidates = append(candidates, Candidate{ID: e.Name(), Name: e.Name(), IsFolder: true})
			continue
		}
		if !transcriptExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		c := Candidate{ID: e.Name(), Name: e.Name()}
		if info, err := e.Info(); err == nil {
			c.SizeBytes = info.Size()
			c.CreatedAt = info.ModTime()
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// ResolveDownloadURL returns the absolute file path, or "" when the file
// does not exist.
func (s *LocalStore) ResolveDownloadURL(ctx context.Context, itemID string) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(itemID))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

// FetchText reads the file at the given path.
func (s *LocalStore) FetchText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	return string(data), nil
}
