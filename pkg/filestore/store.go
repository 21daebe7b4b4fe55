// Package filestore abstracts listing and downloading transcripts from a
// document store. The pipeline depends only on the Store interface; a
// Microsoft Graph drive implementation and a local-directory
// implementation live alongside it.
package filestore

import (
	"context"
	"time"
)

// Candidate is one listable item in the store.
type Candidate struct {
	ID        string
	Name      string
	SizeBytes int64
	IsFolder  bool

	// WebURL is the platform-native view link, when the store has one.
	WebURL string

	// CreatedAt is the capture date; zero when unknown.
	CreatedAt time.Time
}

// Store lists transcript candidates and fetches their content.
type Store interface {
	// ListCandidates returns the items in the configured container.
	ListCandidates(ctx context.Context) ([]Candidate, error)

	// ResolveDownloadURL returns a fetchable location for the item, or
	// "" when the store has none for it.
	ResolveDownloadURL(ctx context.Context, itemID string) (string, error)

	// FetchText downloads the content at url as text.
	FetchText(ctx context.Context, url string) (string, error)
}
