package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGraphBaseURL is the Microsoft Graph endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// maxFetchBytes bounds a single transcript download.
const maxFetchBytes = 32 << 20

// TokenProvider supplies a bearer token for Graph calls.
type TokenProvider func(ctx context.Context) (string, error)

// GraphStore implements Store against a SharePoint/OneDrive drive via
// Microsoft Graph.
type GraphStore struct {
	baseURL string
	driveID string
	folder  string
	token   TokenProvider
	client  *http.Client
}

// GraphConfig configures a GraphStore.
type GraphConfig struct {
	// BaseURL overrides the Graph endpoint (tests); defaults to
	// DefaultGraphBaseURL.
	BaseURL string

	// DriveID identifies the drive holding the transcripts.
	DriveID string

	// Folder is the drive-relative folder path; "" means the drive root.
	Folder string

	// Token supplies the bearer token per call.
	Token TokenProvider

	// HTTPClient overrides the transport; defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// NewGraphStore creates a Graph-backed Store.
func NewGraphStore(cfg GraphConfig) (*GraphStore, error) {
	if cfg.DriveID == "" {
		return nil, fmt.Errorf("drive id is required")
	}
	if cfg.Token == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultGraphBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GraphStore{
		baseURL: strings.TrimRight(base, "/"),
		driveID: cfg.DriveID,
		folder:  strings.Trim(cfg.Folder, "/"),
		token:   cfg.Token,
		client:  client,
	}, nil
}

// driveItem is the subset of the Graph driveItem resource we read.
type driveItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Size            int64     `json:"size"`
	WebURL          string    `json:"webUrl"`
	CreatedDateTime time.Time `json:"createdDateTime"`
	Folder          *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	DownloadURL string `json:"@microsoft.graph.downloadUrl"`
}

type listResponse struct {
	Value []driveItem `json:"value"`
}

// ListCandidates lists the children of the configured folder.
func (s *GraphStore) ListCandidates(ctx context.Context) ([]Candidate, error) {
	endpoint := fmt.Sprintf("%s/drives/%s/root/children", s.baseURL, s.driveID)
	if s.folder != "" {
		endpoint = fmt.Sprintf("%s/drives/%s/root:/%s:/children",
			s.baseURL, s.driveID, escapePath(s.folder))
	}

	var list listResponse
	if err := s.getJSON(ctx, endpoint, &list); err != nil {
		return nil, fmt.Errorf("listing drive items: %w", err)
	}

	candidates := make([]Candidate, 0, len(list.Value))
	for _, item := range list.Value {
		candidates = append(candidates, Candidate{
			ID:        item.ID,
			Name:      item.Name,
			SizeBytes: item.Size,
			IsFolder:  item.Folder != nil,
			WebURL:    item.WebURL,
			CreatedAt: item.CreatedDateTime,
		})
	}
	return candidates, nil
}

// ResolveDownloadURL returns the item's pre-authenticated download URL,
// or "" when Graph reports none.
func (s *GraphStore) ResolveDownloadURL(ctx context.Context, itemID string) (string, error) {
	endpoint := fmt.Sprintf("%s/drives/%s/items/%s", s.baseURL, s.driveID, url.PathEscape(itemID))

	var item driveItem
	if err := s.getJSON(ctx, endpoint, &item); err != nil {
		return "", fmt.Errorf("resolving download url: %w", err)
	}
	return item.DownloadURL, nil
}

// FetchText downloads the content at url. Download URLs are
// pre-authenticated, so no bearer token is attached.
func (s *GraphStore) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	return string(body), nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (s *GraphStore) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	tok, err := s.token(ctx)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// escapePath escapes each segment of a drive-relative path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
