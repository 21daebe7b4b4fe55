package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaptools/recap-cli/pkg/errors"
	"github.com/recaptools/recap-cli/pkg/filestore"
	"github.com/recaptools/recap-cli/pkg/llm"
	"github.com/recaptools/recap-cli/pkg/summarize"
)

const sampleVTT = `WEBVTT

00:00:01.000 --> 00:00:04.000
<v Alice>Welcome everyone to the planning session.

00:00:05.000 --> 00:00:09.000
<v Bob>Let's review the roadmap for next quarter.
`

const modelJSON = `{
  "summary": "The team met to plan the next quarter and walked through the roadmap priorities in detail.",
  "keyPoints": [
    {"title": "Planning session kickoff", "timestamp": "00:00:01", "speaker": "Alice"},
    {"title": "Roadmap review", "timestamp": "00:00:05", "speaker": "Bob"},
    {"title": "Next quarter priorities", "timestamp": "00:00:07", "speaker": "Bob"}
  ]
}`

// fakeStore is an in-memory filestore.Store.
type fakeStore struct {
	mu         sync.Mutex
	candidates []filestore.Candidate
	urls       map[string]string // item ID -> download URL
	texts      map[string]string // download URL -> content
	listErr    error
	fetchErr   error
	listCalls  int
}

func (s *fakeStore) ListCandidates(ctx context.Context) ([]filestore.Candidate, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.candidates, nil
}

func (s *fakeStore) ResolveDownloadURL(ctx context.Context, itemID string) (string, error) {
	return s.urls[itemID], nil
}

func (s *fakeStore) FetchText(ctx context.Context, url string) (string, error) {
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	text, ok := s.texts[url]
	if !ok {
		return "", fmt.Errorf("fetching %s: no content", url)
	}
	return text, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: []filestore.Candidate{
			{ID: "item-1", Name: "standup.vtt", WebURL: "https://contoso.sharepoint.com/standup.mp4"},
			{ID: "item-2", Name: "retro.vtt"},
			{ID: "folder-1", Name: "Recordings", IsFolder: true},
		},
		urls: map[string]string{
			"item-1": "https://dl.example.com/standup",
			"item-2": "https://dl.example.com/retro",
		},
		texts: map[string]string{
			"https://dl.example.com/standup": sampleVTT,
			"https://dl.example.com/retro":   sampleVTT,
		},
	}
}

// scriptedClient returns a fixed response for every call.
type scriptedClient struct {
	mu       sync.Mutex
	response string
	usage    llm.Usage
	err      error
	panics   bool
	calls    int
}

func (c *scriptedClient) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.panics {
		panic("scripted panic")
	}
	if c.err != nil {
		return "", llm.Usage{}, c.err
	}
	return c.response, c.usage, nil
}

func newTestProcessor(store filestore.Store, client llm.Client) *Processor {
	return NewProcessor(
		Deps{Store: store, Client: client},
		Options{WindowDelay: time.Millisecond},
	)
}

func TestProcessOne_Success(t *testing.T) {
	client := &scriptedClient{response: modelJSON, usage: llm.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}}
	p := newTestProcessor(newFakeStore(), client)

	result := p.ProcessOne(context.Background(), "standup.vtt")

	require.True(t, result.Success)
	require.Nil(t, result.Error)
	assert.Equal(t, "Standup", result.MeetingTitle)
	assert.Equal(t, 2, result.CueCount)
	assert.Equal(t, []string{"Alice", "Bob"}, result.Speakers)
	assert.Equal(t, summarize.SourceModel, result.Source)
	assert.Equal(t, 150, result.Usage.TotalTokens)
	assert.Len(t, result.KeyPoints, 3)

	// WebURL is a SharePoint host, so links carry a seconds query param.
	assert.Equal(t, "https://contoso.sharepoint.com/standup.mp4?t=1", result.KeyPoints[0].VideoLink)
}

func TestProcessOne_MatchesCaseInsensitiveAndBareName(t *testing.T) {
	client := &scriptedClient{response: modelJSON}
	p := newTestProcessor(newFakeStore(), client)

	for _, id := range []string{"item-1", "STANDUP.VTT", "standup"} {
		result := p.ProcessOne(context.Background(), id)
		assert.True(t, result.Success, "identifier %q", id)
	}
}

func TestProcessOne_NotFoundCarriesCandidates(t *testing.T) {
	p := newTestProcessor(newFakeStore(), &scriptedClient{response: modelJSON})

	result := p.ProcessOne(context.Background(), "missing.vtt")

	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, errors.KindNotFound, result.Error.Kind)
	assert.Equal(t, []string{"standup.vtt", "retro.vtt"}, result.Error.Candidates)
}

func TestProcessOne_AbsentDownloadURLIsNotFound(t *testing.T) {
	store := newFakeStore()
	delete(store.urls, "item-1")
	p := newTestProcessor(store, &scriptedClient{response: modelJSON})

	result := p.ProcessOne(context.Background(), "standup.vtt")

	require.False(t, result.Success)
	assert.Equal(t, errors.KindNotFound, result.Error.Kind)
	assert.Equal(t, "download", result.Error.Stage)
}

func TestProcessOne_FetchFailureIsTransport(t *testing.T) {
	store := newFakeStore()
	store.fetchErr = fmt.Errorf("connection refused")
	p := newTestProcessor(store, &scriptedClient{response: modelJSON})

	result := p.ProcessOne(context.Background(), "standup.vtt")

	require.False(t, result.Success)
	assert.Equal(t, errors.KindTransport, result.Error.Kind)
}

func TestProcessOne_ListFailureIsTransport(t *testing.T) {
	store := newFakeStore()
	store.listErr = fmt.Errorf("service unavailable")
	p := newTestProcessor(store, &scriptedClient{response: modelJSON})

	result := p.ProcessOne(context.Background(), "standup.vtt")

	require.False(t, result.Success)
	assert.Equal(t, errors.KindTransport, result.Error.Kind)
}

func TestProcessOne_LocalFileBypassesStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly-sync.vtt")
	require.NoError(t, os.WriteFile(path, []byte(sampleVTT), 0o644))

	// No store at all: local mode must not need one.
	p := newTestProcessor(nil, &scriptedClient{response: modelJSON})

	result := p.ProcessOne(context.Background(), path)

	require.True(t, result.Success)
	assert.Equal(t, "Weekly Sync", result.MeetingTitle)
	assert.Equal(t, 2, result.CueCount)
}

func TestProcessOne_NoStoreNoFileIsConfigurationError(t *testing.T) {
	p := newTestProcessor(nil, &scriptedClient{response: modelJSON})

	result := p.ProcessOne(context.Background(), "nowhere.vtt")

	require.False(t, result.Success)
	assert.Equal(t, errors.KindConfiguration, result.Error.Kind)
}

func TestProcessOne_PanicBecomesFailure(t *testing.T) {
	p := newTestProcessor(newFakeStore(), &scriptedClient{panics: true})

	result := p.ProcessOne(context.Background(), "standup.vtt")

	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, errors.KindProcessing, result.Error.Kind)
	assert.Contains(t, result.Error.Message, "scripted panic")
}

func TestProcessOne_ClientErrorFallsBack(t *testing.T) {
	p := newTestProcessor(newFakeStore(), &scriptedClient{err: fmt.Errorf("quota exceeded")})

	result := p.ProcessOne(context.Background(), "standup.vtt")

	// Item still succeeds on the fallback path with zero usage.
	require.True(t, result.Success)
	assert.Equal(t, summarize.SourceFallback, result.Source)
	assert.True(t, result.Usage.IsZero())
	assert.NotEmpty(t, result.Summary)
}

func TestProcessBatch_MiddleItemNotFound(t *testing.T) {
	client := &scriptedClient{response: modelJSON, usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	p := newTestProcessor(newFakeStore(), client)

	result := p.ProcessBatch(context.Background(), []string{"standup.vtt", "ghost.vtt", "retro.vtt"})

	require.Len(t, result.Items, 3)
	assert.True(t, result.Items[0].Success)
	assert.True(t, result.Items[2].Success)

	require.False(t, result.Items[1].Success)
	assert.Equal(t, errors.KindNotFound, result.Items[1].Error.Kind)
	assert.NotEmpty(t, result.Items[1].Error.Candidates)

	assert.False(t, result.AllSucceeded)
	assert.True(t, result.AnySucceeded)
	assert.NotEmpty(t, result.BatchID)
}

func TestProcessBatch_ItemsMatchInputOrder(t *testing.T) {
	store := newFakeStore()
	client := &scriptedClient{response: modelJSON}
	p := NewProcessor(
		Deps{Store: store, Client: client},
		Options{Concurrency: 2, WindowDelay: time.Millisecond},
	)

	ids := []string{"standup.vtt", "retro.vtt", "nope-1", "standup.vtt", "nope-2"}
	result := p.ProcessBatch(context.Background(), ids)

	require.Len(t, result.Items, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, result.Items[i].Identifier)
	}
	assert.False(t, result.Items[2].Success)
	assert.False(t, result.Items[4].Success)
}

func TestProcessBatch_UsageSummedFieldByField(t *testing.T) {
	client := &scriptedClient{response: modelJSON, usage: llm.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120}}
	p := newTestProcessor(newFakeStore(), client)

	result := p.ProcessBatch(context.Background(), []string{"standup.vtt", "retro.vtt"})

	require.True(t, result.AllSucceeded)
	assert.Equal(t, 200, result.Usage.PromptTokens)
	assert.Equal(t, 40, result.Usage.CompletionTokens)
	assert.Equal(t, 240, result.Usage.TotalTokens)
}

func TestProcessBatch_Empty(t *testing.T) {
	p := newTestProcessor(newFakeStore(), &scriptedClient{response: modelJSON})

	result := p.ProcessBatch(context.Background(), nil)

	assert.Empty(t, result.Items)
	assert.True(t, result.AllSucceeded)
	assert.False(t, result.AnySucceeded)
}

func TestProcessBatch_AllFailedStillReturnsNormally(t *testing.T) {
	p := newTestProcessor(newFakeStore(), &scriptedClient{response: modelJSON})

	result := p.ProcessBatch(context.Background(), []string{"a", "b"})

	require.Len(t, result.Items, 2)
	assert.False(t, result.AllSucceeded)
	assert.False(t, result.AnySucceeded)
	for _, item := range result.Items {
		assert.Equal(t, errors.KindNotFound, item.Error.Kind)
	}
}

func TestProcessBatch_CancelledContextFillsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(
		Deps{Store: newFakeStore(), Client: &scriptedClient{response: modelJSON}},
		Options{Concurrency: 1, WindowDelay: time.Millisecond},
	)

	result := p.ProcessBatch(ctx, []string{"standup.vtt", "retro.vtt", "standup.vtt"})

	// Length always matches input, whatever each item's fate.
	require.Len(t, result.Items, 3)
	for i, item := range result.Items {
		assert.Equal(t, []string{"standup.vtt", "retro.vtt", "standup.vtt"}[i], item.Identifier)
	}
}
