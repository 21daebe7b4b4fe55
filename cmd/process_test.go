package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaptools/recap-cli/config"
	"github.com/recaptools/recap-cli/pkg/filestore"
	"github.com/recaptools/recap-cli/pkg/llm"
	"github.com/recaptools/recap-cli/pkg/logging"
	"github.com/recaptools/recap-cli/pkg/pipeline"
	"github.com/recaptools/recap-cli/pkg/render"
)

const testVTT = `WEBVTT

00:00:01.000 --> 00:00:04.000
<v Alice>Welcome everyone to the weekly sync.

00:00:05.000 --> 00:00:09.000
<v Bob>First item is the release schedule.
`

// testDeps builds Deps backed by a store-less, client-less processor:
// local files work and extraction uses the deterministic path.
func testDeps() *Deps {
	return &Deps{
		LoadConfig: func() (*config.CLIConfig, error) {
			return config.DefaultConfig(), nil
		},
		NewLogger: func(cfg *config.CLIConfig) logging.Logger {
			return logging.NewNopLogger()
		},
		NewStore: func(cfg *config.CLIConfig) (filestore.Store, error) {
			return nil, nil
		},
		NewClient: func(cfg *config.CLIConfig) (llm.Client, error) {
			return nil, nil
		},
		NewProcessor: func(cfg *config.CLIConfig, log logging.Logger) (*pipeline.Processor, error) {
			return pipeline.NewProcessor(
				pipeline.Deps{Logger: log},
				pipeline.Options{WindowDelay: time.Millisecond},
			), nil
		},
	}
}

func writeTestTranscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weekly-sync.vtt")
	require.NoError(t, os.WriteFile(path, []byte(testVTT), 0o644))
	return path
}

func TestProcessCommand_SingleLocalFileJSON(t *testing.T) {
	path := writeTestTranscript(t)

	c := NewProcessCommand(testDeps())
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{path})

	require.NoError(t, c.ExecuteContext(context.Background()))

	var result pipeline.ProcessingResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Weekly Sync", result.MeetingTitle)
	assert.Equal(t, []string{"Alice", "Bob"}, result.Speakers)
}

func TestProcessCommand_MarkdownFormat(t *testing.T) {
	path := writeTestTranscript(t)

	c := NewProcessCommand(testDeps())
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{path, "--format", "markdown"})

	require.NoError(t, c.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "# Weekly Sync")
	assert.Contains(t, out.String(), "## Summary")
}

func TestProcessCommand_BatchJSON(t *testing.T) {
	path := writeTestTranscript(t)

	c := NewProcessCommand(testDeps())
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{path, "does-not-exist.vtt"})

	require.NoError(t, c.ExecuteContext(context.Background()))

	var batch pipeline.BatchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &batch))
	require.Len(t, batch.Items, 2)
	assert.True(t, batch.Items[0].Success)
	assert.False(t, batch.Items[1].Success)
	assert.False(t, batch.AllSucceeded)
	assert.True(t, batch.AnySucceeded)
}

func TestProcessCommand_DocxRequiresOutput(t *testing.T) {
	path := writeTestTranscript(t)

	c := NewProcessCommand(testDeps())
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{path, "--format", "docx"})

	err := c.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestProcessCommand_WritesOutputFile(t *testing.T) {
	path := writeTestTranscript(t)
	dest := filepath.Join(t.TempDir(), "summary.md")

	c := NewProcessCommand(testDeps())
	c.SetOut(&bytes.Buffer{})
	c.SetArgs([]string{path, "--format", "markdown", "-o", dest})

	require.NoError(t, c.ExecuteContext(context.Background()))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Weekly Sync")
}

func TestProcessCommand_RequiresArgs(t *testing.T) {
	c := NewProcessCommand(testDeps())
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(nil)

	require.Error(t, c.ExecuteContext(context.Background()))
}

func TestSummaryPath(t *testing.T) {
	assert.Equal(t, "/in/standup.recap.json", summaryPath("/in/standup.vtt", "", render.FormatJSON))
	assert.Equal(t, "/out/standup.recap.md", summaryPath("/in/standup.vtt", "/out", render.FormatMarkdown))
	assert.Equal(t, "/in/standup.recap.txt", summaryPath("/in/standup.vtt", "", render.FormatDigest))
	assert.Equal(t, "/in/standup.recap.docx", summaryPath("/in/standup.vtt", "", render.FormatDocx))
}
