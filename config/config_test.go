package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, OutputFormatJSON, cfg.OutputFormat)
	assert.Equal(t, DefaultGeminiModel, cfg.Gemini.Model)
	assert.Equal(t, DefaultConcurrency, cfg.Pipeline.Concurrency)
	assert.Equal(t, DefaultWindowDelay, cfg.Pipeline.WindowDelay)
	assert.Equal(t, DefaultMaxTranscriptChars, cfg.Pipeline.MaxTranscriptChars)
	assert.Nil(t, cfg.Redis)
	require.NoError(t, cfg.Validate())
}

func TestConfigDir_EnvOverride(t *testing.T) {
	t.Setenv("RECAP_CONFIG_DIR", "/tmp/recap-test")

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/recap-test", dir)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECAP_CONFIG_DIR", dir)

	content := `
output_format: markdown
graph:
  drive_id: drive-123
  folder: Recordings
  site_base: https://contoso.sharepoint.com/sites/eng
gemini:
  model: gemini-2.5-pro
pipeline:
  concurrency: 2
  window_delay: 250ms
  item_timeout: 30s
  max_transcript_chars: 10000
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, OutputFormatMarkdown, cfg.OutputFormat)
	assert.Equal(t, "drive-123", cfg.Graph.DriveID)
	assert.Equal(t, "Recordings", cfg.Graph.Folder)
	assert.True(t, cfg.Graph.IsConfigured())
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 2, cfg.Pipeline.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.WindowDelay)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.ItemTimeout)
	assert.Equal(t, 10000, cfg.Pipeline.MaxTranscriptChars)
	require.NotNil(t, cfg.Redis)
	assert.True(t, cfg.Redis.IsConfigured())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECAP_CONFIG_DIR", dir)

	content := "output_format: markdown\npipeline:\n  concurrency: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o600))

	t.Setenv("RECAP_OUTPUT_FORMAT", "digest")
	t.Setenv("RECAP_CONCURRENCY", "8")
	t.Setenv("RECAP_GEMINI_MODEL", "gemini-2.5-flash-lite")
	t.Setenv("RECAP_REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, OutputFormatDigest, cfg.OutputFormat)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Gemini.Model)
	require.NotNil(t, cfg.Redis)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RECAP_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, OutputFormatJSON, cfg.OutputFormat)
}

func TestLoadConfig_InvalidFormatRejected(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECAP_CONFIG_DIR", dir)

	content := "output_format: xml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o600))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output_format")
}

func TestLoadConfig_BadDurationRejected(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECAP_CONFIG_DIR", dir)

	content := "pipeline:\n  window_delay: soon\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o600))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window_delay")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("RECAP_CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.OutputFormat = OutputFormatDocx
	cfg.Graph.DriveID = "drive-xyz"
	cfg.Pipeline.Concurrency = 3

	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, OutputFormatDocx, loaded.OutputFormat)
	assert.Equal(t, "drive-xyz", loaded.Graph.DriveID)
	assert.Equal(t, 3, loaded.Pipeline.Concurrency)
}

func TestOutputFormat_IsValid(t *testing.T) {
	for _, f := range []OutputFormat{OutputFormatJSON, OutputFormatMarkdown, OutputFormatDocx, OutputFormatDigest} {
		assert.True(t, f.IsValid(), "format %q", f)
	}
	assert.False(t, OutputFormat("yaml").IsValid())
	assert.False(t, OutputFormat("").IsValid())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Concurrency = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Gemini.Model = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Pipeline.MaxTranscriptChars = -1
	require.Error(t, cfg.Validate())
}
