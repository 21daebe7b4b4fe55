// Package config provides configuration management for the recap
// command-line tool. It supports loading configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatJSON is the structured machine-readable output.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatMarkdown is the lightweight-markup output.
	OutputFormatMarkdown OutputFormat = "markdown"
	// OutputFormatDocx is the styled Word document output.
	OutputFormatDocx OutputFormat = "docx"
	// OutputFormatDigest is the condensed quick-scan output.
	OutputFormatDigest OutputFormat = "digest"
)

// Default configuration values.
const (
	DefaultOutputFormat       = OutputFormatJSON
	DefaultConfigDir          = ".recap"
	DefaultConfigFile         = "config.yaml"
	DefaultGeminiModel        = "gemini-2.5-flash"
	DefaultConcurrency        = 4
	DefaultWindowDelay        = 500 * time.Millisecond
	DefaultItemTimeout        = 2 * time.Minute
	DefaultMaxTranscriptChars = 60000
)

// GraphConfig holds Microsoft Graph drive settings.
type GraphConfig struct {
	// BaseURL overrides the Graph API endpoint; empty means the public
	// cloud endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// DriveID is the drive holding the transcript files.
	DriveID string `yaml:"drive_id,omitempty"`

	// Folder is the drive-relative path listed for candidates.
	Folder string `yaml:"folder,omitempty"`

	// SiteBase is the site URL used to construct viewer links when an
	// item carries no web URL of its own.
	SiteBase string `yaml:"site_base,omitempty"`
}

// IsConfigured returns true if a drive is set up.
func (c *GraphConfig) IsConfigured() bool {
	return c != nil && c.DriveID != ""
}

// GeminiConfig holds summarization service settings.
type GeminiConfig struct {
	// Model is the Gemini model name.
	Model string `yaml:"model"`

	// APIKey is the service key. Prefer the keyring (recap auth set);
	// this field exists for headless environments.
	APIKey string `yaml:"api_key,omitempty"`
}

// PipelineConfig holds batch and extraction tuning.
type PipelineConfig struct {
	// Concurrency is the batch window size.
	Concurrency int `yaml:"concurrency"`

	// WindowDelay is the pause between batch windows.
	WindowDelay time.Duration `yaml:"-"`

	// ItemTimeout bounds one item's external calls.
	ItemTimeout time.Duration `yaml:"-"`

	// MaxTranscriptChars bounds the flattened transcript sent to the
	// summarization service.
	MaxTranscriptChars int `yaml:"max_transcript_chars"`
}

// RedisConfig holds optional event publishing settings.
type RedisConfig struct {
	// Addr is the Redis address (host:port); empty disables events.
	Addr string `yaml:"addr,omitempty"`

	// Password is the Redis password, if any.
	Password string `yaml:"password,omitempty"`

	// DB is the Redis database number.
	DB int `yaml:"db,omitempty"`
}

// IsConfigured returns true if event publishing is set up.
func (c *RedisConfig) IsConfigured() bool {
	return c != nil && c.Addr != ""
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Graph contains the file store settings.
	Graph GraphConfig `yaml:"graph"`

	// Gemini contains the summarization service settings.
	Gemini GeminiConfig `yaml:"gemini"`

	// Pipeline contains batch and extraction tuning.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Redis contains the optional event broker settings.
	Redis *RedisConfig `yaml:"redis,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		OutputFormat: DefaultOutputFormat,
		Gemini:       GeminiConfig{Model: DefaultGeminiModel},
		Pipeline: PipelineConfig{
			Concurrency:        DefaultConcurrency,
			WindowDelay:        DefaultWindowDelay,
			ItemTimeout:        DefaultItemTimeout,
			MaxTranscriptChars: DefaultMaxTranscriptChars,
		},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $RECAP_CONFIG_DIR if set, otherwise ~/.recap
func ConfigDir() (string, error) {
	if dir := os.Getenv("RECAP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment
// variables. Configuration is loaded in this order (later sources
// override earlier):
// 1. Default values
// 2. Config file (~/.recap/config.yaml or $RECAP_CONFIG_DIR/config.yaml)
// 3. Environment variables (RECAP_*)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Temp struct so durations can be written as strings.
	type pipelineFile struct {
		Concurrency        int    `yaml:"concurrency"`
		WindowDelay        string `yaml:"window_delay"`
		ItemTimeout        string `yaml:"item_timeout"`
		MaxTranscriptChars int    `yaml:"max_transcript_chars"`
	}
	type configFile struct {
		OutputFormat OutputFormat `yaml:"output_format"`
		Graph        GraphConfig  `yaml:"graph"`
		Gemini       GeminiConfig `yaml:"gemini"`
		Pipeline     pipelineFile `yaml:"pipeline"`
		Redis        *RedisConfig `yaml:"redis"`
		Debug        bool         `yaml:"debug"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.Graph.BaseURL != "" {
		cfg.Graph.BaseURL = fileCfg.Graph.BaseURL
	}
	if fileCfg.Graph.DriveID != "" {
		cfg.Graph.DriveID = fileCfg.Graph.DriveID
	}
	if fileCfg.Graph.Folder != "" {
		cfg.Graph.Folder = fileCfg.Graph.Folder
	}
	if fileCfg.Graph.SiteBase != "" {
		cfg.Graph.SiteBase = fileCfg.Graph.SiteBase
	}
	if fileCfg.Gemini.Model != "" {
		cfg.Gemini.Model = fileCfg.Gemini.Model
	}
	if fileCfg.Gemini.APIKey != "" {
		cfg.Gemini.APIKey = fileCfg.Gemini.APIKey
	}
	if fileCfg.Pipeline.Concurrency > 0 {
		cfg.Pipeline.Concurrency = fileCfg.Pipeline.Concurrency
	}
	if fileCfg.Pipeline.WindowDelay != "" {
		d, err := time.ParseDuration(fileCfg.Pipeline.WindowDelay)
		if err != nil {
			return fmt.Errorf("parsing window_delay: %w", err)
		}
		cfg.Pipeline.WindowDelay = d
	}
	if fileCfg.Pipeline.ItemTimeout != "" {
		d, err := time.ParseDuration(fileCfg.Pipeline.ItemTimeout)
		if err != nil {
			return fmt.Errorf("parsing item_timeout: %w", err)
		}
		cfg.Pipeline.ItemTimeout = d
	}
	if fileCfg.Pipeline.MaxTranscriptChars > 0 {
		cfg.Pipeline.MaxTranscriptChars = fileCfg.Pipeline.MaxTranscriptChars
	}
	if fileCfg.Redis != nil {
		cfg.Redis = fileCfg.Redis
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("RECAP_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(strings.ToLower(v))
	}

	if v := os.Getenv("RECAP_GRAPH_BASE_URL"); v != "" {
		cfg.Graph.BaseURL = v
	}
	if v := os.Getenv("RECAP_GRAPH_DRIVE_ID"); v != "" {
		cfg.Graph.DriveID = v
	}
	if v := os.Getenv("RECAP_GRAPH_FOLDER"); v != "" {
		cfg.Graph.Folder = v
	}
	if v := os.Getenv("RECAP_GRAPH_SITE_BASE"); v != "" {
		cfg.Graph.SiteBase = v
	}

	if v := os.Getenv("RECAP_GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("RECAP_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}

	if v := os.Getenv("RECAP_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.Concurrency = n
		}
	}
	if v := os.Getenv("RECAP_WINDOW_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.WindowDelay = d
		}
	}
	if v := os.Getenv("RECAP_ITEM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.ItemTimeout = d
		}
	}
	if v := os.Getenv("RECAP_MAX_TRANSCRIPT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.MaxTranscriptChars = n
		}
	}

	if v := os.Getenv("RECAP_REDIS_ADDR"); v != "" {
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{}
		}
		cfg.Redis.Addr = v
	}

	if v := os.Getenv("RECAP_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be json, markdown, docx, or digest)", c.OutputFormat)
	}

	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline concurrency must be positive")
	}

	if c.Pipeline.MaxTranscriptChars <= 0 {
		return fmt.Errorf("max_transcript_chars must be positive")
	}

	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini model is required")
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatJSON, OutputFormatMarkdown, OutputFormatDocx, OutputFormatDigest:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// YAML-friendly shape with durations as strings.
	type pipelineFile struct {
		Concurrency        int    `yaml:"concurrency"`
		WindowDelay        string `yaml:"window_delay"`
		ItemTimeout        string `yaml:"item_timeout"`
		MaxTranscriptChars int    `yaml:"max_transcript_chars"`
	}
	type configFile struct {
		OutputFormat OutputFormat `yaml:"output_format"`
		Graph        GraphConfig  `yaml:"graph"`
		Gemini       GeminiConfig `yaml:"gemini"`
		Pipeline     pipelineFile `yaml:"pipeline"`
		Redis        *RedisConfig `yaml:"redis,omitempty"`
		Debug        bool         `yaml:"debug,omitempty"`
	}

	fileCfg := configFile{
		OutputFormat: cfg.OutputFormat,
		Graph:        cfg.Graph,
		Gemini:       cfg.Gemini,
		Pipeline: pipelineFile{
			Concurrency:        cfg.Pipeline.Concurrency,
			WindowDelay:        cfg.Pipeline.WindowDelay.String(),
			ItemTimeout:        cfg.Pipeline.ItemTimeout.String(),
			MaxTranscriptChars: cfg.Pipeline.MaxTranscriptChars,
		},
		Redis: cfg.Redis,
		Debug: cfg.Debug,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
