// Package cmd provides CLI commands for the recap tool.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/recaptools/recap-cli/config"
	"github.com/recaptools/recap-cli/credentials"
	"github.com/recaptools/recap-cli/pkg/events"
	"github.com/recaptools/recap-cli/pkg/filestore"
	"github.com/recaptools/recap-cli/pkg/llm"
	"github.com/recaptools/recap-cli/pkg/logging"
	"github.com/recaptools/recap-cli/pkg/meta"
	"github.com/recaptools/recap-cli/pkg/observability"
	"github.com/recaptools/recap-cli/pkg/pipeline"
	"github.com/recaptools/recap-cli/pkg/summarize"
)

// Deps holds the dependencies commands need. Factories are swappable for
// testing.
type Deps struct {
	LoadConfig   func() (*config.CLIConfig, error)
	NewLogger    func(cfg *config.CLIConfig) logging.Logger
	NewStore     func(cfg *config.CLIConfig) (filestore.Store, error)
	NewClient    func(cfg *config.CLIConfig) (llm.Client, error)
	NewProcessor func(cfg *config.CLIConfig, log logging.Logger) (*pipeline.Processor, error)
}

// DefaultDeps returns the production dependencies.
func DefaultDeps() *Deps {
	d := &Deps{
		LoadConfig: config.LoadConfig,
		NewLogger:  newLogger,
		NewStore:   newGraphStore,
		NewClient:  newGeminiClient,
	}
	d.NewProcessor = d.buildProcessor
	return d
}

func newLogger(cfg *config.CLIConfig) logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg != nil && cfg.Debug {
		logCfg.Level = logging.LevelDebug
	}
	return logging.NewLogger(logCfg)
}

// newGraphStore builds the Graph file store, or nil when no drive is
// configured (local-file mode still works without one).
func newGraphStore(cfg *config.CLIConfig) (filestore.Store, error) {
	if !cfg.Graph.IsConfigured() {
		return nil, nil
	}
	return filestore.NewGraphStore(filestore.GraphConfig{
		BaseURL: cfg.Graph.BaseURL,
		DriveID: cfg.Graph.DriveID,
		Folder:  cfg.Graph.Folder,
		Token:   graphTokenProvider(),
	})
}

// graphTokenProvider resolves the bearer token per call: environment
// first, then the credential store.
func graphTokenProvider() filestore.TokenProvider {
	return func(ctx context.Context) (string, error) {
		if token := os.Getenv("RECAP_GRAPH_TOKEN"); token != "" {
			return token, nil
		}
		store, err := credentials.NewStore()
		if err != nil {
			return "", fmt.Errorf("opening credential store: %w", err)
		}
		token, err := store.GraphToken()
		if err != nil {
			return "", fmt.Errorf("no Graph token; run 'recap auth set' or set RECAP_GRAPH_TOKEN: %w", err)
		}
		return token, nil
	}
}

// newGeminiClient builds the summarization client, or nil when no API key
// is available (the pipeline then uses deterministic extraction only).
func newGeminiClient(cfg *config.CLIConfig) (llm.Client, error) {
	key := cfg.Gemini.APIKey
	if key == "" {
		key = os.Getenv("RECAP_GEMINI_API_KEY")
	}
	if key == "" {
		if store, err := credentials.NewStore(); err == nil {
			if stored, err := store.GeminiKey(); err == nil {
				key = stored
			}
		}
	}
	if key == "" {
		return nil, nil
	}
	return llm.NewGeminiClient(key, cfg.Gemini.Model)
}

// buildProcessor assembles the pipeline from configuration.
func (d *Deps) buildProcessor(cfg *config.CLIConfig, log logging.Logger) (*pipeline.Processor, error) {
	store, err := d.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("building file store: %w", err)
	}

	client, err := d.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("building summarization client: %w", err)
	}
	if client == nil {
		log.Warn("no Gemini API key configured, using deterministic extraction only")
	}

	var publisher *events.Publisher
	if cfg.Redis.IsConfigured() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publisher = events.NewPublisher(rdb, log)
	}

	sumOpts := summarize.DefaultOptions()
	sumOpts.MaxTranscriptChars = cfg.Pipeline.MaxTranscriptChars

	return pipeline.NewProcessor(
		pipeline.Deps{
			Store:     store,
			Client:    client,
			Logger:    log,
			Metrics:   observability.DefaultPipelineMetrics(),
			Tracer:    observability.NewTracer(),
			Publisher: publisher,
		},
		pipeline.Options{
			Concurrency: cfg.Pipeline.Concurrency,
			WindowDelay: cfg.Pipeline.WindowDelay,
			ItemTimeout: cfg.Pipeline.ItemTimeout,
			Site:        meta.SiteContext{SiteBase: cfg.Graph.SiteBase},
			Summarize:   sumOpts,
		},
	), nil
}

// loadConfigForCommand loads config and applies the shared --debug flag.
func (d *Deps) loadConfigForCommand(cmd *cobra.Command) (*config.CLIConfig, error) {
	cfg, err := d.LoadConfig()
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	return cfg, nil
}
