package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recaptools/recap-cli/pkg/logging"
	"github.com/recaptools/recap-cli/pkg/render"
	"github.com/recaptools/recap-cli/pkg/watcher"
)

// Watch command flags.
var (
	watchFormat  string
	watchOutDir  string
	watchWorkers int
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and summarize new transcripts",
		Long: `Watch a directory for newly created transcript files (.vtt, .srt,
.txt) and run each one through the summarization pipeline as it appears.

Rendered output is written next to the transcript (or into --out-dir),
named after the transcript with the format's extension.

Runs until interrupted.

Examples:
  recap watch ./recordings
  recap watch ./recordings --format markdown --out-dir ./summaries`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.loadConfigForCommand(cmd)
			if err != nil {
				return err
			}

			format := render.ParseFormat(watchFormat)
			if watchFormat == "" {
				format = render.ParseFormat(cfg.OutputFormat.String())
			}

			log := deps.NewLogger(cfg)
			proc, err := deps.NewProcessor(cfg, log)
			if err != nil {
				return err
			}

			handler := func(ctx context.Context, path string) error {
				// Never re-ingest our own output.
				if strings.Contains(filepath.Base(path), ".recap.") {
					return nil
				}
				result := proc.ProcessOne(ctx, path)
				out, err := render.Result(result, format)
				if err != nil {
					return err
				}

				dest := summaryPath(path, watchOutDir, format)
				if err := os.WriteFile(dest, out.Data, 0o644); err != nil {
					return fmt.Errorf("writing summary: %w", err)
				}
				log.Info("summary written",
					logging.F("transcript", path),
					logging.F("summary", dest),
					logging.F("success", result.Success))
				return nil
			}

			w, err := watcher.New(args[0], handler, log, watchWorkers)
			if err != nil {
				return err
			}
			defer w.Stop()

			err = w.Start(cmd.Context())
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&watchFormat, "format", "f", "", "output format (json, markdown, docx, digest)")
	cmd.Flags().StringVar(&watchOutDir, "out-dir", "", "directory for rendered summaries (defaults to the transcript's directory)")
	cmd.Flags().IntVar(&watchWorkers, "workers", 2, "max transcripts processed concurrently")

	return cmd
}

// summaryPath derives the output file path for a processed transcript.
func summaryPath(transcript, outDir string, format render.Format) string {
	dir := filepath.Dir(transcript)
	if outDir != "" {
		dir = outDir
	}
	base := filepath.Base(transcript)
	base = base[:len(base)-len(filepath.Ext(base))]

	ext := ".json"
	switch format {
	case render.FormatMarkdown:
		ext = ".md"
	case render.FormatDocx:
		ext = ".docx"
	case render.FormatDigest:
		ext = ".txt"
	}
	return filepath.Join(dir, base+".recap"+ext)
}
