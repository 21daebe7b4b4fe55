package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recaptools/recap-cli/pkg/errors"
	"github.com/recaptools/recap-cli/pkg/logging"
	"github.com/recaptools/recap-cli/pkg/render"
)

// Process command flags.
var (
	processFormat      string
	processOutput      string
	processConcurrency int
)

// NewProcessCommand creates the process command.
func NewProcessCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "process <identifier>...",
		Short: "Summarize one or more meeting transcripts",
		Long: `Process meeting transcripts into summaries with deep-linked key points.

Each identifier is either an item in the configured drive (matched by item
ID or file name, case-insensitively) or a path to a local transcript file.
Multiple identifiers run as a batch with windowed concurrency; one failing
item never aborts the others.

Examples:
  # Summarize one recording from the drive
  recap process "Weekly Sync.vtt"

  # Summarize a local file as Markdown
  recap process ./standup.vtt --format markdown

  # Batch, written to a Word document
  recap process standup.vtt retro.vtt planning.vtt --format docx -o recap.docx

  # Condensed digest for quick scanning
  recap process standup.vtt --format digest`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.loadConfigForCommand(cmd)
			if err != nil {
				return err
			}

			format := render.ParseFormat(processFormat)
			if processFormat == "" {
				format = render.ParseFormat(cfg.OutputFormat.String())
			}
			if format == render.FormatDocx && processOutput == "" {
				return fmt.Errorf("--format docx requires --output")
			}

			if processConcurrency > 0 {
				cfg.Pipeline.Concurrency = processConcurrency
			}

			log := deps.NewLogger(cfg)
			proc, err := deps.NewProcessor(cfg, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			var out render.Output
			var renderErr error
			if len(args) == 1 {
				result := proc.ProcessOne(ctx, args[0])
				out, renderErr = render.Result(result, format)
			} else {
				batch := proc.ProcessBatch(ctx, args)
				out, renderErr = render.Batch(batch, format)
			}
			if renderErr != nil {
				// A rendering failure is reported as structured data,
				// distinct from a pipeline failure.
				log.Error("rendering failed", logging.Err(renderErr))
				out = renderFailure(renderErr)
			}

			return writeOutput(cmd, out, processOutput)
		},
	}

	cmd.Flags().StringVarP(&processFormat, "format", "f", "", "output format (json, markdown, docx, digest)")
	cmd.Flags().StringVarP(&processOutput, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().IntVar(&processConcurrency, "concurrency", 0, "batch window size (overrides config)")

	return cmd
}

// renderFailure produces the structured error response for a rendering
// failure.
func renderFailure(err error) render.Output {
	perr := errors.Classify(err, "render")
	data, marshalErr := json.MarshalIndent(perr, "", "  ")
	if marshalErr != nil {
		data = []byte(fmt.Sprintf(`{"kind":"rendering","message":%q}`, err.Error()))
	}
	return render.Output{Format: render.FormatJSON, Data: data}
}

// writeOutput sends rendered output to a file or stdout.
func writeOutput(cmd *cobra.Command, out render.Output, path string) error {
	if path != "" {
		if err := os.WriteFile(path, out.Data, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	}
	if out.Binary() {
		return fmt.Errorf("binary output requires --output")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out.Data))
	return nil
}
