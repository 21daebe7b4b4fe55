// Package main provides the recap CLI entry point.
// recap turns meeting transcripts into summaries with deep-linked key
// points.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recaptools/recap-cli/cmd"
	"github.com/recaptools/recap-cli/pkg/buildinfo"
)

var debugFlag bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Meeting transcript summarizer",
	Long: `recap processes WebVTT meeting transcripts into summaries with
timestamped, deep-linked key points.

Transcripts come from a configured drive (SharePoint/OneDrive via
Microsoft Graph) or from local files. Summaries are produced by Gemini
when an API key is configured, with a deterministic extraction fallback
that keeps the pipeline working offline.

COMMON WORKFLOWS:
  Summarize a recording:  recap process "Weekly Sync.vtt"
  Batch with Markdown:    recap process a.vtt b.vtt --format markdown
  Find identifiers:       recap list
  Watch a hot folder:     recap watch ./recordings
  Store credentials:      recap auth set

Configuration lives in ~/.recap/config.yaml; every setting can also be
supplied through RECAP_* environment variables.`,
	Version:       buildinfo.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	deps := cmd.DefaultDeps()
	rootCmd.AddCommand(cmd.NewProcessCommand(deps))
	rootCmd.AddCommand(cmd.NewListCommand(deps))
	rootCmd.AddCommand(cmd.NewWatchCommand(deps))
	rootCmd.AddCommand(cmd.NewAuthCommand(deps))
	rootCmd.AddCommand(cmd.NewVersionCommand())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
