package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/recaptools/recap-cli/config"
)

var listJSON bool

// NewListCommand creates the list command.
func NewListCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcripts available in the configured drive",
		Long: `List the transcript candidates in the configured drive folder.

Useful for finding the exact identifier to pass to 'recap process'.

Examples:
  recap list
  recap list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.loadConfigForCommand(cmd)
			if err != nil {
				return err
			}

			store, err := deps.NewStore(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("no drive configured; set graph.drive_id in %s", configHint())
			}

			candidates, err := store.ListCandidates(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing candidates: %w", err)
			}

			out := cmd.OutOrStdout()
			if listJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(candidates)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tCREATED\tID")
			for _, c := range candidates {
				if c.IsFolder {
					continue
				}
				created := ""
				if !c.CreatedAt.IsZero() {
					created = c.CreatedAt.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c.Name, c.SizeBytes, created, c.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")

	return cmd
}

func configHint() string {
	if path, err := config.ConfigPath(); err == nil {
		return path
	}
	return "~/.recap/config.yaml"
}
