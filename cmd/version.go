package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recaptools/recap-cli/pkg/buildinfo"
)

var versionJSON bool

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version, commit hash, and build time of the recap CLI.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(buildinfo.Get())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recap %s\n", buildinfo.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")

	return cmd
}
