package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recaptools/recap-cli/credentials"
)

// NewAuthCommand creates the auth command with its subcommands.
func NewAuthCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
		Long: `Manage the Gemini API key and Microsoft Graph token used by recap.

Secrets are encrypted at rest; the encryption key lives in the system
keyring (macOS Keychain, Windows Credential Manager, Linux Secret
Service). For headless environments set RECAP_ENCRYPTION_KEY, or bypass
storage entirely with RECAP_GEMINI_API_KEY / RECAP_GRAPH_TOKEN.`,
	}

	cmd.AddCommand(newAuthSetCommand())
	cmd.AddCommand(newAuthShowCommand())
	cmd.AddCommand(newAuthDeleteCommand())

	return cmd
}

// Auth set flags.
var (
	authGeminiKey  string
	authGraphToken string
)

func newAuthSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store credentials",
		Long: `Store the Gemini API key and/or Graph token.

Values can be passed as flags or entered interactively (input is hidden).

Examples:
  recap auth set                       Prompt for both secrets
  recap auth set --gemini-key ...      Store the Gemini key only
  recap auth set --graph-token ...     Store the Graph token only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credentials.NewStore()
			if err != nil {
				return err
			}

			creds, err := store.Load()
			if err != nil {
				creds = &credentials.Credentials{}
			}

			geminiKey := authGeminiKey
			graphToken := authGraphToken
			interactive := geminiKey == "" && graphToken == ""

			if interactive {
				if geminiKey, err = promptSecret("Gemini API key (leave empty to keep current): "); err != nil {
					return err
				}
				if graphToken, err = promptSecret("Graph token (leave empty to keep current): "); err != nil {
					return err
				}
			}

			if geminiKey != "" {
				creds.GeminiAPIKey = geminiKey
			}
			if graphToken != "" {
				creds.GraphToken = graphToken
			}
			if creds.GeminiAPIKey == "" && creds.GraphToken == "" {
				return fmt.Errorf("nothing to store")
			}

			if err := store.Save(creds); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Credentials stored.")
			return nil
		},
	}

	cmd.Flags().StringVar(&authGeminiKey, "gemini-key", "", "Gemini API key")
	cmd.Flags().StringVar(&authGraphToken, "graph-token", "", "Microsoft Graph bearer token")

	return cmd
}

func newAuthShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show stored credentials (masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credentials.NewStore()
			if err != nil {
				return err
			}

			creds, err := store.Load()
			if err != nil {
				if err == credentials.ErrNoCredentials {
					fmt.Fprintln(cmd.OutOrStdout(), "No credentials stored.")
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if creds.GeminiAPIKey != "" {
				fmt.Fprintf(out, "Gemini API key: %s\n", credentials.MaskCredential(creds.GeminiAPIKey))
			} else {
				fmt.Fprintln(out, "Gemini API key: (not set)")
			}
			if creds.GraphToken != "" {
				fmt.Fprintf(out, "Graph token:    %s (expires: %s)\n",
					credentials.MaskCredential(creds.GraphToken),
					credentials.FormatExpiry(creds.GraphTokenExpiresAt))
			} else {
				fmt.Fprintln(out, "Graph token:    (not set)")
			}
			fmt.Fprintf(out, "Last updated:   %s\n", creds.LastUpdated.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newAuthDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credentials.NewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credentials deleted.")
			return nil
		},
	}
}

// promptSecret reads a secret with hidden input, falling back to plain
// reads when no terminal is attached.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	secretBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err == nil {
		return strings.TrimSpace(string(secretBytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
