package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize freerooms to read your calendars",
		Long: `Runs the Google OAuth consent flow and caches the resulting token in
--token-file. Other commands start this flow on their own when no usable token
is cached; run it explicitly to switch accounts or after revoking access.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := newAuthenticator(nil)
			if err != nil {
				return err
			}

			if _, err := auth.Login(cmd.Context()); err != nil {
				return err
			}

			printLoginComplete(cmd.OutOrStdout(), globals.tokenFile)
			return nil
		},
	}
}

func printLoginComplete(out io.Writer, tokenFile string) {
	fmt.Fprintf(out, "Login successful. Token saved to %s\n", tokenFile)
}
