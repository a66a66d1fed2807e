package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"runlog/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Strava connection",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize runlog with Strava",
	Long: `Open the Strava authorization page and store the resulting token.

A local callback server listens on strava.callback_port (8089 by default)
until the authorization completes or five minutes pass. Running login again
replaces the stored token, e.g. to grant write access.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStrava(); err != nil {
			return err
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.tokens.Reauthorize(cmd.Context()); err != nil {
			return err
		}
		color.Green("\n✓ Connected to Strava")
		return printStatus(cmd, a.tokens)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return printStatus(cmd, a.tokens)
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func printStatus(cmd *cobra.Command, m *auth.Manager) error {
	st, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	if !st.HasToken {
		color.Yellow("Not connected. Run `runlog auth login`.")
		return nil
	}

	check := func(ok bool) string {
		if ok {
			return color.GreenString("yes")
		}
		return color.YellowString("no")
	}
	fmt.Printf("State:        %s\n", st.State)
	fmt.Printf("Read scope:   %s\n", check(st.HasReadScope))
	fmt.Printf("Write scope:  %s\n", check(st.HasWriteScope))
	fmt.Printf("Scopes:       %s\n", strings.Join(st.Scopes, ", "))
	fmt.Printf("Expires:      %s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
