package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"runlog/internal/apiclient"
	"runlog/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	Long: `Open the terminal dashboard against a running API (client.api_url,
http://localhost:3000 by default). Start the API first with 'runlog serve'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := apiclient.New(cfg.Client.APIURL, nil)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("API not reachable at %s (start it with `runlog serve`): %w", cfg.Client.APIURL, err)
		}

		p := tea.NewProgram(tui.NewApp(client), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
