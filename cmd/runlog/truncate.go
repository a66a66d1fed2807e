package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var truncateYes bool

var truncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Delete all stored activities and tokens",
	Long: `Delete every stored activity and the stored Strava token. Training blocks
are kept. Requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !truncateYes {
			return errors.New("refusing to truncate without --yes")
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		activities, tokens, err := db.Truncate(cmd.Context())
		if err != nil {
			return fmt.Errorf("truncating: %w", err)
		}
		color.Yellow("✗ Deleted %d activities and %d tokens", activities, tokens)
		return nil
	},
}

func init() {
	truncateCmd.Flags().BoolVar(&truncateYes, "yes", false, "confirm deletion")
	rootCmd.AddCommand(truncateCmd)
}
