package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"runlog/internal/analysis"
	"runlog/internal/service"
)

var (
	syncPages       int
	syncSkipDetails bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch recent activities from Strava",
	Long: `Fetch recent activities from Strava and store them locally.

Activities of the primary type (sync.primary_type, "Run" by default) are
enriched with a detail request each. The fetched activities and the total
number stored are printed when the sync finishes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStrava(); err != nil {
			return err
		}
		if cmd.Flags().Changed("pages") {
			cfg.Sync.Pages = syncPages
		}
		if syncSkipDetails {
			cfg.Sync.SkipDetails = true
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		faint := color.New(color.Faint)
		progress := make(chan service.SyncProgress)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for p := range progress {
				faint.Printf("  page %d  %d/%d  %s\n", p.Page, p.Completed, p.Total, p.CurrentActivity)
			}
		}()

		result, err := a.sync.FetchAndPersist(ctx, progress)
		<-done
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Println()
		for _, act := range result.Activities {
			fmt.Printf("  %s  %-30s  %-8s  %6.2f mi\n",
				act.StartDateLocal.Format(analysis.DateLayout),
				analysis.Truncate(act.Name, 30),
				act.Type,
				analysis.KmToMi(act.Distance/service.MetersPerKm),
			)
		}

		color.Green("\n✓ Fetched %d activities, stored %d", result.Fetched, result.Stored)
		if result.Enriched > 0 {
			faint.Printf("  %d enriched with details\n", result.Enriched)
		}
		if result.DetailFailures > 0 {
			color.Yellow("⚠ %d detail requests failed; summaries were stored", result.DetailFailures)
		}
		for _, e := range result.Errors {
			color.Red("✗ %v", e)
		}

		count, err := a.activities.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Total activities in database: %d\n", count)
		return nil
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncPages, "pages", 0, "number of pages to fetch (default sync.pages)")
	syncCmd.Flags().BoolVar(&syncSkipDetails, "skip-details", false, "store summaries without detail requests")
	rootCmd.AddCommand(syncCmd)
}
