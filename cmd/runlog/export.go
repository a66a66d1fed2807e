package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"runlog/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export activities to Parquet",
	Long: `Write every stored activity, of any type, to a Parquet file with one row
per activity. Distances are included in both kilometers and miles.

EXAMPLES:

  runlog export --out activities.parquet
  duckdb -c "SELECT type, sum(distance_mi) FROM 'activities.parquet' GROUP BY 1"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutput == "" {
			return errors.New("--out is required")
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := export.WriteFile(cmd.Context(), db, exportOutput)
		if err != nil {
			return err
		}
		color.Green("✓ Exported %d activities to %s", n, exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "output file")
	rootCmd.AddCommand(exportCmd)
}
