package main

import (
	"fmt"

	"github.com/nervelab/neuroplex/internal/export"
	"github.com/nervelab/neuroplex/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a recorded run's tick series",
		Long: `Export a run from the store as CSV (the canonical column layout) or
as an Arrow IPC file carrying the run id in its schema metadata.

Example:
  neuroplex export --run 4f1c... --format arrow --output habituation.arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = cfg.Output.StorePath
			}

			rs, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer rs.Close()

			ctx := cmd.Context()

			runID, _ := cmd.Flags().GetString("run")
			if runID == "" {
				runID, err = latestRunID(ctx, rs)
				if err != nil {
					return err
				}
			}
			meta, err := rs.Run(ctx, runID)
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}
			series, err := rs.TickSeries(ctx, runID)
			if err != nil {
				return fmt.Errorf("load tick series: %w", err)
			}

			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("output")

			switch format {
			case "csv":
				if outPath == "" {
					outPath = meta.Name + ".csv"
				}
				if err := export.WriteCSVFile(outPath, export.Columns, export.TickRows(series)); err != nil {
					return err
				}
			case "arrow":
				if outPath == "" {
					outPath = meta.Name + ".arrow"
				}
				if err := export.WriteArrowFile(outPath, runID, series); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (use 'csv' or 'arrow')", format)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d ticks of run %s to %s\n", len(series), runID, outPath)
			return nil
		},
	}

	cmd.Flags().String("db", "", "Run store path (default: config store path)")
	cmd.Flags().String("run", "", "Run id to export (default: the latest run)")
	cmd.Flags().String("format", "csv", "Export format: csv or arrow")
	cmd.Flags().StringP("output", "o", "", "Output file path")

	return cmd
}
