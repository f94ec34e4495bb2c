package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/nervelab/neuroplex/internal/store"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded simulation runs",
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

			runs, err := rs.Runs(cmd.Context())
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOut {
				return json.NewEncoder(out).Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded in %s\n", dbPath)
				return nil
			}

			fmt.Fprintf(out, "%-36s  %-18s  %-8s  %-15s  %-6s  %-8s  %s\n",
				"ID", "NAME", "NEURONS", "TOPOLOGY", "TICKS", "STATUS", "STARTED")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s  %-18s  %-8d  %-15s  %-6d  %-8s  %s\n",
					r.ID, r.Name, r.Neurons, r.Topology, r.Ticks, r.Status, humanize.Time(r.StartedAt))
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "Run store path (default: config store path)")

	return cmd
}
