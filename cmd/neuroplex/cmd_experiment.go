package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/logging"
	"github.com/nervelab/neuroplex/internal/store"
	"github.com/nervelab/neuroplex/internal/visualization"
	"github.com/spf13/cobra"
)

func newExperimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run and inspect the built-in experiments",
	}

	cmd.AddCommand(
		newExperimentListCmd(),
		newExperimentRunCmd(),
	)

	return cmd
}

func newExperimentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOut {
				type entry struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					Neurons     int    `json:"neurons"`
					Topology    string `json:"topology"`
					Ticks       int    `json:"ticks"`
				}
				entries := make([]entry, 0, len(experiment.Names()))
				for _, name := range experiment.Names() {
					p, _ := experiment.Lookup(name)
					entries = append(entries, entry{
						Name:        p.Name,
						Description: p.Description,
						Neurons:     p.Neurons,
						Topology:    p.Topology.String(),
						Ticks:       p.Ticks,
					})
				}
				return json.NewEncoder(out).Encode(entries)
			}

			for _, name := range experiment.Names() {
				p, _ := experiment.Lookup(name)
				fmt.Fprintf(out, "%-18s %s\n", p.Name, p.Description)
				fmt.Fprintf(out, "%-18s %d neurons (%s), %d ticks\n", "", p.Neurons, p.Topology, p.Ticks)
			}
			return nil
		},
	}
}

func newExperimentRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Run a built-in experiment",
		Long: `Run a built-in experiment and write its artifacts to the output
directory: the CSV log in the experiment's original column layout, and
(with --html) chart pages for the run and each tracked neuron.

Example:
  neuroplex experiment run habituation --seed 42 --out results --html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			p, ok := experiment.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown experiment %q (built-in: %s)", name, strings.Join(experiment.Names(), ", "))
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				outDir = cfg.Output.Dir
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			seed, _ := cmd.Flags().GetUint64("seed")
			opts := experiment.Options{
				Seed:   seed,
				Logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
			}

			var artifacts []string

			csvPath := filepath.Join(outDir, strings.ReplaceAll(name, "-", "_")+"_log.csv")
			f, err := os.Create(csvPath)
			if err != nil {
				return fmt.Errorf("create csv log: %w", err)
			}
			defer f.Close()
			opts.CSV = f
			artifacts = append(artifacts, csvPath)

			dbPath, _ := cmd.Flags().GetString("db")
			if persist, _ := cmd.Flags().GetBool("persist"); persist && dbPath == "" {
				dbPath = cfg.Output.StorePath
			}
			if dbPath != "" {
				rs, err := store.Open(dbPath)
				if err != nil {
					return fmt.Errorf("open run store: %w", err)
				}
				defer rs.Close()
				opts.Store = rs
				artifacts = append(artifacts, dbPath)
			}

			ticks := logging.NewTickLogger(outDir, cfg.Logging.Level)
			defer ticks.Close()
			opts.Ticks = ticks

			res, err := experiment.Run(cmd.Context(), p, opts)
			if err != nil {
				return err
			}

			if html, _ := cmd.Flags().GetBool("html"); html {
				path, err := visualization.WriteChartFiles(res.Snapshots, filepath.Join(outDir, p.ChartPrefix))
				if err != nil {
					return fmt.Errorf("write chart page: %w", err)
				}
				artifacts = append(artifacts, path)

				for _, tn := range p.Tracked {
					series := res.TrackedSeries(tn.ID)
					prefix := filepath.Join(outDir, p.ChartPrefix+"_"+tn.Label)
					path, err := visualization.WriteChartFiles(series, prefix)
					if err != nil {
						return fmt.Errorf("write chart page for %s: %w", tn.Label, err)
					}
					artifacts = append(artifacts, path)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			return printRunSummary(cmd, jsonOut, buildRunSummary(res, artifacts))
		},
	}

	cmd.Flags().Uint64("seed", 0, "Weight initialization seed (0 draws one from the clock)")
	cmd.Flags().String("out", "", "Output directory (default: config output dir)")
	cmd.Flags().String("db", "", "Record the run in the SQLite store at this path")
	cmd.Flags().Bool("persist", false, "Record the run in the config store path")
	cmd.Flags().Bool("html", false, "Write chart pages alongside the CSV log")

	return cmd
}
