package main

import (
	"fmt"
	"os"

	"github.com/nervelab/neuroplex/internal/config"
	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/export"
	"github.com/nervelab/neuroplex/internal/logging"
	"github.com/nervelab/neuroplex/internal/store"
	"github.com/nervelab/neuroplex/internal/visualization"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a freeform simulation",
		Long: `Run a simulation with a single constant stimulus window and report the
final population stats.

Flags override the corresponding config file settings. The stimulus drives
one target neuron with a fixed magnitude between --stimulus-from and
--stimulus-until (inclusive); a magnitude of 0 disables stimulation.

Example:
  neuroplex run --neurons 100 --topology grid2d --ticks 200 --seed 42 \
    --target 55 --stimulus 2.0 --stimulus-from 11 --stimulus-until 99 \
    --csv out/run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			engineCfg := cfg.EngineConfig()
			opts := experiment.Options{
				Seed:   cfg.Network.Seed,
				Engine: &engineCfg,
				Logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
			}

			var artifacts []string

			csvPath, _ := cmd.Flags().GetString("csv")
			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("create csv file: %w", err)
				}
				defer f.Close()
				opts.CSV = f
				artifacts = append(artifacts, csvPath)
			}

			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath != "" {
				rs, err := store.Open(dbPath)
				if err != nil {
					return fmt.Errorf("open run store: %w", err)
				}
				defer rs.Close()
				opts.Store = rs
				artifacts = append(artifacts, dbPath)
			}

			ticks := logging.NewTickLogger(cfg.Output.Dir, cfg.Logging.Level)
			defer ticks.Close()
			opts.Ticks = ticks

			res, err := experiment.Run(cmd.Context(), freeformProtocol(cfg), opts)
			if err != nil {
				return err
			}

			arrowPath, _ := cmd.Flags().GetString("arrow")
			if arrowPath != "" {
				if err := export.WriteArrowFile(arrowPath, res.RunID, res.Snapshots); err != nil {
					return fmt.Errorf("write arrow file: %w", err)
				}
				artifacts = append(artifacts, arrowPath)
			}

			htmlPrefix, _ := cmd.Flags().GetString("html")
			if htmlPrefix != "" {
				path, err := visualization.WriteChartFiles(res.Snapshots, htmlPrefix)
				if err != nil {
					return fmt.Errorf("write chart page: %w", err)
				}
				artifacts = append(artifacts, path)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			return printRunSummary(cmd, jsonOut, buildRunSummary(res, artifacts))
		},
	}

	cmd.Flags().Int("neurons", defaults.Network.Neurons, "Population size")
	cmd.Flags().String("topology", defaults.Network.Topology, "Connectivity: grid2d or fully-connected")
	cmd.Flags().Float64("inhibitory-ratio", defaults.Network.InhibitoryRatio, "Fraction of the population assigned inhibitory")
	cmd.Flags().Float64("threshold", defaults.Network.Threshold, "Firing threshold")
	cmd.Flags().Int("ticks", defaults.Run.Ticks, "Number of simulation ticks")
	cmd.Flags().Uint64("seed", 0, "Weight initialization seed (0 draws one from the clock)")
	cmd.Flags().Int("target", defaults.Run.Target, "Neuron receiving the stimulus")
	cmd.Flags().Float64("stimulus", defaults.Run.Magnitude, "Stimulus magnitude (0 disables)")
	cmd.Flags().Int("stimulus-from", defaults.Run.From, "First stimulated tick")
	cmd.Flags().Int("stimulus-until", defaults.Run.Until, "Last stimulated tick")
	cmd.Flags().String("csv", "", "Write the tick series CSV to this path")
	cmd.Flags().String("db", "", "Record the run in the SQLite store at this path")
	cmd.Flags().String("arrow", "", "Write the tick series to this Arrow IPC file")
	cmd.Flags().String("html", "", "Write a chart page with this file prefix")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("neurons") {
		cfg.Network.Neurons, _ = flags.GetInt("neurons")
	}
	if flags.Changed("topology") {
		cfg.Network.Topology, _ = flags.GetString("topology")
	}
	if flags.Changed("inhibitory-ratio") {
		cfg.Network.InhibitoryRatio, _ = flags.GetFloat64("inhibitory-ratio")
	}
	if flags.Changed("threshold") {
		cfg.Network.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks, _ = flags.GetInt("ticks")
	}
	if flags.Changed("seed") {
		cfg.Network.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("target") {
		cfg.Run.Target, _ = flags.GetInt("target")
	}
	if flags.Changed("stimulus") {
		cfg.Run.Magnitude, _ = flags.GetFloat64("stimulus")
	}
	if flags.Changed("stimulus-from") {
		cfg.Run.From, _ = flags.GetInt("stimulus-from")
	}
	if flags.Changed("stimulus-until") {
		cfg.Run.Until, _ = flags.GetInt("stimulus-until")
	}
}

// freeformProtocol assembles a single-window stimulation protocol from the
// run section of the config.
func freeformProtocol(cfg *config.Config) experiment.Protocol {
	run := cfg.Run
	return experiment.Protocol{
		Name:            "run",
		Description:     "Freeform run with a single constant stimulus window.",
		Neurons:         cfg.Network.Neurons,
		Topology:        cfg.Topology(),
		InhibitoryRatio: cfg.Network.InhibitoryRatio,
		Threshold:       cfg.Network.Threshold,
		Ticks:           run.Ticks,
		Target:          run.Target,
		ChartPrefix:     "run",
		Stimulus: func(tick, neurons int) []float64 {
			inputs := make([]float64, neurons)
			if run.Magnitude != 0 && tick >= run.From && tick <= run.Until {
				inputs[run.Target] = run.Magnitude
			}
			return inputs
		},
	}
}
