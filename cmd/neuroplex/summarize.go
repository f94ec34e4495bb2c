package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/spf13/cobra"
)

// runSummary is the result view printed after run and experiment commands.
type runSummary struct {
	Name              string   `json:"name"`
	RunID             string   `json:"run_id,omitempty"`
	Seed              uint64   `json:"seed"`
	Neurons           int      `json:"neurons"`
	Topology          string   `json:"topology"`
	Ticks             int      `json:"ticks"`
	TotalFirings      int      `json:"total_firings"`
	PeakFiring        int      `json:"peak_firing"`
	FinalTargetEnergy float64  `json:"final_target_energy"`
	FinalAvgEnergy    float64  `json:"final_avg_energy"`
	FinalAlertLevel   float64  `json:"final_alert_level"`
	Artifacts         []string `json:"artifacts,omitempty"`
}

func buildRunSummary(res *experiment.Result, artifacts []string) runSummary {
	totalFirings := 0
	peakFiring := 0
	for _, m := range res.Snapshots {
		totalFirings += m.TotalFiring
		if m.TotalFiring > peakFiring {
			peakFiring = m.TotalFiring
		}
	}
	final := res.Snapshots[len(res.Snapshots)-1]

	return runSummary{
		Name:              res.Protocol.Name,
		RunID:             res.RunID,
		Seed:              res.Seed,
		Neurons:           res.Protocol.Neurons,
		Topology:          res.Protocol.Topology.String(),
		Ticks:             len(res.Snapshots),
		TotalFirings:      totalFirings,
		PeakFiring:        peakFiring,
		FinalTargetEnergy: final.TargetEnergy,
		FinalAvgEnergy:    final.AvgEnergy,
		FinalAlertLevel:   final.AlertLevel,
		Artifacts:         artifacts,
	}
}

func printRunSummary(cmd *cobra.Command, jsonOut bool, s runSummary) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(s)
	}

	fmt.Fprintf(out, "%s: %s neurons (%s), %s ticks, seed %d\n",
		s.Name, humanize.Comma(int64(s.Neurons)), s.Topology, humanize.Comma(int64(s.Ticks)), s.Seed)
	fmt.Fprintf(out, "  firings: %s total, %s peak per tick\n",
		humanize.Comma(int64(s.TotalFirings)), humanize.Comma(int64(s.PeakFiring)))
	fmt.Fprintf(out, "  final: target energy %.2f, avg energy %.2f, alert %.3f\n",
		s.FinalTargetEnergy, s.FinalAvgEnergy, s.FinalAlertLevel)
	if s.RunID != "" {
		fmt.Fprintf(out, "  run id: %s\n", s.RunID)
	}
	for _, a := range s.Artifacts {
		fmt.Fprintf(out, "  wrote %s\n", a)
	}
	return nil
}
