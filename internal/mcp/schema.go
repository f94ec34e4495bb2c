// Package mcp provides an MCP (Model Context Protocol) server for neuroplex.
package mcp

import (
	"github.com/nervelab/neuroplex/internal/neural"
)

// SimCreateInput defines the input for the sim_create tool.
type SimCreateInput struct {
	Neurons         int     `json:"neurons" jsonschema:"Population size"`
	Topology        string  `json:"topology,omitempty" jsonschema:"Connectivity: 'fully-connected' or 'grid2d' (default: fully-connected)"`
	InhibitoryRatio float64 `json:"inhibitory_ratio,omitempty" jsonschema:"Fraction of the population assigned inhibitory (0.0-1.0, default: 0.2)"`
	Threshold       float64 `json:"threshold,omitempty" jsonschema:"Firing threshold on modulated potential (default: 0.5)"`
	Seed            uint64  `json:"seed,omitempty" jsonschema:"Seed for synaptic weight initialization (0 draws one from the clock)"`
}

// SimCreateOutput defines the output for the sim_create tool.
type SimCreateOutput struct {
	SessionID  string `json:"session_id" jsonschema:"Handle for sim_step, sim_stats and sim_render calls"`
	Neurons    int    `json:"neurons" jsonschema:"Population size"`
	Topology   string `json:"topology" jsonschema:"Connectivity pattern in use"`
	GridSide   int    `json:"grid_side,omitempty" jsonschema:"Grid side length (grid2d only)"`
	Inhibitory int    `json:"inhibitory" jsonschema:"Number of inhibitory neurons"`
	Seed       uint64 `json:"seed" jsonschema:"Seed actually used"`
}

// SimStepInput defines the input for the sim_step tool.
type SimStepInput struct {
	SessionID string    `json:"session_id" jsonschema:"Session handle from sim_create"`
	Stimulus  []float64 `json:"stimulus,omitempty" jsonschema:"External input vector applied on every stepped tick; shorter vectors are zero-padded to the population size"`
	Ticks     int       `json:"ticks,omitempty" jsonschema:"Number of ticks to advance (default: 1, max: 10000)"`
}

// SimStepOutput defines the output for the sim_step tool.
type SimStepOutput struct {
	SessionID string        `json:"session_id" jsonschema:"Session handle"`
	Stepped   int           `json:"stepped" jsonschema:"Number of ticks executed by this call"`
	Tick      int           `json:"tick" jsonschema:"Session tick counter after stepping"`
	Series    []TickSummary `json:"series" jsonschema:"Population stats for each stepped tick in order"`
}

// TickSummary is one tick's population stats as reported by the tools.
type TickSummary struct {
	Tick        int     `json:"tick" jsonschema:"Tick number"`
	TotalFiring int     `json:"total_firing" jsonschema:"Neurons firing this tick"`
	AvgEnergy   float64 `json:"avg_energy" jsonschema:"Mean energy across the population"`
	AvgNovelty  float64 `json:"avg_novelty" jsonschema:"Mean novelty across the population"`
	AlertLevel  float64 `json:"alert_level" jsonschema:"Global alert level"`
}

// SimStatsInput defines the input for the sim_stats tool.
type SimStatsInput struct {
	SessionID      string `json:"session_id" jsonschema:"Session handle from sim_create"`
	IncludeNeurons bool   `json:"include_neurons,omitempty" jsonschema:"Include the per-neuron state list (default: false)"`
}

// SimStatsOutput defines the output for the sim_stats tool.
type SimStatsOutput struct {
	SessionID  string               `json:"session_id" jsonschema:"Session handle"`
	Tick       int                  `json:"tick" jsonschema:"Ticks simulated so far"`
	Neurons    int                  `json:"neurons" jsonschema:"Population size"`
	Topology   string               `json:"topology" jsonschema:"Connectivity pattern"`
	GridSide   int                  `json:"grid_side,omitempty" jsonschema:"Grid side length (grid2d only)"`
	Firing     int                  `json:"firing" jsonschema:"Neurons firing on the latest tick"`
	AvgEnergy  float64              `json:"avg_energy" jsonschema:"Mean energy across the population"`
	AvgNovelty float64              `json:"avg_novelty" jsonschema:"Mean novelty across the population"`
	AlertLevel float64              `json:"alert_level" jsonschema:"Global alert level"`
	States     []neural.NeuronState `json:"states,omitempty" jsonschema:"Per-neuron states (when include_neurons is set)"`
}

// SimExperimentInput defines the input for the sim_experiment tool.
type SimExperimentInput struct {
	Name    string `json:"name" jsonschema:"Built-in protocol name (see the neuroplex://experiments resource)"`
	Seed    uint64 `json:"seed,omitempty" jsonschema:"Seed for synaptic weight initialization (0 draws one from the clock)"`
	Persist bool   `json:"persist,omitempty" jsonschema:"Record the run and its tick series in the run store (default: false)"`
}

// SimExperimentOutput defines the output for the sim_experiment tool.
type SimExperimentOutput struct {
	Name         string      `json:"name" jsonschema:"Protocol name"`
	Description  string      `json:"description" jsonschema:"What the protocol exercises"`
	Neurons      int         `json:"neurons" jsonschema:"Population size"`
	Topology     string      `json:"topology" jsonschema:"Connectivity pattern"`
	Ticks        int         `json:"ticks" jsonschema:"Ticks simulated"`
	Seed         uint64      `json:"seed" jsonschema:"Seed actually used"`
	RunID        string      `json:"run_id,omitempty" jsonschema:"Run store id (when persisted)"`
	Final        TickSummary `json:"final" jsonschema:"Population stats at the last tick"`
	PeakFiring   int         `json:"peak_firing" jsonschema:"Largest per-tick firing count"`
	PeakNovelty  float64     `json:"peak_novelty" jsonschema:"Largest per-tick average novelty"`
	PeakAlert    float64     `json:"peak_alert" jsonschema:"Largest per-tick alert level"`
	MinAvgEnergy float64     `json:"min_avg_energy" jsonschema:"Smallest per-tick average energy"`
}

// SimRenderInput defines the input for the sim_render tool.
type SimRenderInput struct {
	SessionID string `json:"session_id" jsonschema:"Session handle from sim_create"`
	Format    string `json:"format,omitempty" jsonschema:"Output format: 'dot', 'json' or 'html' (default: json)"`
}

// SimRenderOutput defines the output for the sim_render tool.
type SimRenderOutput struct {
	SessionID string `json:"session_id" jsonschema:"Session handle"`
	Format    string `json:"format" jsonschema:"Format rendered"`
	Content   string `json:"content" jsonschema:"Rendered document"`
}
