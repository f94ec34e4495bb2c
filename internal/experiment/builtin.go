package experiment

import (
	"maps"
	"slices"
	"strconv"

	"github.com/nervelab/neuroplex/internal/export"
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

// The built-in protocols share a 10x10 grid population.
const (
	builtinNeurons   = 100
	builtinRatio     = 0.2
	builtinThreshold = 0.2

	habituationTarget = 55 // grid center
	noveltyNeuronA    = 33 // upper-left region
	noveltyNeuronB    = 66 // lower-right region
	urgentTarget      = 55
	urgentEventTick   = 50
)

// Habituation drives one neuron with a constant strong stimulus. As the
// neuron burns energy its modulated potential drops below threshold and
// firing thins out, even though the stimulus never changes.
func Habituation() Protocol {
	return Protocol{
		Name:            "habituation",
		Description:     "Response to a constant stimulus declines as the target neuron depletes its energy.",
		Neurons:         builtinNeurons,
		Topology:        neural.Grid2D,
		InhibitoryRatio: builtinRatio,
		Threshold:       builtinThreshold,
		Ticks:           200,
		Target:          habituationTarget,
		LogEvery:        20,
		ChartPrefix:     "exp1_habituation",
		Columns:         []string{"time", "target_firing", "target_energy", "total_firing", "avg_energy"},
		Row: func(m store.TickMetrics, _ map[int]NeuronTrace) []string {
			return []string{
				strconv.Itoa(m.Tick),
				export.FormatFiring(m.TargetFiring),
				strconv.FormatFloat(m.TargetEnergy, 'f', 2, 64),
				strconv.Itoa(m.TotalFiring),
				strconv.FormatFloat(m.AvgEnergy, 'f', 2, 64),
			}
		},
		Stimulus: func(tick, neurons int) []float64 {
			inputs := make([]float64, neurons)
			if tick > 10 && tick < 100 {
				inputs[habituationTarget] = 2.0
			}
			return inputs
		},
	}
}

// NoveltyDetection familiarizes the population with pattern A for 100 ticks,
// then alternates A with a never-seen pattern B every 10 ticks. B's novelty
// raises its neuron's priority well above A's habituated level.
func NoveltyDetection() Protocol {
	return Protocol{
		Name:            "novelty-detection",
		Description:     "A familiar pattern and a novel one compete; novelty drives priority and alert level.",
		Neurons:         builtinNeurons,
		Topology:        neural.Grid2D,
		InhibitoryRatio: builtinRatio,
		Threshold:       builtinThreshold,
		Ticks:           200,
		Target:          noveltyNeuronA,
		Tracked: []TrackedNeuron{
			{ID: noveltyNeuronA, Label: "neuron_a_familiar"},
			{ID: noveltyNeuronB, Label: "neuron_b_novel"},
		},
		LogEvery:    25,
		ChartPrefix: "exp2",
		Columns: []string{
			"time",
			"neuron_a_firing", "neuron_a_priority", "neuron_a_energy",
			"neuron_b_firing", "neuron_b_priority", "neuron_b_energy",
			"total_firing", "alert_level",
		},
		Row: func(m store.TickMetrics, traces map[int]NeuronTrace) []string {
			a := traces[noveltyNeuronA]
			b := traces[noveltyNeuronB]
			return []string{
				strconv.Itoa(m.Tick),
				export.FormatFiring(a.Firing),
				strconv.FormatFloat(a.Priority, 'f', 3, 64),
				strconv.FormatFloat(a.Energy, 'f', 2, 64),
				export.FormatFiring(b.Firing),
				strconv.FormatFloat(b.Priority, 'f', 3, 64),
				strconv.FormatFloat(b.Energy, 'f', 2, 64),
				strconv.Itoa(m.TotalFiring),
				strconv.FormatFloat(m.AlertLevel, 'f', 3, 64),
			}
		},
		Stimulus: func(tick, neurons int) []float64 {
			inputs := make([]float64, neurons)
			switch {
			case tick < 100:
				// Familiarization: pattern A only.
				inputs[noveltyNeuronA] = 2.0
			case ((tick-100)/10)%2 == 0:
				inputs[noveltyNeuronA] = 2.0
			default:
				inputs[noveltyNeuronB] = 2.0
			}
			return inputs
		},
	}
}

// UrgentEvent raises the alert level to maximum mid-run and watches the
// population recover energy faster while the alert decays back down.
func UrgentEvent() Protocol {
	return Protocol{
		Name:            "urgent-event",
		Description:     "A full alert at tick 50 accelerates energy recovery across the population.",
		Neurons:         builtinNeurons,
		Topology:        neural.Grid2D,
		InhibitoryRatio: builtinRatio,
		Threshold:       builtinThreshold,
		Ticks:           150,
		Target:          urgentTarget,
		LogEvery:        15,
		ChartPrefix:     "exp3_urgent_event",
		Columns:         []string{"time", "target_firing", "target_energy", "total_firing", "avg_energy", "alert_level"},
		Row: func(m store.TickMetrics, _ map[int]NeuronTrace) []string {
			return []string{
				strconv.Itoa(m.Tick),
				export.FormatFiring(m.TargetFiring),
				strconv.FormatFloat(m.TargetEnergy, 'f', 2, 64),
				strconv.Itoa(m.TotalFiring),
				strconv.FormatFloat(m.AvgEnergy, 'f', 2, 64),
				strconv.FormatFloat(m.AlertLevel, 'f', 3, 64),
			}
		},
		Stimulus: func(tick, neurons int) []float64 {
			inputs := make([]float64, neurons)
			if tick < 60 {
				inputs[urgentTarget] = 2.0
			}
			return inputs
		},
		BeforeTick: func(tick int, net *neural.Network) {
			if tick == urgentEventTick {
				net.SetAlertLevel(1.0)
			}
		},
	}
}

// Registry returns the built-in protocols keyed by name.
func Registry() map[string]Protocol {
	return map[string]Protocol{
		"habituation":       Habituation(),
		"novelty-detection": NoveltyDetection(),
		"urgent-event":      UrgentEvent(),
	}
}

// Names lists the built-in protocol names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(Registry()))
}

// Lookup finds a built-in protocol by name.
func Lookup(name string) (Protocol, bool) {
	p, ok := Registry()[name]
	return p, ok
}
