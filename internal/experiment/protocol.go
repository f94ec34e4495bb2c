// Package experiment defines stimulation protocols and a runner that drives
// a network through them, collecting a per-tick metrics series for CSV logs,
// the run store, and rendering.
package experiment

import (
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

// TrackedNeuron names a neuron whose state a protocol samples every tick
// in addition to the target. The label feeds chart file prefixes.
type TrackedNeuron struct {
	ID    int
	Label string
}

// NeuronTrace is one tracked neuron's state at one tick.
type NeuronTrace struct {
	Firing   bool
	Priority float64
	Energy   float64
}

// Protocol describes one experiment: the population to build, how long to
// run it, the stimulus fed in each tick, and the layout of its CSV log.
// Ticks are numbered from zero; a tick's stimulus and BeforeTick hook see
// the tick number whose metrics row they produce.
type Protocol struct {
	Name            string
	Description     string
	Neurons         int
	Topology        neural.Topology
	InhibitoryRatio float64
	Threshold       float64
	Ticks           int

	// Target is the neuron the per-tick metrics row focuses on.
	Target int

	// Tracked neurons are sampled into Result.Traces each tick. The target
	// does not need to be listed.
	Tracked []TrackedNeuron

	// LogEvery is the progress log cadence in ticks. Zero selects a default.
	LogEvery int

	// ChartPrefix names chart files rendered from this protocol's series.
	// Tracked neurons get "<prefix>_<label>".
	ChartPrefix string

	// Columns and Row define the CSV layout. When Row is nil the full
	// canonical layout is used.
	Columns []string
	Row     func(m store.TickMetrics, traces map[int]NeuronTrace) []string

	// Stimulus produces the external input vector for a tick. Nil means
	// no external input.
	Stimulus func(tick, neurons int) []float64

	// BeforeTick runs ahead of each update, for protocols that manipulate
	// the network mid-run.
	BeforeTick func(tick int, net *neural.Network)
}
