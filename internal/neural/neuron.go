package neural

import (
	"math"
	"math/rand/v2"
)

// Kind distinguishes excitatory neurons from inhibitory ones.
type Kind int

const (
	// Excitatory neurons emit +1 when firing.
	Excitatory Kind = iota
	// Inhibitory neurons emit -1 when firing.
	Inhibitory
)

func (k Kind) String() string {
	if k == Inhibitory {
		return "inhibitory"
	}
	return "excitatory"
}

// NeuronConfig holds per-neuron dynamics parameters.
type NeuronConfig struct {
	// RefractoryPeriod is the minimum tick gap between two firings. Default: 5.
	RefractoryPeriod int

	// MemoryAlpha is the EMA rate of the contextual memory trace. Default: 0.1.
	MemoryAlpha float64

	Synapse   SynapseConfig
	Metabolic MetabolicConfig
}

// DefaultNeuronConfig returns the default neuron dynamics parameters.
func DefaultNeuronConfig() NeuronConfig {
	return NeuronConfig{
		RefractoryPeriod: 5,
		MemoryAlpha:      0.1,
		Synapse:          DefaultSynapseConfig(),
		Metabolic:        DefaultMetabolicConfig(),
	}
}

// Neuron composes a synapse, a metabolic unit and a contextual memory trace,
// and runs the fire-decision state machine. Neurons are created once at
// network construction and mutated in place every tick; they are never
// destroyed during a run.
type Neuron struct {
	id   int
	kind Kind

	synapse   *Synapse
	metabolic *Metabolic

	// memoryTrace is an exponential moving average of past input vectors.
	memoryTrace []float64

	// lastFireTick is the tick of the most recent firing. -1 means the
	// neuron has never fired and is never refractory.
	lastFireTick int

	threshold float64
	firing    bool
	output    float64

	refractoryPeriod int
	memoryAlpha      float64
}

// NewNeuron creates a neuron with numInputs input slots, one per potential
// presynaptic source.
func NewNeuron(id int, kind Kind, numInputs int, threshold float64, cfg NeuronConfig, rng *rand.Rand) *Neuron {
	return &Neuron{
		id:               id,
		kind:             kind,
		synapse:          NewSynapse(numInputs, cfg.Synapse, rng),
		metabolic:        NewMetabolic(cfg.Metabolic),
		memoryTrace:      make([]float64, numInputs),
		lastFireTick:     -1,
		threshold:        threshold,
		refractoryPeriod: cfg.RefractoryPeriod,
		memoryAlpha:      cfg.MemoryAlpha,
	}
}

// DecideToFire runs the firing decision for one tick. Firing state is reset
// on every call; the neuron fires only when the modulated potential strictly
// exceeds the threshold outside the refractory window.
func (n *Neuron) DecideToFire(modulated float64, tick int) {
	refractory := n.lastFireTick >= 0 && tick-n.lastFireTick < n.refractoryPeriod

	n.firing = false
	n.output = 0

	if modulated > n.threshold && !refractory {
		n.firing = true
		n.lastFireTick = tick
		if n.kind == Inhibitory {
			n.output = -1
		} else {
			n.output = 1
		}
	}
}

// Novelty measures how unfamiliar the current inputs are: the mean absolute
// difference between inputs and the memory trace. Zero means completely
// familiar. It must run against the start-of-tick trace, before UpdateMemory
// folds the same inputs in.
func (n *Neuron) Novelty(inputs []float64) float64 {
	if len(n.memoryTrace) == 0 {
		return 0
	}

	total := 0.0
	for i := range n.memoryTrace {
		total += math.Abs(inputs[i] - n.memoryTrace[i])
	}
	return total / float64(len(n.memoryTrace))
}

// UpdateMemory folds the current inputs into the memory trace as an
// exponential moving average with rate memoryAlpha.
func (n *Neuron) UpdateMemory(inputs []float64) {
	for i := range n.memoryTrace {
		n.memoryTrace[i] = (1-n.memoryAlpha)*n.memoryTrace[i] + n.memoryAlpha*inputs[i]
	}
}

// UpdatePriority raises the metabolic priority with novelty, capped at three
// times baseline. Novelty is non-negative, so priority never drops below 1.
func (n *Neuron) UpdatePriority(novelty, sensitivity float64) {
	p := 1.0 + novelty*sensitivity
	if p > 3.0 {
		p = 3.0
	}
	n.metabolic.priority = p
}

// Step runs the full per-neuron pipeline for standalone use: integrate,
// modulate, decide, learn when firing, metabolic update, memory update. It
// returns the output signal for this tick.
//
// A running Network never calls Step; its tick loop interleaves novelty and
// priority updates between these stages (see Network.Update).
func (n *Neuron) Step(inputs []float64, tick int) (float64, error) {
	integrated, err := n.synapse.Integrate(inputs)
	if err != nil {
		return 0, err
	}
	modulated := n.metabolic.Modulate(integrated)

	n.DecideToFire(modulated, tick)

	if n.firing {
		if err := n.synapse.ApplyLearning(inputs); err != nil {
			return 0, err
		}
	}

	n.metabolic.UpdateState(n.firing)
	n.UpdateMemory(inputs)

	return n.output, nil
}

// ModulatedPotential returns the potential the neuron would see for inputs,
// without mutating any state.
func (n *Neuron) ModulatedPotential(inputs []float64) (float64, error) {
	integrated, err := n.synapse.Integrate(inputs)
	if err != nil {
		return 0, err
	}
	return n.metabolic.Modulate(integrated), nil
}

// ID returns the neuron's population index.
func (n *Neuron) ID() int { return n.id }

// Kind returns whether the neuron is excitatory or inhibitory.
func (n *Neuron) Kind() Kind { return n.kind }

// IsFiring reports whether the neuron fired on its most recent tick.
func (n *Neuron) IsFiring() bool { return n.firing }

// Output returns the current output signal: +1, -1 or 0.
func (n *Neuron) Output() float64 { return n.output }

// Threshold returns the firing threshold.
func (n *Neuron) Threshold() float64 { return n.threshold }

// Energy returns the current metabolic energy level.
func (n *Neuron) Energy() float64 { return n.metabolic.Energy() }

// Priority returns the current attention priority.
func (n *Neuron) Priority() float64 { return n.metabolic.Priority() }

// AlertLevel returns this neuron's copy of the network alert level.
func (n *Neuron) AlertLevel() float64 { return n.metabolic.AlertLevel() }

// LastFireTick returns the tick of the most recent firing, or -1 if the
// neuron has never fired.
func (n *Neuron) LastFireTick() int { return n.lastFireTick }

// MemoryTrace returns a copy of the contextual memory trace.
func (n *Neuron) MemoryTrace() []float64 {
	out := make([]float64, len(n.memoryTrace))
	copy(out, n.memoryTrace)
	return out
}

// Weights returns a copy of the synaptic weight vector.
func (n *Neuron) Weights() []float64 { return n.synapse.Weights() }

// SetRefractoryPeriod overrides the refractory period.
func (n *Neuron) SetRefractoryPeriod(ticks int) {
	n.refractoryPeriod = ticks
}

// SetMemoryAlpha sets the memory EMA rate, clamped to [0, 1].
func (n *Neuron) SetMemoryAlpha(alpha float64) {
	n.memoryAlpha = clamp(alpha, 0, 1)
}
