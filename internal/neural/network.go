// Package neural implements an energy-constrained plastic neural population.
//
// A Network holds a fixed population of neurons wired by a static topology.
// Each neuron integrates signed inputs through Hebbian-plastic weights,
// modulates the result by its metabolic energy and attention priority, and
// fires against a threshold under a refractory period. A global alert level
// decays each tick and is boosted when population novelty spikes,
// accelerating energy recovery across the population. Updates are
// synchronous: every neuron reads only previous-tick outputs, so update
// order never changes a result.
package neural

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Config holds network-level dynamics parameters.
type Config struct {
	// AlertDecayRate is the fraction of the alert level lost per tick.
	// Default: 0.05.
	AlertDecayRate float64

	// NoveltyAlertThreshold is the average population novelty above which
	// the network boosts its own alert level. Default: 0.5.
	NoveltyAlertThreshold float64

	// AlertSensitivity scales the automatic boost: boost = avg novelty *
	// sensitivity. Default: 0.3.
	AlertSensitivity float64

	// Neuron holds the per-neuron dynamics parameters.
	Neuron NeuronConfig
}

// DefaultConfig returns the default network configuration.
func DefaultConfig() Config {
	return Config{
		AlertDecayRate:        0.05,
		NoveltyAlertThreshold: 0.5,
		AlertSensitivity:      0.3,
		Neuron:                DefaultNeuronConfig(),
	}
}

// Network owns the ordered neuron population and its static connectivity,
// and orchestrates the synchronous per-tick update.
type Network struct {
	neurons   []*Neuron
	adjacency [][]bool
	topology  Topology
	gridSide  int

	tick int

	alertLevel            float64
	alertDecayRate        float64
	avgNovelty            float64
	noveltyAlertThreshold float64
	alertSensitivity      float64
}

// New creates a network of n neurons wired by topo. Neuron ids equal
// population positions; neurons with id < floor(n*inhibitoryRatio) are
// inhibitory, the rest excitatory. All neurons share the firing threshold.
// rng seeds the initial synaptic weights; nil falls back to a time-seeded
// source. Out-of-range ratio and alert parameters are clamped into range.
func New(n int, topo Topology, inhibitoryRatio, threshold float64, cfg Config, rng *rand.Rand) (*Network, error) {
	if n < 1 {
		return nil, fmt.Errorf("population size must be at least 1, got %d", n)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(n)))
	}

	adjacency, side := buildAdjacency(n, topo)

	numInhibitory := int(math.Floor(float64(n) * clamp(inhibitoryRatio, 0, 1)))
	neurons := make([]*Neuron, n)
	for i := range neurons {
		kind := Excitatory
		if i < numInhibitory {
			kind = Inhibitory
		}
		neurons[i] = NewNeuron(i, kind, n, threshold, cfg.Neuron, rng)
	}

	return &Network{
		neurons:               neurons,
		adjacency:             adjacency,
		topology:              topo,
		gridSide:              side,
		alertDecayRate:        clamp(cfg.AlertDecayRate, 0, 1),
		noveltyAlertThreshold: math.Max(cfg.NoveltyAlertThreshold, 0),
		alertSensitivity:      clamp(cfg.AlertSensitivity, 0, 1),
	}, nil
}

// Update advances the simulation by one tick. stimulus must have exactly one
// slot per neuron; slot j is added to input position j of every neuron, so a
// stimulus addresses neuron identity j across the whole population.
//
// The phases run in fixed order: advance the clock, decay the alert level,
// snapshot previous outputs, gather and modulate inputs for the whole
// population, decide all firings, then per neuron apply novelty, priority,
// learning, metabolism and memory. Population novelty is aggregated last and
// may boost the alert level, which becomes visible the next tick.
func (nw *Network) Update(stimulus []float64) error {
	n := len(nw.neurons)
	if len(stimulus) != n {
		return &DimensionError{Want: n, Got: len(stimulus)}
	}

	nw.tick++

	// Alert decays before anything reads it this tick.
	nw.alertLevel *= 1 - nw.alertDecayRate
	nw.mirrorAlert()

	// Snapshot outputs so no neuron sees a current-tick firing while
	// gathering.
	prev := make([]float64, n)
	for i, nu := range nw.neurons {
		prev[i] = nu.output
	}

	gathered := make([][]float64, n)
	modulated := make([]float64, n)
	for i, nu := range nw.neurons {
		inputs := nw.gatherInputs(i, prev, stimulus)
		integrated, err := nu.synapse.Integrate(inputs)
		if err != nil {
			return err
		}
		modulated[i] = nu.metabolic.Modulate(integrated)
		gathered[i] = inputs
	}

	// All potentials are known before the first firing decision.
	for i, nu := range nw.neurons {
		nu.DecideToFire(modulated[i], nw.tick)
	}

	// Novelty reads the start-of-tick trace, so it runs strictly before
	// UpdateMemory for each neuron.
	totalNovelty := 0.0
	for i, nu := range nw.neurons {
		novelty := nu.Novelty(gathered[i])
		totalNovelty += novelty

		nu.UpdatePriority(novelty, 1.0)

		if nu.firing {
			if err := nu.synapse.ApplyLearning(gathered[i]); err != nil {
				return err
			}
		}

		nu.metabolic.UpdateState(nu.firing)
		nu.UpdateMemory(gathered[i])
	}

	// The boost lands after every decision this tick; it only shapes the
	// next one.
	nw.avgNovelty = totalNovelty / float64(n)
	if nw.avgNovelty > nw.noveltyAlertThreshold {
		nw.BoostAlertLevel(nw.avgNovelty * nw.alertSensitivity)
	}

	return nil
}

// gatherInputs builds neuron i's input vector: previous outputs of connected
// neighbors plus the external stimulus.
func (nw *Network) gatherInputs(i int, prev, stimulus []float64) []float64 {
	inputs := make([]float64, len(nw.neurons))
	for j := range inputs {
		if nw.adjacency[i][j] {
			inputs[j] = prev[j]
		}
	}
	for j, s := range stimulus {
		inputs[j] += s
	}
	return inputs
}

func (nw *Network) mirrorAlert() {
	for _, nu := range nw.neurons {
		nu.metabolic.alertLevel = nw.alertLevel
	}
}

// SetAlertLevel sets the global alert level, clamped to [0, 1], and refreshes
// every neuron's copy immediately.
func (nw *Network) SetAlertLevel(level float64) {
	nw.alertLevel = clamp(level, 0, 1)
	nw.mirrorAlert()
}

// BoostAlertLevel raises the global alert level by boost, capped at 1.0, and
// refreshes every neuron's copy immediately.
func (nw *Network) BoostAlertLevel(boost float64) {
	nw.alertLevel += boost
	if nw.alertLevel > 1 {
		nw.alertLevel = 1
	}
	nw.mirrorAlert()
}

// SetNoveltyAlertParams tunes the novelty-alert coupling. Out-of-range
// values are clamped, never rejected: the threshold floors at 0 and the
// sensitivity stays in [0, 1].
func (nw *Network) SetNoveltyAlertParams(threshold, sensitivity float64) {
	nw.noveltyAlertThreshold = math.Max(threshold, 0)
	nw.alertSensitivity = clamp(sensitivity, 0, 1)
}

// NumNeurons returns the population size.
func (nw *Network) NumNeurons() int { return len(nw.neurons) }

// Tick returns the number of completed updates.
func (nw *Network) Tick() int { return nw.tick }

// Topology returns the connectivity structure the network was built with.
func (nw *Network) Topology() Topology { return nw.topology }

// GridSide returns the grid side length, or 0 for non-grid topologies.
func (nw *Network) GridSide() int { return nw.gridSide }

// AlertLevel returns the global alert level.
func (nw *Network) AlertLevel() float64 { return nw.alertLevel }

// NumFiring returns how many neurons fired on the last update.
func (nw *Network) NumFiring() int {
	count := 0
	for _, nu := range nw.neurons {
		if nu.firing {
			count++
		}
	}
	return count
}

// AverageEnergy returns the mean energy across the population.
func (nw *Network) AverageEnergy() float64 {
	total := 0.0
	for _, nu := range nw.neurons {
		total += nu.metabolic.energy
	}
	return total / float64(len(nw.neurons))
}

// AverageNovelty returns the population novelty computed during the last
// update. The value is cached: repeated calls without an intervening Update
// return the same number.
func (nw *Network) AverageNovelty() float64 { return nw.avgNovelty }

// FiringStates returns the firing flag of every neuron, indexed by id.
func (nw *Network) FiringStates() []bool {
	out := make([]bool, len(nw.neurons))
	for i, nu := range nw.neurons {
		out[i] = nu.firing
	}
	return out
}

// EnergyLevels returns the energy of every neuron, indexed by id.
func (nw *Network) EnergyLevels() []float64 {
	out := make([]float64, len(nw.neurons))
	for i, nu := range nw.neurons {
		out[i] = nu.metabolic.energy
	}
	return out
}

// Neuron returns the neuron with the given id, or nil when out of range.
func (nw *Network) Neuron(id int) *Neuron {
	if id < 0 || id >= len(nw.neurons) {
		return nil
	}
	return nw.neurons[id]
}

// Connected reports whether neuron i receives input from neuron j. Out of
// range indices report false.
func (nw *Network) Connected(i, j int) bool {
	if i < 0 || i >= len(nw.neurons) || j < 0 || j >= len(nw.neurons) {
		return false
	}
	return nw.adjacency[i][j]
}

// IndexToCoords converts a neuron id to grid coordinates. ok is false for
// non-grid networks and out-of-range ids.
func (nw *Network) IndexToCoords(index int) (row, col int, ok bool) {
	if nw.gridSide == 0 || index < 0 || index >= len(nw.neurons) {
		return 0, 0, false
	}
	return index / nw.gridSide, index % nw.gridSide, true
}

// CoordsToIndex converts grid coordinates to a neuron id. ok is false for
// non-grid networks and coordinates outside the populated grid.
func (nw *Network) CoordsToIndex(row, col int) (int, bool) {
	if nw.gridSide == 0 || row < 0 || row >= nw.gridSide || col < 0 || col >= nw.gridSide {
		return 0, false
	}
	index := row*nw.gridSide + col
	if index >= len(nw.neurons) {
		return 0, false
	}
	return index, true
}

// NeuronState is a read-only snapshot of one neuron for collaborators such
// as metrics sinks and renderers.
type NeuronState struct {
	ID       int     `json:"id"`
	Kind     string  `json:"kind"`
	Firing   bool    `json:"firing"`
	Output   float64 `json:"output"`
	Energy   float64 `json:"energy"`
	Priority float64 `json:"priority"`
}

// State returns a snapshot of neuron id. ok is false when id is out of range.
func (nw *Network) State(id int) (NeuronState, bool) {
	if id < 0 || id >= len(nw.neurons) {
		return NeuronState{}, false
	}
	nu := nw.neurons[id]
	return NeuronState{
		ID:       nu.id,
		Kind:     nu.kind.String(),
		Firing:   nu.firing,
		Output:   nu.output,
		Energy:   nu.metabolic.energy,
		Priority: nu.metabolic.priority,
	}, true
}

// States returns snapshots of the whole population, indexed by id.
func (nw *Network) States() []NeuronState {
	out := make([]NeuronState, len(nw.neurons))
	for i := range nw.neurons {
		out[i], _ = nw.State(i)
	}
	return out
}
