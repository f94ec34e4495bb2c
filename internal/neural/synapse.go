package neural

import (
	"math"
	"math/rand/v2"
)

// SynapseConfig controls synaptic integration and Hebbian learning.
type SynapseConfig struct {
	// LearningRate scales Hebbian reinforcement per firing. Default: 0.01.
	LearningRate float64

	// WeightInitMin and WeightInitMax bound the uniform distribution initial
	// weights are drawn from. Defaults: 0.1 and 0.3.
	WeightInitMin float64
	WeightInitMax float64

	// PlasticityInit is the starting per-weight plasticity factor. Default: 1.0.
	PlasticityInit float64
}

// DefaultSynapseConfig returns the default synapse parameters.
func DefaultSynapseConfig() SynapseConfig {
	return SynapseConfig{
		LearningRate:   0.01,
		WeightInitMin:  0.1,
		WeightInitMax:  0.3,
		PlasticityInit: 1.0,
	}
}

// Synapse owns a neuron's input weight vector and per-weight plasticity. It
// integrates weighted input and applies one-sided Hebbian reinforcement
// followed by a single L2 renormalization.
type Synapse struct {
	weights      []float64
	plasticity   []float64
	learningRate float64
}

// NewSynapse creates a synapse with numInputs connections. Weights start
// uniform in [WeightInitMin, WeightInitMax) so no two populations begin with
// identical responses; plasticity starts at PlasticityInit everywhere.
func NewSynapse(numInputs int, cfg SynapseConfig, rng *rand.Rand) *Synapse {
	weights := make([]float64, numInputs)
	span := cfg.WeightInitMax - cfg.WeightInitMin
	for i := range weights {
		weights[i] = cfg.WeightInitMin + rng.Float64()*span
	}

	plasticity := make([]float64, numInputs)
	for i := range plasticity {
		plasticity[i] = cfg.PlasticityInit
	}

	return &Synapse{
		weights:      weights,
		plasticity:   plasticity,
		learningRate: cfg.LearningRate,
	}
}

// Integrate returns the weighted sum of inputs. Inputs carry sign: inhibitory
// neighbors contribute negative terms.
func (s *Synapse) Integrate(inputs []float64) (float64, error) {
	if len(inputs) != len(s.weights) {
		return 0, &DimensionError{Want: len(s.weights), Got: len(inputs)}
	}

	sum := 0.0
	for i, in := range inputs {
		sum += in * s.weights[i]
	}
	return sum, nil
}

// ApplyLearning reinforces the weights of active inputs and renormalizes.
//
// Only strictly positive inputs strengthen their weight; zero and negative
// inputs leave it untouched. Every reinforcement lands before the single L2
// renormalization, so the weight vector sits at unit norm after any call
// where the post-update norm is nonzero.
func (s *Synapse) ApplyLearning(inputs []float64) error {
	if len(inputs) != len(s.weights) {
		return &DimensionError{Want: len(s.weights), Got: len(inputs)}
	}

	for i, in := range inputs {
		if in > 0 {
			s.weights[i] += s.learningRate * s.plasticity[i] * in
		}
	}

	if norm := s.WeightNorm(); norm > 0 {
		for i := range s.weights {
			s.weights[i] /= norm
		}
	}
	return nil
}

// NumInputs returns the number of input connections.
func (s *Synapse) NumInputs() int {
	return len(s.weights)
}

// Weights returns a copy of the current weight vector.
func (s *Synapse) Weights() []float64 {
	out := make([]float64, len(s.weights))
	copy(out, s.weights)
	return out
}

// WeightNorm returns the L2 norm of the weight vector.
func (s *Synapse) WeightNorm() float64 {
	sum := 0.0
	for _, w := range s.weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// TotalWeight returns the sum of all weights.
func (s *Synapse) TotalWeight() float64 {
	sum := 0.0
	for _, w := range s.weights {
		sum += w
	}
	return sum
}
