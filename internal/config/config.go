// Package config provides unified configuration loading for neuroplex.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nervelab/neuroplex/internal/neural"
	"gopkg.in/yaml.v3"
)

// Config contains all neuroplex configuration settings.
type Config struct {
	// Network contains population and topology settings.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Synapse contains weight initialization and learning settings.
	Synapse SynapseConfig `json:"synapse" yaml:"synapse"`

	// Metabolic contains the per-neuron energy budget settings.
	Metabolic MetabolicConfig `json:"metabolic" yaml:"metabolic"`

	// Neuron contains firing and memory dynamics settings.
	Neuron NeuronConfig `json:"neuron" yaml:"neuron"`

	// Alert contains the novelty-alert coupling settings.
	Alert AlertConfig `json:"alert" yaml:"alert"`

	// Run contains freeform simulation run settings.
	Run RunConfig `json:"run" yaml:"run"`

	// Output contains artifact and persistence settings.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and tick logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// NetworkConfig configures the population and its wiring.
type NetworkConfig struct {
	// Neurons is the population size.
	Neurons int `json:"neurons" yaml:"neurons"`

	// Topology selects connectivity: "grid2d" (default) or "fully-connected".
	Topology string `json:"topology" yaml:"topology"`

	// InhibitoryRatio is the fraction of the population made inhibitory,
	// assigned from id 0 upward. Range: 0.0 to 1.0.
	InhibitoryRatio float64 `json:"inhibitory_ratio" yaml:"inhibitory_ratio"`

	// Threshold is the firing threshold shared by all neurons.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Seed seeds the weight initialization RNG. 0 means time-seeded, so two
	// runs with the same nonzero seed reproduce each other exactly.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// SynapseConfig configures integration and Hebbian learning.
type SynapseConfig struct {
	// LearningRate scales reinforcement applied on each firing.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// WeightInitMin and WeightInitMax bound the uniform initial weights.
	WeightInitMin float64 `json:"weight_init_min" yaml:"weight_init_min"`
	WeightInitMax float64 `json:"weight_init_max" yaml:"weight_init_max"`

	// PlasticityInit is the starting per-weight plasticity factor.
	PlasticityInit float64 `json:"plasticity_init" yaml:"plasticity_init"`
}

// MetabolicConfig configures the energy budget of each neuron.
type MetabolicConfig struct {
	// MaxEnergy is the energy ceiling and starting level.
	MaxEnergy float64 `json:"max_energy" yaml:"max_energy"`

	// FireCost is the energy consumed by one firing.
	FireCost float64 `json:"fire_cost" yaml:"fire_cost"`

	// MaintenanceCost is charged every tick, firing or not.
	MaintenanceCost float64 `json:"maintenance_cost" yaml:"maintenance_cost"`

	// RecoveryRate scales deficit-proportional recovery at rest.
	RecoveryRate float64 `json:"recovery_rate" yaml:"recovery_rate"`
}

// NeuronConfig configures firing and contextual memory dynamics.
type NeuronConfig struct {
	// RefractoryPeriod is the minimum tick gap between two firings.
	RefractoryPeriod int `json:"refractory_period" yaml:"refractory_period"`

	// MemoryAlpha is the EMA rate of the memory trace. Range: 0.0 to 1.0.
	MemoryAlpha float64 `json:"memory_alpha" yaml:"memory_alpha"`
}

// AlertConfig configures the global alert level and its novelty coupling.
type AlertConfig struct {
	// DecayRate is the fraction of the alert level lost per tick.
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`

	// NoveltyThreshold is the average population novelty above which the
	// network boosts its own alert level.
	NoveltyThreshold float64 `json:"novelty_threshold" yaml:"novelty_threshold"`

	// Sensitivity scales the automatic boost. Range: 0.0 to 1.0.
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"`
}

// RunConfig configures the freeform `neuroplex run` simulation.
type RunConfig struct {
	// Ticks is the number of simulation steps.
	Ticks int `json:"ticks" yaml:"ticks"`

	// Target is the neuron id receiving the constant stimulus.
	Target int `json:"target" yaml:"target"`

	// Magnitude is the stimulus strength; 0 disables stimulation.
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`

	// From and Until bound the stimulation window, inclusive on both ends.
	From  int `json:"from" yaml:"from"`
	Until int `json:"until" yaml:"until"`
}

// OutputConfig configures where run artifacts land.
type OutputConfig struct {
	// Dir receives CSV logs, chart pages and Arrow exports.
	Dir string `json:"dir" yaml:"dir"`

	// StorePath is the SQLite database holding run history.
	// Supports ${VAR} syntax for env vars.
	StorePath string `json:"store_path" yaml:"store_path"`
}

// LoggingConfig configures neuroplex's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables tick logging to <output dir>/ticks.jsonl.
	// "trace" additionally includes per-neuron firing and energy detail.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults: a 100-neuron grid with
// 20% inhibitory neurons, the standard energy budget, and a 200-tick run
// stimulating neuron 55.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Neurons:         100,
			Topology:        "grid2d",
			InhibitoryRatio: 0.2,
			Threshold:       0.2,
		},
		Synapse: SynapseConfig{
			LearningRate:   0.01,
			WeightInitMin:  0.1,
			WeightInitMax:  0.3,
			PlasticityInit: 1.0,
		},
		Metabolic: MetabolicConfig{
			MaxEnergy:       100,
			FireCost:        10,
			MaintenanceCost: 0.1,
			RecoveryRate:    2.0,
		},
		Neuron: NeuronConfig{
			RefractoryPeriod: 5,
			MemoryAlpha:      0.1,
		},
		Alert: AlertConfig{
			DecayRate:        0.05,
			NoveltyThreshold: 0.5,
			Sensitivity:      0.3,
		},
		Run: RunConfig{
			Ticks:     200,
			Target:    55,
			Magnitude: 2.0,
			From:      11,
			Until:     99,
		},
		Output: OutputConfig{
			Dir:       "out",
			StorePath: filepath.Join("out", "runs.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.neuroplex/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".neuroplex", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the store path
	config.Output.StorePath = expandEnvVars(config.Output.StorePath)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Network.Neurons < 1 {
		return fmt.Errorf("network.neurons must be at least 1, got %d", c.Network.Neurons)
	}
	if _, err := neural.ParseTopology(c.Network.Topology); err != nil {
		return fmt.Errorf("network.topology: %w (valid: grid2d, fully-connected)", err)
	}
	if c.Network.InhibitoryRatio < 0 || c.Network.InhibitoryRatio > 1 {
		return fmt.Errorf("network.inhibitory_ratio must be between 0 and 1, got %f", c.Network.InhibitoryRatio)
	}

	if c.Synapse.LearningRate < 0 {
		return fmt.Errorf("synapse.learning_rate must be non-negative, got %f", c.Synapse.LearningRate)
	}
	if c.Synapse.WeightInitMin > c.Synapse.WeightInitMax {
		return fmt.Errorf("synapse.weight_init_min %f exceeds weight_init_max %f",
			c.Synapse.WeightInitMin, c.Synapse.WeightInitMax)
	}

	if c.Metabolic.MaxEnergy <= 0 {
		return fmt.Errorf("metabolic.max_energy must be positive, got %f", c.Metabolic.MaxEnergy)
	}
	if c.Metabolic.FireCost < 0 || c.Metabolic.MaintenanceCost < 0 || c.Metabolic.RecoveryRate < 0 {
		return fmt.Errorf("metabolic costs and recovery must be non-negative")
	}

	if c.Neuron.RefractoryPeriod < 0 {
		return fmt.Errorf("neuron.refractory_period must be non-negative, got %d", c.Neuron.RefractoryPeriod)
	}
	if c.Neuron.MemoryAlpha < 0 || c.Neuron.MemoryAlpha > 1 {
		return fmt.Errorf("neuron.memory_alpha must be between 0 and 1, got %f", c.Neuron.MemoryAlpha)
	}

	if c.Alert.DecayRate < 0 || c.Alert.DecayRate > 1 {
		return fmt.Errorf("alert.decay_rate must be between 0 and 1, got %f", c.Alert.DecayRate)
	}
	if c.Alert.NoveltyThreshold < 0 {
		return fmt.Errorf("alert.novelty_threshold must be non-negative, got %f", c.Alert.NoveltyThreshold)
	}
	if c.Alert.Sensitivity < 0 || c.Alert.Sensitivity > 1 {
		return fmt.Errorf("alert.sensitivity must be between 0 and 1, got %f", c.Alert.Sensitivity)
	}

	if c.Run.Ticks < 1 {
		return fmt.Errorf("run.ticks must be at least 1, got %d", c.Run.Ticks)
	}
	if c.Run.Target < 0 || c.Run.Target >= c.Network.Neurons {
		return fmt.Errorf("run.target %d outside population of %d", c.Run.Target, c.Network.Neurons)
	}
	if c.Run.From > c.Run.Until {
		return fmt.Errorf("run.from %d exceeds run.until %d", c.Run.From, c.Run.Until)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// EngineConfig assembles the engine parameters from the file sections.
func (c *Config) EngineConfig() neural.Config {
	return neural.Config{
		AlertDecayRate:        c.Alert.DecayRate,
		NoveltyAlertThreshold: c.Alert.NoveltyThreshold,
		AlertSensitivity:      c.Alert.Sensitivity,
		Neuron: neural.NeuronConfig{
			RefractoryPeriod: c.Neuron.RefractoryPeriod,
			MemoryAlpha:      c.Neuron.MemoryAlpha,
			Synapse: neural.SynapseConfig{
				LearningRate:   c.Synapse.LearningRate,
				WeightInitMin:  c.Synapse.WeightInitMin,
				WeightInitMax:  c.Synapse.WeightInitMax,
				PlasticityInit: c.Synapse.PlasticityInit,
			},
			Metabolic: neural.MetabolicConfig{
				MaxEnergy:       c.Metabolic.MaxEnergy,
				FireCost:        c.Metabolic.FireCost,
				MaintenanceCost: c.Metabolic.MaintenanceCost,
				RecoveryRate:    c.Metabolic.RecoveryRate,
			},
		},
	}
}

// Topology returns the parsed network topology. Call Validate first; unknown
// names fall back to fully connected.
func (c *Config) Topology() neural.Topology {
	topo, err := neural.ParseTopology(c.Network.Topology)
	if err != nil {
		return neural.FullyConnected
	}
	return topo
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("NEUROPLEX_NEURONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Network.Neurons = n
		}
	}

	if v := os.Getenv("NEUROPLEX_TOPOLOGY"); v != "" {
		config.Network.Topology = v
	}

	if v := os.Getenv("NEUROPLEX_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Network.Threshold = f
		}
	}

	if v := os.Getenv("NEUROPLEX_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Network.Seed = n
		}
	}

	if v := os.Getenv("NEUROPLEX_TICKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Run.Ticks = n
		}
	}

	if v := os.Getenv("NEUROPLEX_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("NEUROPLEX_STORE_PATH"); v != "" {
		config.Output.StorePath = v
	}

	if v := os.Getenv("NEUROPLEX_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
