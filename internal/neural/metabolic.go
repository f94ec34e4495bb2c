package neural

// MetabolicConfig holds the metabolic constants of a neuron.
type MetabolicConfig struct {
	// MaxEnergy is the energy ceiling and the starting level. Default: 100.
	MaxEnergy float64

	// FireCost is the energy consumed by one firing. Default: 10.
	FireCost float64

	// MaintenanceCost is charged every tick, firing or not. Default: 0.1.
	MaintenanceCost float64

	// RecoveryRate scales homeostatic recovery at rest. Recovery is
	// proportional to the energy deficit, so depleted neurons recover
	// fastest. Default: 2.0.
	RecoveryRate float64
}

// DefaultMetabolicConfig returns the default metabolic constants.
func DefaultMetabolicConfig() MetabolicConfig {
	return MetabolicConfig{
		MaxEnergy:       100,
		FireCost:        10,
		MaintenanceCost: 0.1,
		RecoveryRate:    2.0,
	}
}

// Metabolic tracks a neuron's energy budget, its attention priority, and its
// per-neuron copy of the network alert level. The alert copy is a value
// refreshed by the network, not a shared reference.
type Metabolic struct {
	energy     float64
	priority   float64
	alertLevel float64
	cfg        MetabolicConfig
}

// NewMetabolic creates a metabolic unit at full energy, baseline priority and
// zero alert.
func NewMetabolic(cfg MetabolicConfig) *Metabolic {
	return &Metabolic{
		energy:   cfg.MaxEnergy,
		priority: 1.0,
		cfg:      cfg,
	}
}

// Modulate scales an integrated potential by available energy and priority.
// The energy factor is floored at zero so depletion can never flip the sign
// of a potential. Priority is applied as-is; UpdatePriority keeps it in
// [1, 3].
func (m *Metabolic) Modulate(potential float64) float64 {
	energyFactor := m.energy / m.cfg.MaxEnergy
	if energyFactor < 0 {
		energyFactor = 0
	}
	return potential * energyFactor * m.priority
}

// UpdateState advances the energy budget by one tick. A firing neuron pays
// FireCost; a resting neuron recovers proportionally to its deficit, with the
// alert level adding up to 100% extra recovery. Maintenance is charged after
// either branch, and only then is energy clamped to [0, MaxEnergy]. The
// ordering matters near the boundaries.
func (m *Metabolic) UpdateState(didFire bool) {
	if didFire {
		m.energy -= m.cfg.FireCost
	} else {
		base := m.cfg.RecoveryRate * (1 - m.energy/m.cfg.MaxEnergy)
		m.energy += base + base*m.alertLevel
	}

	m.energy -= m.cfg.MaintenanceCost

	m.energy = clamp(m.energy, 0, m.cfg.MaxEnergy)
}

// Energy returns the current energy level.
func (m *Metabolic) Energy() float64 {
	return m.energy
}

// EnergyFraction returns energy as a fraction of MaxEnergy.
func (m *Metabolic) EnergyFraction() float64 {
	return m.energy / m.cfg.MaxEnergy
}

// Priority returns the current attention priority.
func (m *Metabolic) Priority() float64 {
	return m.priority
}

// AlertLevel returns this neuron's copy of the network alert level.
func (m *Metabolic) AlertLevel() float64 {
	return m.alertLevel
}

// SetAlertLevel refreshes this neuron's alert copy, clamped to [0, 1].
func (m *Metabolic) SetAlertLevel(level float64) {
	m.alertLevel = clamp(level, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
