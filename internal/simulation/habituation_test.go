package simulation_test

import (
	"context"
	"testing"

	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/simulation"
)

// TestHabituation validates the signature behavior of the energy model:
// response to a constant stimulus declines even though the stimulus never
// changes, because firing burns energy and the modulated potential is
// scaled by the remaining energy fraction.
//
// The stimulus vector addresses neuron identity, so stimulating index 55
// puts a 2.0 input in front of every neuron's weight for dimension 55.
// The whole population therefore ignites when the window opens, then
// settles into an energy-limited duty cycle.
//
// Phase 1 (ticks 0-10): no stimulus. Nothing fires, energy stays high.
// Phase 2 (ticks 11-99): constant 2.0 stimulus on neuron 55. Mass onset,
// then firing thins out as energy drains toward a duty-cycle equilibrium.
// Phase 3 (ticks 100-199): stimulus removed. Firing dies out and energy
// climbs back toward its resting level.
func TestHabituation(t *testing.T) {
	r := simulation.NewRunner(t)

	result := r.Run(simulation.Scenario{
		Name:     "habituation",
		Protocol: experiment.Habituation(),
		Persist:  true,
	})
	series := result.Run.Snapshots

	t.Logf("window opens:\n%s", simulation.FormatSeriesDebug(series, 9, 16))
	t.Logf("window closes:\n%s", simulation.FormatSeriesDebug(series, 95, 104))
	t.Logf("run end:\n%s", simulation.FormatSeriesDebug(series, 195, 199))

	// Phase 1: a quiet network stays quiet. No external input means no
	// potential anywhere, so not a single neuron may fire.
	for _, m := range series[:11] {
		if m.TotalFiring != 0 {
			t.Errorf("tick %d: %d neurons fired before any stimulus", m.Tick, m.TotalFiring)
		}
	}
	if e := series[10].TargetEnergy; e < 95 {
		t.Errorf("tick 10: target energy %.2f, want near resting level before stimulus", e)
	}

	// Phase 2 onset: the target responds within two ticks of the window
	// opening, and the identity-addressed stimulus ignites most of the
	// population with it.
	simulation.AssertFiresInWindow(t, series, 11, 12, 1)
	if got := series[11].TotalFiring; got < 80 {
		t.Errorf("tick 11: only %d neurons fired at stimulus onset, want a population-wide response", got)
	}

	// Phase 2 habituation: target energy falls substantially across the
	// window, and firing is sparser late in the window than early.
	simulation.AssertEnergyDeclines(t, series, 11, 99, 20)
	simulation.AssertFiringThins(t, series, 11, 40, 70, 99)

	early := simulation.FiringCount(series, 11, 40)
	late := simulation.FiringCount(series, 70, 99)
	t.Logf("target firing: ticks 11-40 = %d, ticks 70-99 = %d", early, late)
	t.Logf("target energy: tick 11 = %.2f, tick 99 = %.2f", series[11].TargetEnergy, series[99].TargetEnergy)

	// Phase 3: with the stimulus gone the target recovers.
	simulation.AssertEnergyRecovers(t, series, 100, 199, 20)

	// Invariants across the whole run.
	simulation.AssertEnergyBounded(t, series, 100)
	simulation.AssertPriorityBounded(t, series, 3.0)

	// The persisted run reflects the full series.
	ctx := context.Background()
	meta, err := result.Store.Run(ctx, result.Run.RunID)
	if err != nil {
		t.Fatalf("stored run lookup: %v", err)
	}
	if meta.Ticks != 200 {
		t.Errorf("stored run ticks = %d, want 200", meta.Ticks)
	}
	stored, err := result.Store.TickSeries(ctx, result.Run.RunID)
	if err != nil {
		t.Fatalf("stored series lookup: %v", err)
	}
	if len(stored) != len(series) {
		t.Errorf("stored series = %d rows, want %d", len(stored), len(series))
	}
}
