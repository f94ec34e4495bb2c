package simulation

import (
	"testing"

	"github.com/nervelab/neuroplex/internal/store"
)

// Assertions take tick windows as inclusive [from, to] ranges. The runner
// guarantees series index i holds tick i.

func checkWindow(t *testing.T, name string, series []store.TickMetrics, from, to int) {
	t.Helper()
	if from < 0 || to >= len(series) || from > to {
		t.Fatalf("%s: window [%d, %d] outside series of %d ticks", name, from, to, len(series))
	}
}

// AssertEnergyDeclines asserts that the target neuron's energy drops by at
// least minDrop between two ticks.
func AssertEnergyDeclines(t *testing.T, series []store.TickMetrics, from, to int, minDrop float64) {
	t.Helper()
	checkWindow(t, "AssertEnergyDeclines", series, from, to)
	drop := series[from].TargetEnergy - series[to].TargetEnergy
	if drop < minDrop {
		t.Errorf("AssertEnergyDeclines: energy fell %.2f between ticks %d and %d (%.2f -> %.2f), need at least %.2f",
			drop, from, to, series[from].TargetEnergy, series[to].TargetEnergy, minDrop)
	}
}

// AssertEnergyRecovers asserts that the target neuron's energy rises by at
// least minRise between two ticks.
func AssertEnergyRecovers(t *testing.T, series []store.TickMetrics, from, to int, minRise float64) {
	t.Helper()
	checkWindow(t, "AssertEnergyRecovers", series, from, to)
	rise := series[to].TargetEnergy - series[from].TargetEnergy
	if rise < minRise {
		t.Errorf("AssertEnergyRecovers: energy rose %.2f between ticks %d and %d (%.2f -> %.2f), need at least %.2f",
			rise, from, to, series[from].TargetEnergy, series[to].TargetEnergy, minRise)
	}
}

// AssertEnergyBounded asserts that target and population energy stay within
// [0, max] for every tick of the series.
func AssertEnergyBounded(t *testing.T, series []store.TickMetrics, max float64) {
	t.Helper()
	for _, m := range series {
		if m.TargetEnergy < 0 || m.TargetEnergy > max {
			t.Errorf("AssertEnergyBounded: tick %d: target energy %.2f outside [0, %.2f]", m.Tick, m.TargetEnergy, max)
		}
		if m.AvgEnergy < 0 || m.AvgEnergy > max {
			t.Errorf("AssertEnergyBounded: tick %d: average energy %.2f outside [0, %.2f]", m.Tick, m.AvgEnergy, max)
		}
	}
}

// AssertFiresInWindow asserts that the target fires at least minCount times
// in [from, to].
func AssertFiresInWindow(t *testing.T, series []store.TickMetrics, from, to, minCount int) {
	t.Helper()
	checkWindow(t, "AssertFiresInWindow", series, from, to)
	if got := FiringCount(series, from, to); got < minCount {
		t.Errorf("AssertFiresInWindow: target fired %d times in ticks [%d, %d], need at least %d", got, from, to, minCount)
	}
}

// AssertFiringThins asserts that the target fires strictly less often in the
// late window than in the early one.
func AssertFiringThins(t *testing.T, series []store.TickMetrics, earlyFrom, earlyTo, lateFrom, lateTo int) {
	t.Helper()
	checkWindow(t, "AssertFiringThins", series, earlyFrom, earlyTo)
	checkWindow(t, "AssertFiringThins", series, lateFrom, lateTo)
	early := FiringCount(series, earlyFrom, earlyTo)
	late := FiringCount(series, lateFrom, lateTo)
	if late >= early {
		t.Errorf("AssertFiringThins: late window [%d, %d] fired %d times, early window [%d, %d] fired %d; late should be lower",
			lateFrom, lateTo, late, earlyFrom, earlyTo, early)
	}
}

// AssertAlertAbove asserts the alert level at a tick is at least min.
func AssertAlertAbove(t *testing.T, series []store.TickMetrics, tick int, min float64) {
	t.Helper()
	checkWindow(t, "AssertAlertAbove", series, tick, tick)
	if got := series[tick].AlertLevel; got < min {
		t.Errorf("AssertAlertAbove: tick %d: alert %.3f < %.3f", tick, got, min)
	}
}

// AssertAlertBelow asserts the alert level at a tick is at most max.
func AssertAlertBelow(t *testing.T, series []store.TickMetrics, tick int, max float64) {
	t.Helper()
	checkWindow(t, "AssertAlertBelow", series, tick, tick)
	if got := series[tick].AlertLevel; got > max {
		t.Errorf("AssertAlertBelow: tick %d: alert %.3f > %.3f", tick, got, max)
	}
}

// AssertAlertDecays asserts the alert level is lower at to than at from.
func AssertAlertDecays(t *testing.T, series []store.TickMetrics, from, to int) {
	t.Helper()
	checkWindow(t, "AssertAlertDecays", series, from, to)
	if series[to].AlertLevel >= series[from].AlertLevel {
		t.Errorf("AssertAlertDecays: alert did not decay: tick %d=%.3f, tick %d=%.3f",
			from, series[from].AlertLevel, to, series[to].AlertLevel)
	}
}

// AssertPriorityBounded asserts the target's priority stays within [1, max]
// for every tick.
func AssertPriorityBounded(t *testing.T, series []store.TickMetrics, max float64) {
	t.Helper()
	for _, m := range series {
		if m.TargetPriority < 1 || m.TargetPriority > max {
			t.Errorf("AssertPriorityBounded: tick %d: priority %.3f outside [1, %.3f]", m.Tick, m.TargetPriority, max)
		}
	}
}

// AssertNoveltySpikesAt asserts the population novelty rises at the given
// tick compared to the tick before it.
func AssertNoveltySpikesAt(t *testing.T, series []store.TickMetrics, tick int) {
	t.Helper()
	checkWindow(t, "AssertNoveltySpikesAt", series, tick-1, tick)
	if series[tick].AvgNovelty <= series[tick-1].AvgNovelty {
		t.Errorf("AssertNoveltySpikesAt: novelty did not spike at tick %d: %.4f -> %.4f",
			tick, series[tick-1].AvgNovelty, series[tick].AvgNovelty)
	}
}
