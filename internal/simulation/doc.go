// Package simulation provides a multi-tick test harness for validating
// emergent dynamics of the neural population.
//
// The harness exercises the real Network, the experiment runner, and the
// SQLite run store when asked to persist. Scenarios wrap a stimulation
// protocol with a fixed seed so every failure reproduces, and tests make
// property-based assertions over the collected tick series: energy trends,
// firing rates, alert decay, priority bounds.
//
// Each test gets an isolated run store via t.TempDir().
//
// Usage:
//
//	func TestHabituation(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:     "habituation",
//	        Protocol: experiment.Habituation(),
//	    })
//	    series := result.Run.Snapshots
//	    simulation.AssertEnergyDeclines(t, series, 11, 99, 20)
//	}
package simulation
