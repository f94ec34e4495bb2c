package simulation

import (
	"fmt"

	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/store"
)

// FiringCount counts target firings in the inclusive tick window [from, to].
func FiringCount(series []store.TickMetrics, from, to int) int {
	count := 0
	for _, m := range series[from : to+1] {
		if m.TargetFiring {
			count++
		}
	}
	return count
}

// MeanTargetEnergy averages the target's energy over [from, to].
func MeanTargetEnergy(series []store.TickMetrics, from, to int) float64 {
	sum := 0.0
	for _, m := range series[from : to+1] {
		sum += m.TargetEnergy
	}
	return sum / float64(to-from+1)
}

// MeanAvgEnergy averages the population energy over [from, to].
func MeanAvgEnergy(series []store.TickMetrics, from, to int) float64 {
	sum := 0.0
	for _, m := range series[from : to+1] {
		sum += m.AvgEnergy
	}
	return sum / float64(to-from+1)
}

// MaxAlert returns the highest alert level seen in [from, to].
func MaxAlert(series []store.TickMetrics, from, to int) float64 {
	max := series[from].AlertLevel
	for _, m := range series[from+1 : to+1] {
		if m.AlertLevel > max {
			max = m.AlertLevel
		}
	}
	return max
}

// TraceFiringCount counts firings of a tracked neuron in [from, to].
func TraceFiringCount(trace []experiment.NeuronTrace, from, to int) int {
	count := 0
	for _, tr := range trace[from : to+1] {
		if tr.Firing {
			count++
		}
	}
	return count
}

// TraceMaxPriority returns a tracked neuron's highest priority in [from, to].
func TraceMaxPriority(trace []experiment.NeuronTrace, from, to int) float64 {
	max := trace[from].Priority
	for _, tr := range trace[from+1 : to+1] {
		if tr.Priority > max {
			max = tr.Priority
		}
	}
	return max
}

// TraceMeanPriority averages a tracked neuron's priority over [from, to].
func TraceMeanPriority(trace []experiment.NeuronTrace, from, to int) float64 {
	sum := 0.0
	for _, tr := range trace[from : to+1] {
		sum += tr.Priority
	}
	return sum / float64(to-from+1)
}

// FormatSeriesDebug renders a tick window for t.Logf output.
func FormatSeriesDebug(series []store.TickMetrics, from, to int) string {
	s := fmt.Sprintf("ticks %d-%d:\n", from, to)
	for _, m := range series[from : to+1] {
		s += fmt.Sprintf("  t=%3d fire=%-5v energy=%6.2f priority=%.3f total=%2d avg=%6.2f novelty=%.3f alert=%.3f\n",
			m.Tick, m.TargetFiring, m.TargetEnergy, m.TargetPriority, m.TotalFiring, m.AvgEnergy, m.AvgNovelty, m.AlertLevel)
	}
	return s
}
