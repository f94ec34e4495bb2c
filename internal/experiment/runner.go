package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nervelab/neuroplex/internal/export"
	"github.com/nervelab/neuroplex/internal/logging"
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

// DefaultLogEvery is the progress cadence when a protocol does not set one.
const DefaultLogEvery = 20

// Options configures a single run. All sinks are optional.
type Options struct {
	// Seed fixes the weight initialization. Zero draws a seed from the
	// clock; the value actually used is recorded in Result.Seed.
	Seed uint64

	// Engine overrides the default engine tuning when non-nil.
	Engine *neural.Config

	// CSV receives the run's rows in the protocol's layout.
	CSV io.Writer

	// Store records the run and its tick series.
	Store *store.RunStore

	// Ticks receives one JSONL entry per tick.
	Ticks *logging.TickLogger

	// Logger receives progress lines. Nil discards them.
	Logger *slog.Logger
}

// Result is the outcome of a completed run.
type Result struct {
	Protocol  Protocol
	Seed      uint64
	RunID     string
	Snapshots []store.TickMetrics
	Traces    map[int][]NeuronTrace
	Net       *neural.Network
}

// TrackedSeries rebuilds a full tick series focused on a tracked neuron,
// combining its trace with the population fields of the main series.
// Returns nil for a neuron the protocol did not track.
func (r *Result) TrackedSeries(id int) []store.TickMetrics {
	trace, ok := r.Traces[id]
	if !ok {
		return nil
	}
	series := make([]store.TickMetrics, len(r.Snapshots))
	for i, m := range r.Snapshots {
		m.TargetFiring = trace[i].Firing
		m.TargetEnergy = trace[i].Energy
		m.TargetPriority = trace[i].Priority
		series[i] = m
	}
	return series
}

// Run executes a protocol from tick 0 through p.Ticks-1 and feeds every
// configured sink. A run recorded in the store is marked failed when the
// loop aborts, finished otherwise.
func Run(ctx context.Context, p Protocol, opts Options) (*Result, error) {
	if p.Ticks < 1 {
		return nil, fmt.Errorf("protocol %q has no ticks to run", p.Name)
	}
	if p.Target < 0 || p.Target >= p.Neurons {
		return nil, fmt.Errorf("target neuron %d out of range for %d neurons", p.Target, p.Neurons)
	}
	for _, tn := range p.Tracked {
		if tn.ID < 0 || tn.ID >= p.Neurons {
			return nil, fmt.Errorf("tracked neuron %d out of range for %d neurons", tn.ID, p.Neurons)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	engineCfg := neural.DefaultConfig()
	if opts.Engine != nil {
		engineCfg = *opts.Engine
	}

	net, err := neural.New(p.Neurons, p.Topology, p.InhibitoryRatio, p.Threshold, engineCfg, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var runID string
	if opts.Store != nil {
		runID, err = opts.Store.CreateRun(ctx, store.RunMeta{
			Name:     p.Name,
			Topology: p.Topology.String(),
			Neurons:  p.Neurons,
			Ticks:    p.Ticks,
			Seed:     seed,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
	}

	logEvery := p.LogEvery
	if logEvery <= 0 {
		logEvery = DefaultLogEvery
	}

	logger.Info("experiment started",
		"name", p.Name,
		"neurons", p.Neurons,
		"topology", p.Topology.String(),
		"ticks", p.Ticks,
		"seed", seed)

	snapshots := make([]store.TickMetrics, 0, p.Ticks)
	traces := make(map[int][]NeuronTrace, len(p.Tracked))

	for t := 0; t < p.Ticks; t++ {
		if err := ctx.Err(); err != nil {
			failRun(ctx, opts.Store, runID)
			return nil, fmt.Errorf("run canceled at tick %d: %w", t, err)
		}

		if p.BeforeTick != nil {
			p.BeforeTick(t, net)
		}

		var stimulus []float64
		if p.Stimulus != nil {
			stimulus = p.Stimulus(t, p.Neurons)
		}
		if stimulus == nil {
			stimulus = make([]float64, p.Neurons)
		}

		if err := net.Update(stimulus); err != nil {
			failRun(ctx, opts.Store, runID)
			return nil, fmt.Errorf("tick %d: %w", t, err)
		}

		m := Snapshot(net, p.Target, t)
		snapshots = append(snapshots, m)
		for _, tn := range p.Tracked {
			n := net.Neuron(tn.ID)
			traces[tn.ID] = append(traces[tn.ID], NeuronTrace{
				Firing:   n.IsFiring(),
				Priority: n.Priority(),
				Energy:   n.Energy(),
			})
		}

		opts.Ticks.Log(map[string]any{
			"experiment":    p.Name,
			"tick":          t,
			"target_firing": m.TargetFiring,
			"target_energy": m.TargetEnergy,
			"total_firing":  m.TotalFiring,
			"avg_energy":    m.AvgEnergy,
			"avg_novelty":   m.AvgNovelty,
			"alert_level":   m.AlertLevel,
		})

		if t%logEvery == 0 {
			logger.Info("progress",
				"tick", t,
				"target_firing", m.TargetFiring,
				"target_energy", m.TargetEnergy,
				"total_firing", m.TotalFiring,
				"avg_energy", m.AvgEnergy,
				"alert", m.AlertLevel)
		}
	}

	if opts.CSV != nil {
		header, rows := csvLayout(p, snapshots, traces)
		if err := export.WriteCSV(opts.CSV, header, rows); err != nil {
			failRun(ctx, opts.Store, runID)
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
	}

	if opts.Store != nil {
		if err := opts.Store.AppendTicks(ctx, runID, snapshots); err != nil {
			failRun(ctx, opts.Store, runID)
			return nil, fmt.Errorf("failed to append tick series: %w", err)
		}
		if err := opts.Store.FinishRun(ctx, runID, store.StatusFinished); err != nil {
			return nil, fmt.Errorf("failed to finish run: %w", err)
		}
	}

	final := snapshots[len(snapshots)-1]
	logger.Info("experiment finished",
		"name", p.Name,
		"ticks", p.Ticks,
		"final_avg_energy", final.AvgEnergy,
		"final_alert", final.AlertLevel)

	return &Result{
		Protocol:  p,
		Seed:      seed,
		RunID:     runID,
		Snapshots: snapshots,
		Traces:    traces,
		Net:       net,
	}, nil
}

// Snapshot samples the network into one metrics row focused on target.
func Snapshot(net *neural.Network, target, tick int) store.TickMetrics {
	n := net.Neuron(target)
	return store.TickMetrics{
		Tick:           tick,
		TargetFiring:   n.IsFiring(),
		TargetEnergy:   n.Energy(),
		TargetPriority: n.Priority(),
		TotalFiring:    net.NumFiring(),
		AvgEnergy:      net.AverageEnergy(),
		AvgNovelty:     net.AverageNovelty(),
		AlertLevel:     net.AlertLevel(),
	}
}

// csvLayout renders the collected series into the protocol's CSV layout,
// falling back to the canonical full layout for protocols without one.
func csvLayout(p Protocol, snapshots []store.TickMetrics, traces map[int][]NeuronTrace) ([]string, [][]string) {
	if p.Row == nil {
		return export.Columns, export.TickRows(snapshots)
	}
	rows := make([][]string, 0, len(snapshots))
	for i, m := range snapshots {
		at := make(map[int]NeuronTrace, len(traces))
		for id, series := range traces {
			at[id] = series[i]
		}
		rows = append(rows, p.Row(m, at))
	}
	return p.Columns, rows
}

// failRun marks a stored run as failed. Cancellation of the surrounding
// context must not block the status write.
func failRun(ctx context.Context, s *store.RunStore, runID string) {
	if s == nil || runID == "" {
		return
	}
	_ = s.FinishRun(context.WithoutCancel(ctx), runID, store.StatusFailed)
}
