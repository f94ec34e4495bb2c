package mcp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
	"github.com/nervelab/neuroplex/internal/visualization"
)

const (
	// maxPopulation bounds sim_create; fully-connected adjacency is O(n^2).
	maxPopulation = 10000

	// maxStepTicks bounds a single sim_step call.
	maxStepTicks = 10000

	defaultInhibitoryRatio = 0.2
	defaultThreshold       = 0.5
)

// handleSimCreate implements the sim_create tool.
func (s *Server) handleSimCreate(ctx context.Context, req *sdk.CallToolRequest, args SimCreateInput) (*sdk.CallToolResult, SimCreateOutput, error) {
	var out SimCreateOutput

	if args.Neurons < 1 {
		return nil, out, fmt.Errorf("population size must be at least 1, got %d", args.Neurons)
	}
	if args.Neurons > maxPopulation {
		return nil, out, fmt.Errorf("population size %d exceeds the tool limit of %d", args.Neurons, maxPopulation)
	}

	topoName := args.Topology
	if topoName == "" {
		topoName = "fully-connected"
	}
	topo, err := neural.ParseTopology(topoName)
	if err != nil {
		return nil, out, err
	}

	ratio := args.InhibitoryRatio
	if ratio == 0 {
		ratio = defaultInhibitoryRatio
	}
	threshold := args.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}

	seed := args.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	net, err := neural.New(args.Neurons, topo, ratio, threshold, neural.DefaultConfig(), rng)
	if err != nil {
		return nil, out, fmt.Errorf("failed to build network: %w", err)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{
		net:     net,
		seed:    seed,
		created: time.Now(),
	}
	s.mu.Unlock()

	inhibitory := 0
	for _, st := range net.States() {
		if st.Kind == "inhibitory" {
			inhibitory++
		}
	}

	out = SimCreateOutput{
		SessionID:  id,
		Neurons:    net.NumNeurons(),
		Topology:   net.Topology().String(),
		GridSide:   net.GridSide(),
		Inhibitory: inhibitory,
		Seed:       seed,
	}
	return nil, out, nil
}

// handleSimStep implements the sim_step tool.
func (s *Server) handleSimStep(ctx context.Context, req *sdk.CallToolRequest, args SimStepInput) (*sdk.CallToolResult, SimStepOutput, error) {
	var out SimStepOutput

	sess, err := s.session(args.SessionID)
	if err != nil {
		return nil, out, err
	}

	ticks := args.Ticks
	if ticks == 0 {
		ticks = 1
	}
	if ticks < 0 {
		return nil, out, fmt.Errorf("ticks must be positive, got %d", ticks)
	}
	if ticks > maxStepTicks {
		return nil, out, fmt.Errorf("ticks %d exceeds the per-call limit of %d", ticks, maxStepTicks)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	n := sess.net.NumNeurons()
	if len(args.Stimulus) > n {
		return nil, out, fmt.Errorf("stimulus length %d exceeds population size %d", len(args.Stimulus), n)
	}
	stimulus := make([]float64, n)
	copy(stimulus, args.Stimulus)

	series := make([]TickSummary, 0, ticks)
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, out, fmt.Errorf("step canceled after %d ticks: %w", i, err)
		}
		if err := sess.net.Update(stimulus); err != nil {
			return nil, out, fmt.Errorf("tick %d: %w", sess.net.Tick(), err)
		}
		m := experiment.Snapshot(sess.net, 0, sess.net.Tick())
		sess.history = append(sess.history, m)
		series = append(series, summarize(m))
	}

	out = SimStepOutput{
		SessionID: args.SessionID,
		Stepped:   ticks,
		Tick:      sess.net.Tick(),
		Series:    series,
	}
	return nil, out, nil
}

// handleSimStats implements the sim_stats tool.
func (s *Server) handleSimStats(ctx context.Context, req *sdk.CallToolRequest, args SimStatsInput) (*sdk.CallToolResult, SimStatsOutput, error) {
	var out SimStatsOutput

	sess, err := s.session(args.SessionID)
	if err != nil {
		return nil, out, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out = SimStatsOutput{
		SessionID:  args.SessionID,
		Tick:       sess.net.Tick(),
		Neurons:    sess.net.NumNeurons(),
		Topology:   sess.net.Topology().String(),
		GridSide:   sess.net.GridSide(),
		Firing:     sess.net.NumFiring(),
		AvgEnergy:  sess.net.AverageEnergy(),
		AvgNovelty: sess.net.AverageNovelty(),
		AlertLevel: sess.net.AlertLevel(),
	}
	if args.IncludeNeurons {
		out.States = sess.net.States()
	}
	return nil, out, nil
}

// handleSimExperiment implements the sim_experiment tool.
func (s *Server) handleSimExperiment(ctx context.Context, req *sdk.CallToolRequest, args SimExperimentInput) (*sdk.CallToolResult, SimExperimentOutput, error) {
	var out SimExperimentOutput

	p, ok := experiment.Lookup(args.Name)
	if !ok {
		return nil, out, fmt.Errorf("unknown experiment %q (built-in: %s)", args.Name, strings.Join(experiment.Names(), ", "))
	}

	opts := experiment.Options{Seed: args.Seed}
	if args.Persist {
		if s.store == nil {
			return nil, out, fmt.Errorf("run store not configured; start the server with a database path")
		}
		opts.Store = s.store
	}

	res, err := experiment.Run(ctx, p, opts)
	if err != nil {
		return nil, out, fmt.Errorf("experiment %q: %w", args.Name, err)
	}

	peakFiring := 0
	peakNovelty := 0.0
	peakAlert := 0.0
	minEnergy := res.Snapshots[0].AvgEnergy
	for _, m := range res.Snapshots {
		if m.TotalFiring > peakFiring {
			peakFiring = m.TotalFiring
		}
		if m.AvgNovelty > peakNovelty {
			peakNovelty = m.AvgNovelty
		}
		if m.AlertLevel > peakAlert {
			peakAlert = m.AlertLevel
		}
		if m.AvgEnergy < minEnergy {
			minEnergy = m.AvgEnergy
		}
	}

	out = SimExperimentOutput{
		Name:         p.Name,
		Description:  p.Description,
		Neurons:      p.Neurons,
		Topology:     p.Topology.String(),
		Ticks:        p.Ticks,
		Seed:         res.Seed,
		RunID:        res.RunID,
		Final:        summarize(res.Snapshots[len(res.Snapshots)-1]),
		PeakFiring:   peakFiring,
		PeakNovelty:  peakNovelty,
		PeakAlert:    peakAlert,
		MinAvgEnergy: minEnergy,
	}
	return nil, out, nil
}

// handleSimRender implements the sim_render tool.
func (s *Server) handleSimRender(ctx context.Context, req *sdk.CallToolRequest, args SimRenderInput) (*sdk.CallToolResult, SimRenderOutput, error) {
	var out SimRenderOutput

	sess, err := s.session(args.SessionID)
	if err != nil {
		return nil, out, err
	}

	format := visualization.Format(args.Format)
	if args.Format == "" {
		format = visualization.FormatJSON
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var content string
	switch format {
	case visualization.FormatDOT:
		content = visualization.RenderDOT(sess.net)
	case visualization.FormatJSON:
		data, err := visualization.RenderJSON(sess.net, sess.history)
		if err != nil {
			return nil, out, fmt.Errorf("render JSON: %w", err)
		}
		content = string(data)
	case visualization.FormatHTML:
		title := "session " + shortID(args.SessionID)
		data, err := visualization.RenderHTML(sess.history, title)
		if err != nil {
			return nil, out, fmt.Errorf("render HTML: %w", err)
		}
		content = string(data)
	default:
		return nil, out, fmt.Errorf("unknown format %q (want dot, json or html)", args.Format)
	}

	out = SimRenderOutput{
		SessionID: args.SessionID,
		Format:    string(format),
		Content:   content,
	}
	return nil, out, nil
}

// summarize projects a metrics row onto its population fields.
func summarize(m store.TickMetrics) TickSummary {
	return TickSummary{
		Tick:        m.Tick,
		TotalFiring: m.TotalFiring,
		AvgEnergy:   m.AvgEnergy,
		AvgNovelty:  m.AvgNovelty,
		AlertLevel:  m.AlertLevel,
	}
}

// shortID abbreviates a uuid for chart titles.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
