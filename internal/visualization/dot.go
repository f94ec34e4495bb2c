// Package visualization renders network topologies and run series in
// shareable output formats: Graphviz DOT for connectivity, JSON for
// downstream tooling, and self-contained HTML chart pages.
package visualization

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

// Format specifies the output format for network rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// kindColors maps neuron kinds to DOT fill colors.
var kindColors = map[string]string{
	"excitatory": "lightblue",
	"inhibitory": "lightcoral",
}

// RenderDOT produces a Graphviz DOT representation of the population and
// its connectivity. Grid networks carry pinned position hints so neato
// reproduces the grid layout; firing neurons render as double circles.
// Mutual connections collapse into a single dir=both edge.
func RenderDOT(net *neural.Network) string {
	n := net.NumNeurons()

	var b strings.Builder
	b.WriteString("digraph neuroplex {\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\", fontsize=10];\n")
	b.WriteString("  edge [arrowsize=0.5];\n\n")

	side := net.GridSide()
	for i := 0; i < n; i++ {
		state, _ := net.State(i)

		color := kindColors[state.Kind]
		if color == "" {
			color = "lightgray"
		}

		attrs := []string{
			fmt.Sprintf("label=%q", fmt.Sprintf("%d", i)),
			fmt.Sprintf("fillcolor=%q", color),
		}
		if state.Firing {
			attrs = append(attrs, "shape=doublecircle")
		}
		if side > 0 {
			// Row 0 at the top, matching how grids are usually drawn.
			row, col, _ := net.IndexToCoords(i)
			attrs = append(attrs, fmt.Sprintf("pos=%q", fmt.Sprintf("%d,%d!", col, side-1-row)))
		}
		b.WriteString(fmt.Sprintf("  n%d [%s];\n", i, strings.Join(attrs, ", ")))
	}
	b.WriteString("\n")

	// Connected(i, j) means i receives from j, so the drawn arrow runs
	// j -> i. The upper triangle walk visits each pair once.
	for i := 0; i < n; i++ {
		if net.Connected(i, i) {
			b.WriteString(fmt.Sprintf("  n%d -> n%d;\n", i, i))
		}
		for j := i + 1; j < n; j++ {
			forward := net.Connected(i, j)
			backward := net.Connected(j, i)
			switch {
			case forward && backward:
				b.WriteString(fmt.Sprintf("  n%d -> n%d [dir=both];\n", j, i))
			case forward:
				b.WriteString(fmt.Sprintf("  n%d -> n%d;\n", j, i))
			case backward:
				b.WriteString(fmt.Sprintf("  n%d -> n%d;\n", i, j))
			}
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// graphNode is one population member in the JSON rendering. Grid
// positions are derived from the id and the top-level grid_side field.
type graphNode struct {
	ID       int     `json:"id"`
	Kind     string  `json:"kind"`
	Firing   bool    `json:"firing"`
	Energy   float64 `json:"energy"`
	Priority float64 `json:"priority"`
}

// graphLink is one connection. Source emits, target receives; mutual
// links appear once with the lower id as source.
type graphLink struct {
	Source int  `json:"source"`
	Target int  `json:"target"`
	Mutual bool `json:"mutual,omitempty"`
}

// graphStats summarizes the network at render time.
type graphStats struct {
	Tick       int     `json:"tick"`
	Neurons    int     `json:"neurons"`
	Topology   string  `json:"topology"`
	GridSide   int     `json:"grid_side,omitempty"`
	Firing     int     `json:"firing"`
	AvgEnergy  float64 `json:"avg_energy"`
	AlertLevel float64 `json:"alert_level"`
}

// RenderJSON produces a JSON document with the population nodes, the
// deduplicated link list, the optional tick series of a finished run,
// and summary stats.
func RenderJSON(net *neural.Network, snapshots []store.TickMetrics) ([]byte, error) {
	n := net.NumNeurons()

	nodes := make([]graphNode, n)
	for i := range nodes {
		state, _ := net.State(i)
		nodes[i] = graphNode{
			ID:       state.ID,
			Kind:     state.Kind,
			Firing:   state.Firing,
			Energy:   state.Energy,
			Priority: state.Priority,
		}
	}

	var links []graphLink
	for i := 0; i < n; i++ {
		if net.Connected(i, i) {
			links = append(links, graphLink{Source: i, Target: i})
		}
		for j := i + 1; j < n; j++ {
			forward := net.Connected(i, j)
			backward := net.Connected(j, i)
			switch {
			case forward && backward:
				links = append(links, graphLink{Source: i, Target: j, Mutual: true})
			case forward:
				links = append(links, graphLink{Source: j, Target: i})
			case backward:
				links = append(links, graphLink{Source: i, Target: j})
			}
		}
	}

	payload := struct {
		Nodes  []graphNode         `json:"nodes"`
		Links  []graphLink         `json:"links"`
		Series []store.TickMetrics `json:"series,omitempty"`
		Stats  graphStats          `json:"stats"`
	}{
		Nodes:  nodes,
		Links:  links,
		Series: snapshots,
		Stats: graphStats{
			Tick:       net.Tick(),
			Neurons:    n,
			Topology:   net.Topology().String(),
			GridSide:   net.GridSide(),
			Firing:     net.NumFiring(),
			AvgEnergy:  net.AverageEnergy(),
			AlertLevel: net.AlertLevel(),
		},
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph payload: %w", err)
	}
	return data, nil
}
