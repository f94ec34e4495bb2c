package neural

import (
	"fmt"
	"math"
	"strings"
)

// Topology selects the static connectivity structure of a network.
type Topology int

const (
	// FullyConnected wires every neuron to every neuron, itself included: a
	// neuron reads its own previous output as one of its inputs.
	FullyConnected Topology = iota

	// Grid2D places neurons on a square grid with Moore (8-neighbor)
	// connectivity. Edges clip; they do not wrap.
	Grid2D
)

func (t Topology) String() string {
	if t == Grid2D {
		return "grid2d"
	}
	return "fully-connected"
}

// ParseTopology maps a name to a Topology. It accepts "fully-connected",
// "full", "grid2d" and "grid", case-insensitively.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fully-connected", "full":
		return FullyConnected, nil
	case "grid2d", "grid":
		return Grid2D, nil
	default:
		return FullyConnected, fmt.Errorf("unknown topology %q", s)
	}
}

// buildAdjacency returns the adjacency matrix for n neurons under topology t,
// plus the grid side length (0 for non-grid topologies). adj[i][j] means
// neuron i receives input from neuron j.
func buildAdjacency(n int, t Topology) (adj [][]bool, side int) {
	if t == Grid2D {
		side = int(math.Ceil(math.Sqrt(float64(n))))
		return gridAdjacency(n, side), side
	}

	adj = make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
		for j := range adj[i] {
			adj[i][j] = true
		}
	}
	return adj, 0
}

// gridAdjacency wires Moore neighborhoods on a side x side grid. When n is
// not a perfect square the last cells of the grid are unpopulated; links to
// those positions are skipped, so edge neurons simply have fewer neighbors.
func gridAdjacency(n, side int) [][]bool {
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
		row, col := i/side, i%side
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := row+dr, col+dc
				if r < 0 || r >= side || c < 0 || c >= side {
					continue
				}
				if j := r*side + c; j < n {
					adj[i][j] = true
				}
			}
		}
	}
	return adj
}
