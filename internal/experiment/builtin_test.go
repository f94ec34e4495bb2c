package experiment

import (
	"math/rand/v2"
	"testing"

	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

func TestRegistry(t *testing.T) {
	names := Names()
	want := []string{"habituation", "novelty-detection", "urgent-event"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	for _, name := range want {
		p, ok := Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if p.Name != name {
			t.Errorf("Lookup(%q).Name = %q", name, p.Name)
		}
	}

	if _, ok := Lookup("no-such-experiment"); ok {
		t.Error("Lookup() of unknown name should report not found")
	}
}

func TestBuiltinPopulations(t *testing.T) {
	for _, p := range Registry() {
		if p.Neurons != 100 {
			t.Errorf("%s: Neurons = %d, want 100", p.Name, p.Neurons)
		}
		if p.Topology != neural.Grid2D {
			t.Errorf("%s: Topology = %v, want grid2d", p.Name, p.Topology)
		}
		if p.InhibitoryRatio != 0.2 || p.Threshold != 0.2 {
			t.Errorf("%s: ratio/threshold = %v/%v, want 0.2/0.2", p.Name, p.InhibitoryRatio, p.Threshold)
		}
	}

	if p := Habituation(); p.Ticks != 200 || p.Target != 55 {
		t.Errorf("Habituation ticks/target = %d/%d, want 200/55", p.Ticks, p.Target)
	}
	if p := NoveltyDetection(); p.Ticks != 200 || p.Target != 33 {
		t.Errorf("NoveltyDetection ticks/target = %d/%d, want 200/33", p.Ticks, p.Target)
	}
	if p := UrgentEvent(); p.Ticks != 150 || p.Target != 55 {
		t.Errorf("UrgentEvent ticks/target = %d/%d, want 150/55", p.Ticks, p.Target)
	}
}

func TestHabituationStimulusWindow(t *testing.T) {
	p := Habituation()

	// The window is strict on both ends: tick 10 and tick 100 are quiet.
	for _, tick := range []int{0, 10, 100, 199} {
		inputs := p.Stimulus(tick, p.Neurons)
		for i, v := range inputs {
			if v != 0 {
				t.Errorf("tick %d: inputs[%d] = %v, want all zero", tick, i, v)
			}
		}
	}
	for _, tick := range []int{11, 50, 99} {
		inputs := p.Stimulus(tick, p.Neurons)
		if inputs[55] != 2.0 {
			t.Errorf("tick %d: inputs[55] = %v, want 2.0", tick, inputs[55])
		}
		if sum := vectorSum(inputs); sum != 2.0 {
			t.Errorf("tick %d: stimulus sum = %v, want 2.0 (target only)", tick, sum)
		}
	}
}

func TestNoveltyStimulusAlternation(t *testing.T) {
	p := NoveltyDetection()

	// Familiarization phase: always pattern A.
	for _, tick := range []int{0, 50, 99} {
		inputs := p.Stimulus(tick, p.Neurons)
		if inputs[33] != 2.0 || inputs[66] != 0 {
			t.Errorf("tick %d: A/B = %v/%v, want 2.0/0", tick, inputs[33], inputs[66])
		}
	}

	// Test phase alternates every 10 ticks starting with A.
	cases := []struct {
		tick  int
		wantA bool
	}{
		{100, true}, {109, true},
		{110, false}, {119, false},
		{120, true},
		{199, false}, // cycle index 9
	}
	for _, tc := range cases {
		inputs := p.Stimulus(tc.tick, p.Neurons)
		a, b := inputs[33], inputs[66]
		if tc.wantA && (a != 2.0 || b != 0) {
			t.Errorf("tick %d: A/B = %v/%v, want pattern A", tc.tick, a, b)
		}
		if !tc.wantA && (a != 0 || b != 2.0) {
			t.Errorf("tick %d: A/B = %v/%v, want pattern B", tc.tick, a, b)
		}
	}
}

func TestUrgentEventHooks(t *testing.T) {
	p := UrgentEvent()

	net, err := neural.New(9, neural.FullyConnected, 0, 0.5, neural.DefaultConfig(), rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	p.BeforeTick(49, net)
	if got := net.AlertLevel(); got != 0 {
		t.Errorf("alert after tick 49 hook = %v, want 0", got)
	}
	p.BeforeTick(50, net)
	if got := net.AlertLevel(); got != 1.0 {
		t.Errorf("alert after tick 50 hook = %v, want 1.0", got)
	}

	if inputs := p.Stimulus(59, p.Neurons); inputs[55] != 2.0 {
		t.Errorf("tick 59: inputs[55] = %v, want 2.0", inputs[55])
	}
	if inputs := p.Stimulus(60, p.Neurons); vectorSum(inputs) != 0 {
		t.Error("tick 60: stimulus should have ended")
	}
}

func TestBuiltinRowLayouts(t *testing.T) {
	m := store.TickMetrics{
		Tick: 7, TargetFiring: true, TargetEnergy: 89.9, TargetPriority: 1.5,
		TotalFiring: 12, AvgEnergy: 98.45, AvgNovelty: 0.3, AlertLevel: 0.095,
	}
	traces := map[int]NeuronTrace{
		33: {Firing: true, Priority: 1.234, Energy: 80.5},
		66: {Firing: false, Priority: 2.5, Energy: 95.0},
	}

	h := Habituation()
	row := h.Row(m, nil)
	if len(row) != len(h.Columns) {
		t.Fatalf("habituation row width = %d, want %d", len(row), len(h.Columns))
	}
	if row[0] != "7" || row[1] != "1" || row[2] != "89.90" || row[3] != "12" {
		t.Errorf("habituation row = %v", row)
	}

	n := NoveltyDetection()
	row = n.Row(m, traces)
	if len(row) != len(n.Columns) {
		t.Fatalf("novelty row width = %d, want %d", len(row), len(n.Columns))
	}
	want := []string{"7", "1", "1.234", "80.50", "0", "2.500", "95.00", "12", "0.095"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("novelty row[%d] (%s) = %q, want %q", i, n.Columns[i], row[i], want[i])
		}
	}

	u := UrgentEvent()
	row = u.Row(m, nil)
	if len(row) != len(u.Columns) {
		t.Fatalf("urgent row width = %d, want %d", len(row), len(u.Columns))
	}
	if row[4] != "98.45" || row[5] != "0.095" {
		t.Errorf("urgent row = %v", row)
	}
}

func vectorSum(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum
}
