package simulation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/store"
)

// Runner orchestrates scenario runs against the real engine and an
// isolated run store.
type Runner struct {
	t     *testing.T
	store *store.RunStore
}

// NewRunner creates a simulation runner with an isolated SQLite run store.
func NewRunner(t *testing.T) *Runner {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewRunner: failed to open run store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, store: s}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(sc Scenario) Result {
	r.t.Helper()

	seed := sc.Seed
	if seed == 0 {
		seed = DefaultSeed
	}

	opts := experiment.Options{Seed: seed, Engine: sc.Engine}
	if sc.Persist {
		opts.Store = r.store
	}

	res, err := experiment.Run(context.Background(), sc.Protocol, opts)
	if err != nil {
		r.t.Fatalf("Run(%s): %v", sc.Name, err)
	}

	return Result{Run: res, Store: r.store}
}
