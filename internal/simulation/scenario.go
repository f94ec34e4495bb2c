package simulation

import (
	"github.com/nervelab/neuroplex/internal/experiment"
	"github.com/nervelab/neuroplex/internal/neural"
	"github.com/nervelab/neuroplex/internal/store"
)

// DefaultSeed seeds scenarios that do not set one, so runs reproduce
// across test invocations.
const DefaultSeed uint64 = 42

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name     string
	Protocol experiment.Protocol

	// Seed fixes weight initialization. Zero selects DefaultSeed.
	Seed uint64

	// Engine overrides the default engine tuning when non-nil.
	Engine *neural.Config

	// Persist records the run in the harness's isolated store.
	Persist bool
}

// Result captures the completed run and the store it may have written to.
type Result struct {
	Run   *experiment.Result
	Store *store.RunStore
}
