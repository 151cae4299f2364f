// Package experiment runs ensembles of surface-hopping trajectories with
// consecutive seeds and aggregates their outcomes.
package experiment

import (
	"context"
	"sync"

	"github.com/qdynlab/hopsim/internal/config"
	"github.com/qdynlab/hopsim/internal/traj"
)

// Ensemble describes a batch of runs sharing one configuration.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart int64
}

func NewEnsemble(base *config.Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart}
}

// Run executes the runs concurrently, one goroutine per seed. The first
// error aborts the batch.
func (e *Ensemble) Run(ctx context.Context) ([]*traj.Result, error) {
	results := make([]*traj.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := *e.base
			cfg.Seed = e.seedStart + int64(idx)
			cfg.Output = ""

			runner, err := traj.New(&cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = runner.Run(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
