package simulate

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Config controls one simulation run.
type Config struct {
	Trials  int    // number of independent paths, >= 1
	Steps   int    // time steps per path, >= 1
	Seed    uint64 // base seed; worker w draws from Seed+w
	Workers int    // parallel workers, 0 = GOMAXPROCS
}

// RunTrials generates cfg.Trials independent GBM paths and returns
// their terminal prices, indexed by trial. Trials are fanned out across
// cfg.Workers goroutines; worker w owns the contiguous slice of trials
// it fills and its own random stream seeded cfg.Seed+w, so nothing is
// shared and a given (seed, workers) pair reproduces the result slice
// exactly.
func RunTrials(ctx context.Context, riskFreeRate, spot, sigma, t float64, cfg Config) ([]float64, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("%w: trials must be >= 1, got %d", pricing.ErrInvalidArgument, cfg.Trials)
	}
	if cfg.Steps < 1 {
		return nil, fmt.Errorf("%w: steps must be >= 1, got %d", pricing.ErrInvalidArgument, cfg.Steps)
	}
	if err := validateMarketParams(spot, sigma, t); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	logger.Debugf("simulation start: trials=%d steps=%d workers=%d seed=%d",
		cfg.Trials, cfg.Steps, workers, cfg.Seed)

	terminals := make([]float64, cfg.Trials)

	g, ctx := errgroup.WithContext(ctx)
	per := cfg.Trials / workers
	rem := cfg.Trials % workers
	start := 0
	for w := 0; w < workers; w++ {
		n := per
		if w < rem {
			n++
		}
		lo, hi := start, start+n
		start = hi
		src := rand.NewSource(cfg.Seed + uint64(w))

		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%4096 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				path, err := GeneratePath(src, riskFreeRate, spot, sigma, t, cfg.Steps)
				if err != nil {
					return err
				}
				terminals[i] = path[len(path)-1]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return terminals, nil
}
