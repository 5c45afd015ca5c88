// Package simulate implements the Monte Carlo engine: geometric
// Brownian motion path generation, parallel trial fan-out, and payoff
// aggregation.
//
// Paths use the exact-solution discretization of GBM,
//
//	S_{i+1} = S_i · exp((r − σ²/2)·dt + σ·√dt·z),
//
// not Euler-Maruyama, so log-price increments are unbiased at any step
// count and prices can never go negative.
package simulate

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// GeneratePath simulates one GBM price path from spot over t years in
// steps equal intervals, drawing one standard-normal variate per step
// from src. The returned path has steps+1 points, the first being
// exactly spot, all strictly positive.
//
// The random source is injected so callers control seeding; concurrent
// callers must pass independent sources.
func GeneratePath(src rand.Source, riskFreeRate, spot, sigma, t float64, steps int) ([]float64, error) {
	if err := validateMarketParams(spot, sigma, t); err != nil {
		return nil, err
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be >= 1, got %d", pricing.ErrInvalidArgument, steps)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	dt := t / float64(steps)
	drift := (riskFreeRate - 0.5*sigma*sigma) * dt
	diffusion := sigma * math.Sqrt(dt)

	path := make([]float64, steps+1)
	path[0] = spot
	for i := 1; i <= steps; i++ {
		path[i] = path[i-1] * math.Exp(drift+diffusion*normal.Rand())
	}
	return path, nil
}

func validateMarketParams(spot, sigma, t float64) error {
	if spot <= 0 {
		return fmt.Errorf("%w: spot must be positive, got %.4f", pricing.ErrInvalidArgument, spot)
	}
	if sigma < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %.4f", pricing.ErrInvalidArgument, sigma)
	}
	if t <= 0 {
		return fmt.Errorf("%w: time to expiry must be positive, got %.4f", pricing.ErrInvalidArgument, t)
	}
	return nil
}
