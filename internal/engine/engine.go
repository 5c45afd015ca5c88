// Package engine orchestrates one pricing run: request validation,
// snapshot capture from the data provider, and the three price
// estimates (Monte Carlo, Black-Scholes, observed market).
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/simulate"
)

// Engine wires a configuration to a data provider.
type Engine struct {
	cfg  *config.Config
	prov data.Provider
}

// Report is the final output of one pricing run.
type Report struct {
	RunID     string                  `json:"run_id"`
	Request   pricing.PricingRequest  `json:"request"`
	Snapshot  pricing.MarketSnapshot  `json:"snapshot"`
	Estimates []pricing.PriceEstimate `json:"estimates"`
	Delta     float64                 `json:"delta"`
	Vega      float64                 `json:"vega"`
	Trials    int                     `json:"trials"`
	Steps     int                     `json:"steps"`
	Seed      uint64                  `json:"seed"`
	ElapsedMs int64                   `json:"elapsed_ms"`
}

// Estimate returns the estimate for a method, or nil if absent (the
// Market estimate is dropped when the contract has no quote).
func (rep *Report) Estimate(m pricing.Method) *pricing.PriceEstimate {
	for i := range rep.Estimates {
		if rep.Estimates[i].Method == m {
			return &rep.Estimates[i]
		}
	}
	return nil
}

func NewEngine(cfg *config.Config, prov data.Provider) *Engine {
	return &Engine{cfg: cfg, prov: prov}
}

// Run prices one request. Validation failure blocks everything; a
// snapshot (spot/vol/rate) failure aborts with DataUnavailable; a
// market-quote failure only drops the Market estimate.
func (e *Engine) Run(ctx context.Context, req pricing.PricingRequest) (*Report, error) {
	start := time.Now()
	cfg := e.cfg

	// fill defaults
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	now := time.Now().UTC()
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	// snapshot
	spot, vol, err := e.prov.GetSpotAndVolatility(req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("spot/volatility stage: %w", err)
	}

	var rate float64
	if cfg.Data.FixedRate != nil {
		rate = *cfg.Data.FixedRate
		logger.Debugf("using configured risk-free rate %.4f", rate)
	} else {
		rate, err = e.prov.GetRiskFreeRate()
		if err != nil {
			return nil, fmt.Errorf("risk-free rate stage: %w", err)
		}
	}

	snap := pricing.MarketSnapshot{
		Spot:         spot,
		Volatility:   vol,
		RiskFreeRate: rate,
		TimeToExpiry: req.TimeToExpiry(now),
	}
	logger.Infof("%s %s K=%.2f: spot=%.2f vol=%.2f%% rate=%.2f%% T=%.4fy",
		req.Ticker, req.Type, req.Strike, snap.Spot, snap.Volatility*100, snap.RiskFreeRate*100, snap.TimeToExpiry)

	estimates := make([]pricing.PriceEstimate, 0, 3)

	// monte carlo
	terminals, err := simulate.RunTrials(ctx, snap.RiskFreeRate, snap.Spot, snap.Volatility, snap.TimeToExpiry, simulate.Config{
		Trials:  cfg.Simulation.Trials,
		Steps:   cfg.Simulation.Steps,
		Seed:    seed,
		Workers: cfg.Simulation.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("simulation stage: %w", err)
	}
	payoffs, err := simulate.Payoffs(terminals, req.Strike, req.Type)
	if err != nil {
		return nil, fmt.Errorf("payoff stage: %w", err)
	}
	mcPrice, err := simulate.DiscountedMean(payoffs, snap.RiskFreeRate, snap.TimeToExpiry)
	if err != nil {
		return nil, fmt.Errorf("payoff stage: %w", err)
	}
	estimates = append(estimates, pricing.PriceEstimate{Method: pricing.MethodMonteCarlo, Value: mcPrice})

	// black-scholes
	bsPrice, err := pricing.BlackScholesPrice(req.Type, snap.Spot, req.Strike, snap.RiskFreeRate, snap.Volatility, snap.TimeToExpiry)
	if err != nil {
		return nil, fmt.Errorf("closed-form stage: %w", err)
	}
	estimates = append(estimates, pricing.PriceEstimate{Method: pricing.MethodBlackScholes, Value: bsPrice})

	delta, err := pricing.BlackScholesDelta(req.Type, snap.Spot, req.Strike, snap.RiskFreeRate, snap.Volatility, snap.TimeToExpiry)
	if err != nil {
		return nil, fmt.Errorf("closed-form stage: %w", err)
	}
	vega := pricing.BlackScholesVega(snap.Spot, req.Strike, snap.RiskFreeRate, snap.Volatility, snap.TimeToExpiry)

	// observed market price
	// Failure here must not block the model prices.
	mktPrice, err := e.prov.GetOptionMarketPrice(req.Ticker, req.Expiry, req.Type, req.Strike)
	switch {
	case err == nil:
		snap.MarketPrice = &mktPrice
		estimates = append(estimates, pricing.PriceEstimate{Method: pricing.MethodMarket, Value: mktPrice})
	case errors.Is(err, data.ErrNoQuote):
		logger.Infof("no market quote for contract, reporting model prices only")
	default:
		logger.Errorf("market price stage failed: %v", err)
	}

	return &Report{
		RunID:     uuid.NewString(),
		Request:   req,
		Snapshot:  snap,
		Estimates: estimates,
		Delta:     delta,
		Vega:      vega,
		Trials:    cfg.Simulation.Trials,
		Steps:     cfg.Simulation.Steps,
		Seed:      seed,
		ElapsedMs: time.Since(start).Milliseconds(),
	}, nil
}
