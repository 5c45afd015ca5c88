package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// stubProvider is a canned data.Provider for orchestration tests.
type stubProvider struct {
	spot, vol, rate float64
	quote           float64
	spotErr         error
	rateErr         error
	quoteErr        error

	spotCalls  int
	rateCalls  int
	quoteCalls int
}

func (s *stubProvider) Secondary() data.Provider { return nil }

func (s *stubProvider) GetSpotAndVolatility(string) (float64, float64, error) {
	s.spotCalls++
	return s.spot, s.vol, s.spotErr
}

func (s *stubProvider) GetRiskFreeRate() (float64, error) {
	s.rateCalls++
	return s.rate, s.rateErr
}

func (s *stubProvider) GetOptionMarketPrice(string, time.Time, pricing.OptionType, float64) (float64, error) {
	s.quoteCalls++
	return s.quote, s.quoteErr
}

func (s *stubProvider) GetBars(string, time.Time, time.Time, int, string) ([]data.Bar, error) {
	return nil, nil
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Simulation.Trials = 20_000
	cfg.Simulation.Steps = 8
	cfg.Simulation.Seed = 42
	cfg.Simulation.Workers = 2
	return &cfg
}

func testRequest() pricing.PricingRequest {
	return pricing.PricingRequest{
		Ticker: "GOOGL",
		Expiry: time.Now().UTC().AddDate(0, 6, 0),
		Type:   pricing.Call,
		Strike: 110,
	}
}

func TestEngineRunAllThreeEstimates(t *testing.T) {
	prov := &stubProvider{spot: 110, vol: 0.25, rate: 0.02, quote: 8.4}
	eng := NewEngine(testConfig(), prov)

	rep, err := eng.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rep.Estimates) != 3 {
		t.Fatalf("expected 3 estimates, got %d", len(rep.Estimates))
	}
	if rep.RunID == "" {
		t.Fatal("report must carry a run id")
	}
	if rep.Snapshot.Spot != 110 || rep.Snapshot.Volatility != 0.25 || rep.Snapshot.RiskFreeRate != 0.02 {
		t.Fatalf("snapshot does not echo provider data: %+v", rep.Snapshot)
	}
	if rep.Snapshot.MarketPrice == nil || *rep.Snapshot.MarketPrice != 8.4 {
		t.Fatalf("snapshot should carry the observed market price, got %v", rep.Snapshot.MarketPrice)
	}

	mc := rep.Estimate(pricing.MethodMonteCarlo)
	bs := rep.Estimate(pricing.MethodBlackScholes)
	mkt := rep.Estimate(pricing.MethodMarket)
	if mc == nil || bs == nil || mkt == nil {
		t.Fatalf("missing estimate method: %+v", rep.Estimates)
	}
	if mkt.Value != 8.4 {
		t.Fatalf("market estimate = %v, want 8.4", mkt.Value)
	}
	// Both model prices come from the same snapshot; they must agree to
	// Monte Carlo noise.
	if diff := math.Abs(mc.Value - bs.Value); diff > 0.5 {
		t.Fatalf("monte carlo %v vs black-scholes %v, diff %v too large", mc.Value, bs.Value, diff)
	}
}

func TestEngineRunMissingQuoteKeepsModelPrices(t *testing.T) {
	prov := &stubProvider{spot: 110, vol: 0.25, rate: 0.02, quoteErr: data.ErrNoQuote}
	eng := NewEngine(testConfig(), prov)

	rep, err := eng.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("a missing quote must not fail the run: %v", err)
	}
	if len(rep.Estimates) != 2 {
		t.Fatalf("expected 2 estimates without a quote, got %d", len(rep.Estimates))
	}
	if rep.Estimate(pricing.MethodMarket) != nil {
		t.Fatal("market estimate should be absent")
	}
	if rep.Snapshot.MarketPrice != nil {
		t.Fatal("snapshot market price should be nil")
	}
}

func TestEngineRunMarketStageFailureIsPartial(t *testing.T) {
	prov := &stubProvider{spot: 110, vol: 0.25, rate: 0.02, quoteErr: errors.New("provider exploded")}
	eng := NewEngine(testConfig(), prov)

	rep, err := eng.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("a market stage failure must not block model prices: %v", err)
	}
	if rep.Estimate(pricing.MethodMonteCarlo) == nil || rep.Estimate(pricing.MethodBlackScholes) == nil {
		t.Fatal("model estimates must survive a market stage failure")
	}
}

func TestEngineRunDataUnavailable(t *testing.T) {
	prov := &stubProvider{spotErr: data.ErrDataUnavailable}
	eng := NewEngine(testConfig(), prov)

	_, err := eng.Run(context.Background(), testRequest())
	if !errors.Is(err, data.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if prov.quoteCalls != 0 {
		t.Fatal("quote stage must not run after a snapshot failure")
	}
}

func TestEngineRunInvalidRequestBlocksEverything(t *testing.T) {
	prov := &stubProvider{spot: 110, vol: 0.25, rate: 0.02}
	eng := NewEngine(testConfig(), prov)

	req := testRequest()
	req.Strike = -1

	_, err := eng.Run(context.Background(), req)
	if !errors.Is(err, pricing.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if prov.spotCalls != 0 || prov.rateCalls != 0 || prov.quoteCalls != 0 {
		t.Fatal("no provider stage may run for an invalid request")
	}
}

func TestEngineRunFixedRateSkipsProvider(t *testing.T) {
	prov := &stubProvider{spot: 110, vol: 0.25, rateErr: errors.New("should not be called"), quoteErr: data.ErrNoQuote}
	cfg := testConfig()
	fixed := 0.03
	cfg.Data.FixedRate = &fixed
	eng := NewEngine(cfg, prov)

	rep, err := eng.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.rateCalls != 0 {
		t.Fatal("fixed rate must bypass the provider rate fetch")
	}
	if rep.Snapshot.RiskFreeRate != 0.03 {
		t.Fatalf("snapshot rate = %v, want fixed 0.03", rep.Snapshot.RiskFreeRate)
	}
}
