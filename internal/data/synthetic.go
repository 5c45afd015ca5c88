package data

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// synthDataProvider implements Provider generating synthetic data, for
// running without an API key.
type synthDataProvider struct {
	rng       *rand.Rand
	rate      float64
	secondary Provider
}

// NewSyntheticProvider constructs a seeded synthetic data provider.
// Bars are a random daily walk; the risk-free rate is fixed at 4.5%.
func NewSyntheticProvider(seed int64) Provider {
	return &synthDataProvider{rng: rand.New(rand.NewSource(seed)), rate: 0.045}
}

func (synthDataProv *synthDataProvider) Secondary() Provider {
	return synthDataProv.secondary
}

func (synthDataProv *synthDataProvider) GetSpotAndVolatility(ticker string) (float64, float64, error) {
	to := time.Now().UTC()
	bars, err := synthDataProv.GetBars(ticker, to.AddDate(-1, 0, 0), to, 1, "day")
	if err != nil {
		return 0, 0, err
	}
	return spotAndVolFromBars(bars)
}

func (synthDataProv *synthDataProvider) GetRiskFreeRate() (float64, error) {
	if synthDataProv.secondary != nil {
		return synthDataProv.secondary.GetRiskFreeRate()
	}
	return synthDataProv.rate, nil
}

func (synthDataProv *synthDataProvider) GetOptionMarketPrice(ticker string, expiry time.Time, optType pricing.OptionType, strike float64) (float64, error) {
	if synthDataProv.secondary != nil {
		return synthDataProv.secondary.GetOptionMarketPrice(ticker, expiry, optType, strike)
	}
	return 0, fmt.Errorf("%w: synthetic provider has no option quotes", ErrNoQuote)
}

func (synthDataProv *synthDataProvider) GetBars(ticker string, fromDate, toDate time.Time, timespan int, multiplier string) ([]Bar, error) {
	cur := fromDate
	price := 100.0 + float64(synthDataProv.rng.Intn(200))
	var out []Bar
	for !cur.After(toDate) {
		if cur.Weekday() != time.Saturday && cur.Weekday() != time.Sunday {
			delta := synthDataProv.rng.NormFloat64() * 0.01 * price
			open := price
			close := price + delta
			high := math.Max(open, close) + math.Abs(synthDataProv.rng.NormFloat64()*0.3)
			low := math.Min(open, close) - math.Abs(synthDataProv.rng.NormFloat64()*0.3)
			out = append(out, Bar{Date: cur, Open: open, High: high, Low: low, Close: close, Vol: float64(1000 + synthDataProv.rng.Intn(5000))})
			price = close
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return out, nil
}
