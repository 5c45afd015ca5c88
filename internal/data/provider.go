// Package data provides market data provider implementations.
//
// A Provider supplies everything the pricing run needs from the outside
// world: underlying spot and historical volatility, the risk-free rate,
// and the observed market price of the option contract. Providers can
// chain to a Secondary() fallback; failures are surfaced, never
// silently defaulted.
package data

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// ErrDataUnavailable marks a provider failure to supply spot, volatility
// or rate data (unknown ticker, no trading history, upstream outage).
// The core never substitutes a fabricated value for it.
var ErrDataUnavailable = errors.New("market data unavailable")

// ErrNoQuote marks an option contract with no observable market price.
// It only suppresses the Market estimate; model prices still run.
var ErrNoQuote = errors.New("no market quote for contract")

// Provider supplies market data for one pricing run.
type Provider interface {
	// Secondary returns the fallback provider, or nil.
	Secondary() Provider

	// GetSpotAndVolatility returns the last close of the underlying and
	// its annualized historical volatility.
	GetSpotAndVolatility(ticker string) (spot, volatility float64, err error)

	// GetRiskFreeRate returns the current annualized risk-free rate as
	// a decimal.
	GetRiskFreeRate() (float64, error)

	// GetOptionMarketPrice returns the most recent traded price of the
	// contract, or ErrNoQuote if it has none.
	GetOptionMarketPrice(ticker string, expiry time.Time, optType pricing.OptionType, strike float64) (float64, error)

	// GetBars returns OHLCV bars for a symbol over [fromDate, toDate].
	GetBars(symbol string, fromDate, toDate time.Time, timespan int, multiplier string) ([]Bar, error)
}

// Bar simplified OHLC
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// tradingDaysPerYear is the annualization base for daily returns.
const tradingDaysPerYear = 252.0

// AnnualizedVolatility estimates annualized volatility from a series of
// daily closes as the sample standard deviation of daily log returns
// scaled by sqrt(252). Fewer than two closes is ErrDataUnavailable:
// there is no honest estimate to give.
func AnnualizedVolatility(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 closes for volatility, got %d", ErrDataUnavailable, len(closes))
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}
	return stat.StdDev(rets, nil) * math.Sqrt(tradingDaysPerYear), nil
}

// OptionSymbolFromParts formats an OCC-style option ticker:
// O:<root><YYMMDD><C|P><strike*1000 padded to 8 digits>
func OptionSymbolFromParts(underlying string, expiry time.Time, optType pricing.OptionType, strike float64) string {
	expDt := expiry.UTC().Format("060102")
	side := "C"
	if optType == pricing.Put {
		side = "P"
	}
	strikeInt := int(math.Round(strike * 1000))
	return fmt.Sprintf("O:%s%s%s%08d", strings.ToUpper(underlying), expDt, side, strikeInt)
}

// spotAndVolFromBars is the shared reduction all providers use: spot is
// the last close, volatility the annualized stddev of daily log returns.
func spotAndVolFromBars(bars []Bar) (float64, float64, error) {
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("%w: no daily bars", ErrDataUnavailable)
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	vol, err := AnnualizedVolatility(closes)
	if err != nil {
		return 0, 0, err
	}
	return closes[len(closes)-1], vol, nil
}
