// Package pricing holds the option value objects and the closed-form
// Black-Scholes pricer.
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidArgument marks malformed pricing inputs (non-positive strike,
// expiry not in the future, unknown option type, zero trials/steps).
// Callers fail fast on it before any simulation work is done.
var ErrInvalidArgument = errors.New("invalid argument")

// OptionType is the side of a single-leg European option.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType normalizes a user-supplied option type string.
// Accepts "call"/"c" and "put"/"p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return "", fmt.Errorf("%w: unrecognized option type %q, use 'Call' or 'Put'", ErrInvalidArgument, s)
	}
}

// PricingRequest identifies the single option contract to price.
type PricingRequest struct {
	Ticker string     `json:"ticker"`
	Expiry time.Time  `json:"expiry"`
	Type   OptionType `json:"type"`
	Strike float64    `json:"strike"`
}

// Validate checks the request against the evaluation time now.
// All violations are ErrInvalidArgument.
func (req PricingRequest) Validate(now time.Time) error {
	if strings.TrimSpace(req.Ticker) == "" {
		return fmt.Errorf("%w: ticker is empty", ErrInvalidArgument)
	}
	if req.Strike <= 0 {
		return fmt.Errorf("%w: strike must be positive, got %.4f", ErrInvalidArgument, req.Strike)
	}
	if req.Type != Call && req.Type != Put {
		return fmt.Errorf("%w: unrecognized option type %q", ErrInvalidArgument, req.Type)
	}
	if !req.Expiry.After(now) {
		return fmt.Errorf("%w: expiry %s is not after evaluation date %s",
			ErrInvalidArgument,
			req.Expiry.Format("2006-01-02"),
			now.Format("2006-01-02"))
	}
	return nil
}

// TimeToExpiry returns the year fraction between now and the expiry,
// on a 365-day year.
func (req PricingRequest) TimeToExpiry(now time.Time) float64 {
	return req.Expiry.Sub(now).Hours() / 24 / 365
}

// MarketSnapshot is the market state captured once per pricing run.
// It is never mutated after the data provider fills it.
type MarketSnapshot struct {
	Spot         float64  `json:"spot"`                   // last close of the underlying
	Volatility   float64  `json:"volatility"`             // annualized historical vol
	RiskFreeRate float64  `json:"risk_free_rate"`         // annual, as a decimal
	TimeToExpiry float64  `json:"time_to_expiry"`         // years
	MarketPrice  *float64 `json:"market_price,omitempty"` // observed option price, nil if unquoted
}

// Method identifies how a PriceEstimate was produced.
type Method string

const (
	MethodMonteCarlo   Method = "monte_carlo"
	MethodBlackScholes Method = "black_scholes"
	MethodMarket       Method = "market"
)

// PriceEstimate is one priced view of the contract.
type PriceEstimate struct {
	Method Method  `json:"method"`
	Value  float64 `json:"value"`
}
