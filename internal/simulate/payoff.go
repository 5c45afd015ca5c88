package simulate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Payoffs maps terminal prices to per-path option payoffs at expiry:
// max(S−K, 0) for calls, max(K−S, 0) for puts.
func Payoffs(terminals []float64, strike float64, optType pricing.OptionType) ([]float64, error) {
	if strike <= 0 {
		return nil, fmt.Errorf("%w: strike must be positive, got %.4f", pricing.ErrInvalidArgument, strike)
	}

	out := make([]float64, len(terminals))
	switch optType {
	case pricing.Call:
		for i, s := range terminals {
			out[i] = math.Max(s-strike, 0)
		}
	case pricing.Put:
		for i, s := range terminals {
			out[i] = math.Max(strike-s, 0)
		}
	default:
		return nil, fmt.Errorf("%w: unrecognized option type %q", pricing.ErrInvalidArgument, optType)
	}
	return out, nil
}

// DiscountedMean returns exp(−r·t) · mean(payoffs), the present value
// of the expected payoff. An empty payoff slice is ErrInvalidArgument
// (trials >= 1 is enforced upstream).
func DiscountedMean(payoffs []float64, riskFreeRate, t float64) (float64, error) {
	if len(payoffs) == 0 {
		return 0, fmt.Errorf("%w: no payoffs to average", pricing.ErrInvalidArgument)
	}
	return math.Exp(-riskFreeRate*t) * stat.Mean(payoffs, nil), nil
}
