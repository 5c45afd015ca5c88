package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BlackScholesPrice calculates the price of a European option using the
// Black-Scholes model.
//
// Parameters:
//   - optType: Call or Put
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - T: time to expiry in years
//
// Degenerate-input policy: sigma == 0 or T == 0 returns the well-defined
// limit of the formula, the discounted intrinsic value
// (call: max(S − K·e^(−rT), 0); put: max(K·e^(−rT) − S, 0)). Negative
// spot, strike, volatility, or time is ErrInvalidArgument. The result is
// always >= 0 for valid inputs.
func BlackScholesPrice(optType OptionType, S, K, r, sigma, T float64) (float64, error) {
	if optType != Call && optType != Put {
		return 0, fmt.Errorf("%w: unrecognized option type %q", ErrInvalidArgument, optType)
	}
	if S <= 0 || K <= 0 {
		return 0, fmt.Errorf("%w: spot and strike must be positive (S=%.4f K=%.4f)", ErrInvalidArgument, S, K)
	}
	if sigma < 0 || T < 0 {
		return 0, fmt.Errorf("%w: volatility and time must be non-negative (sigma=%.4f T=%.4f)", ErrInvalidArgument, sigma, T)
	}

	disc := math.Exp(-r * T)

	// Zero vol or zero time: d1/d2 are undefined, the price collapses
	// to discounted intrinsic.
	if sigma == 0 || T == 0 {
		if optType == Call {
			return math.Max(S-K*disc, 0), nil
		}
		return math.Max(K*disc-S, 0), nil
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if optType == Call {
		return S*distuv.UnitNormal.CDF(d1) - K*disc*distuv.UnitNormal.CDF(d2), nil
	}
	return K*disc*distuv.UnitNormal.CDF(-d2) - S*distuv.UnitNormal.CDF(-d1), nil
}

// BlackScholesDelta returns the option delta, the sensitivity of the
// price to a unit move in the underlying. Call deltas lie in (0, 1),
// put deltas in (-1, 0). Degenerate sigma/T follow the same intrinsic
// limit as BlackScholesPrice: delta is 1 (call, in the money), -1 (put,
// in the money) or 0.
func BlackScholesDelta(optType OptionType, S, K, r, sigma, T float64) (float64, error) {
	if optType != Call && optType != Put {
		return 0, fmt.Errorf("%w: unrecognized option type %q", ErrInvalidArgument, optType)
	}
	if S <= 0 || K <= 0 {
		return 0, fmt.Errorf("%w: spot and strike must be positive (S=%.4f K=%.4f)", ErrInvalidArgument, S, K)
	}
	if sigma < 0 || T < 0 {
		return 0, fmt.Errorf("%w: volatility and time must be non-negative (sigma=%.4f T=%.4f)", ErrInvalidArgument, sigma, T)
	}

	if sigma == 0 || T == 0 {
		switch {
		case optType == Call && S > K*math.Exp(-r*T):
			return 1, nil
		case optType == Put && S < K*math.Exp(-r*T):
			return -1, nil
		default:
			return 0, nil
		}
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	if optType == Call {
		return distuv.UnitNormal.CDF(d1), nil
	}
	return distuv.UnitNormal.CDF(d1) - 1, nil
}

// BlackScholesVega returns the sensitivity of the option price to a
// change in volatility. Identical for calls and puts. Returns 0 when
// sigma or T is zero.
func BlackScholesVega(S, K, r, sigma, T float64) float64 {
	if S <= 0 || K <= 0 || sigma <= 0 || T <= 0 {
		return 0
	}
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * distuv.UnitNormal.Prob(d1) * math.Sqrt(T)
}
