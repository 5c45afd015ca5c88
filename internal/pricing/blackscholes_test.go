package pricing

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestBlackScholesReferenceCase(t *testing.T) {
	// Classic parameters: S=100, K=100, r=0.05, sigma=0.2, T=1.
	S, K, r, sigma, T := 100.0, 100.0, 0.05, 0.2, 1.0

	call, err := BlackScholesPrice(Call, S, K, r, sigma, T)
	if err != nil {
		t.Fatalf("call err: %v", err)
	}
	put, err := BlackScholesPrice(Put, S, K, r, sigma, T)
	if err != nil {
		t.Fatalf("put err: %v", err)
	}

	if !almostEqual(call, 10.450583572185565, 1e-9) {
		t.Fatalf("call price mismatch: got=%v", call)
	}
	if !almostEqual(put, 5.573526022256971, 1e-9) {
		t.Fatalf("put price mismatch: got=%v", put)
	}
}

func TestBlackScholesATMScenario(t *testing.T) {
	// S=110, K=110, r=0.02, sigma=0.25, T=0.5; references computed
	// directly from the formula.
	S, K, r, sigma, T := 110.0, 110.0, 0.02, 0.25, 0.5

	call, err := BlackScholesPrice(Call, S, K, r, sigma, T)
	if err != nil {
		t.Fatalf("call err: %v", err)
	}
	put, err := BlackScholesPrice(Put, S, K, r, sigma, T)
	if err != nil {
		t.Fatalf("put err: %v", err)
	}

	if !almostEqual(call, 8.268531011304141, 1e-6) {
		t.Fatalf("call price mismatch: got=%v", call)
	}
	if !almostEqual(put, 7.174012723712622, 1e-6) {
		t.Fatalf("put price mismatch: got=%v", put)
	}
}

func TestBlackScholesPutCallParity(t *testing.T) {
	// C - P = S - K*e^{-rT}
	cases := []struct {
		S, K, r, sigma, T float64
	}{
		{100, 100, 0.05, 0.2, 1},
		{110, 110, 0.02, 0.25, 0.5},
		{90, 120, 0.03, 0.45, 2},
		{250, 180, -0.01, 0.15, 0.25},
	}

	for _, c := range cases {
		call, err := BlackScholesPrice(Call, c.S, c.K, c.r, c.sigma, c.T)
		if err != nil {
			t.Fatalf("call err: %v", err)
		}
		put, err := BlackScholesPrice(Put, c.S, c.K, c.r, c.sigma, c.T)
		if err != nil {
			t.Fatalf("put err: %v", err)
		}

		lhs := call - put
		rhs := c.S - c.K*math.Exp(-c.r*c.T)
		if !almostEqual(lhs, rhs, 1e-9) {
			t.Fatalf("parity violated for %+v: LHS=%v RHS=%v", c, lhs, rhs)
		}
		if call < 0 || put < 0 {
			t.Fatalf("negative price for %+v: call=%v put=%v", c, call, put)
		}
	}
}

func TestBlackScholesDegenerateLimit(t *testing.T) {
	// sigma=0 or T=0 collapses to discounted intrinsic value.
	call, err := BlackScholesPrice(Call, 100, 90, 0.05, 0, 1)
	if err != nil {
		t.Fatalf("sigma=0 call err: %v", err)
	}
	if !almostEqual(call, 100-90*math.Exp(-0.05), 1e-12) {
		t.Fatalf("sigma=0 call mismatch: got=%v", call)
	}

	put, err := BlackScholesPrice(Put, 80, 100, 0.05, 0, 1)
	if err != nil {
		t.Fatalf("sigma=0 put err: %v", err)
	}
	if !almostEqual(put, 100*math.Exp(-0.05)-80, 1e-12) {
		t.Fatalf("sigma=0 put mismatch: got=%v", put)
	}

	// T=0: pure intrinsic, no discounting left.
	call, err = BlackScholesPrice(Call, 90, 100, 0.05, 0.2, 0)
	if err != nil {
		t.Fatalf("T=0 call err: %v", err)
	}
	if call != 0 {
		t.Fatalf("T=0 OTM call should be 0, got %v", call)
	}
	put, err = BlackScholesPrice(Put, 90, 100, 0.05, 0.2, 0)
	if err != nil {
		t.Fatalf("T=0 put err: %v", err)
	}
	if put != 10 {
		t.Fatalf("T=0 ITM put should be 10, got %v", put)
	}
}

func TestBlackScholesInvalidInputs(t *testing.T) {
	cases := []struct {
		name              string
		typ               OptionType
		S, K, r, sigma, T float64
	}{
		{"negative spot", Call, -1, 100, 0.05, 0.2, 1},
		{"zero strike", Put, 100, 0, 0.05, 0.2, 1},
		{"negative sigma", Call, 100, 100, 0.05, -0.1, 1},
		{"negative time", Call, 100, 100, 0.05, 0.2, -1},
		{"bad type", OptionType("straddle"), 100, 100, 0.05, 0.2, 1},
	}

	for _, c := range cases {
		_, err := BlackScholesPrice(c.typ, c.S, c.K, c.r, c.sigma, c.T)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", c.name, err)
		}
		_, err = BlackScholesDelta(c.typ, c.S, c.K, c.r, c.sigma, c.T)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: delta expected ErrInvalidArgument, got %v", c.name, err)
		}
	}
}

func TestBlackScholesGreeks(t *testing.T) {
	S, K, r, sigma, T := 100.0, 100.0, 0.05, 0.2, 1.0

	delta, err := BlackScholesDelta(Call, S, K, r, sigma, T)
	if err != nil {
		t.Fatalf("delta err: %v", err)
	}
	if !almostEqual(delta, 0.6368306511756191, 1e-9) {
		t.Fatalf("call delta mismatch: got=%v", delta)
	}

	putDelta, err := BlackScholesDelta(Put, S, K, r, sigma, T)
	if err != nil {
		t.Fatalf("put delta err: %v", err)
	}
	if !almostEqual(delta-putDelta, 1, 1e-12) {
		t.Fatalf("call delta - put delta should be 1, got %v", delta-putDelta)
	}

	vega := BlackScholesVega(S, K, r, sigma, T)
	if !almostEqual(vega, 37.524, 1e-3) {
		t.Fatalf("vega mismatch: got=%v", vega)
	}
	if BlackScholesVega(S, K, r, 0, T) != 0 {
		t.Fatalf("vega at sigma=0 should be 0")
	}
}
