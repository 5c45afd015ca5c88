package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/testutil"
)

func fixtureReport() *engine.Report {
	mkt := 8.4
	return &engine.Report{
		RunID: "00000000-0000-0000-0000-000000000042",
		Request: pricing.PricingRequest{
			Ticker: "GOOGL",
			Expiry: time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
			Type:   pricing.Call,
			Strike: 110,
		},
		Snapshot: pricing.MarketSnapshot{
			Spot:         110,
			Volatility:   0.25,
			RiskFreeRate: 0.02,
			TimeToExpiry: 0.5,
			MarketPrice:  &mkt,
		},
		Estimates: []pricing.PriceEstimate{
			{Method: pricing.MethodMonteCarlo, Value: 8.31},
			{Method: pricing.MethodBlackScholes, Value: 8.27},
			{Method: pricing.MethodMarket, Value: 8.4},
		},
		Delta:     0.5576,
		Vega:      30.9,
		Trials:    50000,
		Steps:     500,
		Seed:      42,
		ElapsedMs: 12,
	}
}

func TestReportGolden(t *testing.T) {
	testutil.CompareWithGolden(t, "report", fixtureReport())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, fixtureReport())

	want := "Option Pricing:\n" +
		"Option Type: call | Strike Price: 110.00 | Expiry: 2026-12-18\n" +
		"Underlying: GOOGL | Spot Price: 110.00 | Hist Vol: 25.00% | Rate: 2.00%\n" +
		"Market Price: 8.40\n" +
		"Monte Carlo Simulation: 8.31  (trials=50000 steps=500 seed=42)\n" +
		"Black and Scholes Model: 8.27  (delta=0.5576 vega=30.9000)\n"

	if buf.String() != want {
		t.Fatalf("text report mismatch\nwant:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestWriteTextWithoutMarketQuote(t *testing.T) {
	rep := fixtureReport()
	rep.Snapshot.MarketPrice = nil
	rep.Estimates = rep.Estimates[:2]

	var buf bytes.Buffer
	WriteText(&buf, rep)

	if !strings.Contains(buf.String(), "Market Price: n/a") {
		t.Fatalf("expected n/a market line, got:\n%s", buf.String())
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rep := fixtureReport()

	if err := WriteJSON(rep, dir); err != nil {
		t.Fatalf("write json: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got engine.Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID != rep.RunID || len(got.Estimates) != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestWriteCSVRows(t *testing.T) {
	dir := t.TempDir()
	rep := fixtureReport()

	if err := WriteCSV(rep, dir); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "estimates.csv"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[1][5] != "monte_carlo" || rows[1][6] != "8.3100" {
		t.Fatalf("unexpected first estimate row: %v", rows[1])
	}
	if rows[3][5] != "market" {
		t.Fatalf("unexpected last estimate row: %v", rows[3])
	}
}
