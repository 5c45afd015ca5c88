// Package report renders a pricing report as text, JSON, and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// WriteJSON writes the full report as pretty JSON to dir/report.json.
func WriteJSON(rep *engine.Report, outdir string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "report.json"), b, 0644)
}

// WriteCSV writes one row per estimate to dir/estimates.csv.
func WriteCSV(rep *engine.Report, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "estimates.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"run_id", "ticker", "type", "strike", "expiry", "method", "value"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, est := range rep.Estimates {
		row := []string{
			rep.RunID,
			rep.Request.Ticker,
			string(rep.Request.Type),
			fmt.Sprintf("%.2f", rep.Request.Strike),
			rep.Request.Expiry.Format("2006-01-02"),
			string(est.Method),
			fmt.Sprintf("%.4f", est.Value),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteText renders the human-readable comparison block.
func WriteText(w io.Writer, rep *engine.Report) {
	fmt.Fprintf(w, "Option Pricing:\n")
	fmt.Fprintf(w, "Option Type: %s | Strike Price: %.2f | Expiry: %s\n",
		rep.Request.Type, rep.Request.Strike, rep.Request.Expiry.Format("2006-01-02"))
	fmt.Fprintf(w, "Underlying: %s | Spot Price: %.2f | Hist Vol: %.2f%% | Rate: %.2f%%\n",
		rep.Request.Ticker, rep.Snapshot.Spot, rep.Snapshot.Volatility*100, rep.Snapshot.RiskFreeRate*100)

	if est := rep.Estimate(pricing.MethodMarket); est != nil {
		fmt.Fprintf(w, "Market Price: %.2f\n", est.Value)
	} else {
		fmt.Fprintf(w, "Market Price: n/a\n")
	}
	if est := rep.Estimate(pricing.MethodMonteCarlo); est != nil {
		fmt.Fprintf(w, "Monte Carlo Simulation: %.2f  (trials=%d steps=%d seed=%d)\n",
			est.Value, rep.Trials, rep.Steps, rep.Seed)
	}
	if est := rep.Estimate(pricing.MethodBlackScholes); est != nil {
		fmt.Fprintf(w, "Black and Scholes Model: %.2f  (delta=%.4f vega=%.4f)\n",
			est.Value, rep.Delta, rep.Vega)
	}
}
