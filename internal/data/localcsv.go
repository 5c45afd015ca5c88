package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// localCSVProvider implements Provider from a directory of per-symbol
// CSV files (daily bars). Useful for offline runs and tests. One file
// per symbol, named <symbol>.csv with ':' replaced by '_', columns:
// date,open,high,low,close,volume.
type localCSVProvider struct {
	dir        string
	rateTicker string
	secondary  Provider
}

// csvDate parses the YYYY-MM-DD date column.
type csvDate struct {
	time.Time
}

func (d *csvDate) UnmarshalCSV(s string) error {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Time = t.UTC()
	return nil
}

// csvBar is one daily bar row.
type csvBar struct {
	Date   csvDate `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// NewLocalCSVProvider constructs a Provider reading bars from dir.
// rateTicker names the yield-index file used for the risk-free rate.
func NewLocalCSVProvider(dir, rateTicker string, secondary Provider) Provider {
	return &localCSVProvider{dir: dir, rateTicker: rateTicker, secondary: secondary}
}

func (localCSVProv *localCSVProvider) Secondary() Provider {
	return localCSVProv.secondary
}

func (localCSVProv *localCSVProvider) GetSpotAndVolatility(ticker string) (float64, float64, error) {
	bars, err := localCSVProv.readBars(ticker)
	if err != nil || len(bars) < 2 {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetSpotAndVolatility(ticker)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("%w: local history for %s: %v", ErrDataUnavailable, ticker, err)
		}
		return 0, 0, fmt.Errorf("%w: only %d local bars for %s", ErrDataUnavailable, len(bars), ticker)
	}
	return spotAndVolFromBars(bars)
}

func (localCSVProv *localCSVProvider) GetRiskFreeRate() (float64, error) {
	bars, err := localCSVProv.readBars(localCSVProv.rateTicker)
	if err != nil || len(bars) == 0 {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetRiskFreeRate()
		}
		return 0, fmt.Errorf("%w: local rate file for %s: %v", ErrDataUnavailable, localCSVProv.rateTicker, err)
	}
	return bars[len(bars)-1].Close / 100, nil
}

func (localCSVProv *localCSVProvider) GetOptionMarketPrice(ticker string, expiry time.Time, optType pricing.OptionType, strike float64) (float64, error) {
	symbol := OptionSymbolFromParts(ticker, expiry, optType, strike)
	bars, err := localCSVProv.readBars(symbol)
	if err != nil || len(bars) == 0 {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetOptionMarketPrice(ticker, expiry, optType, strike)
		}
		return 0, fmt.Errorf("%w: %s", ErrNoQuote, symbol)
	}
	return bars[len(bars)-1].Close, nil
}

func (localCSVProv *localCSVProvider) GetBars(symbol string, fromDate, toDate time.Time, timespan int, multiplier string) ([]Bar, error) {
	bars, err := localCSVProv.readBars(symbol)
	if err != nil {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetBars(symbol, fromDate, toDate, timespan, multiplier)
		}
		return nil, err
	}
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(fromDate) || b.Date.After(toDate) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// readBars loads and sorts the full bar file for a symbol.
func (localCSVProv *localCSVProvider) readBars(symbol string) ([]Bar, error) {
	name := strings.ReplaceAll(symbol, ":", "_") + ".csv"
	path := filepath.Join(localCSVProv.dir, name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	logger.Tracef("loaded %d bars from %s", len(rows), path)

	out := make([]Bar, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bar{
			Date:  r.Date.Time,
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
			Vol:   r.Volume,
		})
	}
	// Files are expected date-ascending; enforce it for the vol estimate.
	for i := 1; i < len(out); i++ {
		if out[i].Date.Before(out[i-1].Date) {
			return nil, fmt.Errorf("bars in %s are not date-ascending", path)
		}
	}
	return out, nil
}
