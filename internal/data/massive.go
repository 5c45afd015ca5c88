// Massive-backed Provider implementation. Talks to the Massive
// aggregates HTTP APIs directly rather than through the official SDK,
// with pagination-free range queries, rate-limit retries, and verbose
// Debug/Trace logging for diagnostics.
package data

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// massiveDataProvider implements the Provider interface using Massive APIs.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string

	// RateTicker is the treasury-yield index used for the risk-free
	// rate (its last close divided by 100), e.g. I:IRX for the 13-week
	// T-bill yield.
	RateTicker string

	// HistoryDays is the lookback window for the volatility estimate.
	HistoryDays int

	// secondary is an optional fallback provider.
	secondary Provider
}

// NewMassiveDataProvider constructs a Massive-backed data provider with
// an HTTP client tuned for timeouts, pooling, HTTP/2 and gzip.
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	return &massiveDataProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL:     "https://api.massive.com",
		RateTicker:  "I:IRX",
		HistoryDays: 365,
	}
}

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// GetSpotAndVolatility derives the spot price and annualized historical
// volatility from one lookback window of daily bars.
func (massiveDataProv *massiveDataProvider) GetSpotAndVolatility(ticker string) (float64, float64, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -massiveDataProv.HistoryDays)

	bars, err := massiveDataProv.GetBars(ticker, from, to, 1, "day")
	if err != nil || len(bars) < 2 {
		if massiveDataProv.secondary != nil {
			logger.Tracef("delegating spot/vol for %s to secondary provider", ticker)
			return massiveDataProv.secondary.GetSpotAndVolatility(ticker)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("%w: history for %s: %v", ErrDataUnavailable, ticker, err)
		}
		return 0, 0, fmt.Errorf("%w: only %d daily bars for %s", ErrDataUnavailable, len(bars), ticker)
	}

	spot, vol, err := spotAndVolFromBars(bars)
	if err != nil {
		return 0, 0, err
	}

	logger.Debugf("%s: spot=%.2f hist vol=%.2f%% over %d bars", ticker, spot, vol*100, len(bars))
	return spot, vol, nil
}

// GetRiskFreeRate returns the last close of the configured yield index
// divided by 100.
func (massiveDataProv *massiveDataProvider) GetRiskFreeRate() (float64, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)

	bars, err := massiveDataProv.GetBars(massiveDataProv.RateTicker, from, to, 1, "day")
	if err != nil || len(bars) == 0 {
		if massiveDataProv.secondary != nil {
			logger.Tracef("delegating risk-free rate to secondary provider")
			return massiveDataProv.secondary.GetRiskFreeRate()
		}
		if err != nil {
			return 0, fmt.Errorf("%w: rate ticker %s: %v", ErrDataUnavailable, massiveDataProv.RateTicker, err)
		}
		return 0, fmt.Errorf("%w: no recent bars for rate ticker %s", ErrDataUnavailable, massiveDataProv.RateTicker)
	}

	rate := bars[len(bars)-1].Close / 100
	logger.Debugf("risk-free rate from %s = %.4f", massiveDataProv.RateTicker, rate)
	return rate, nil
}

// GetOptionMarketPrice returns the most recent close for the contract's
// OCC symbol, or ErrNoQuote when the contract has not traded recently.
func (massiveDataProv *massiveDataProvider) GetOptionMarketPrice(
	ticker string,
	expiry time.Time,
	optType pricing.OptionType,
	strike float64,
) (float64, error) {

	symbol := OptionSymbolFromParts(ticker, expiry, optType, strike)
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -5)

	logger.Debugf("option price lookup: %s strike=%.2f expiry=%s symbol=%s",
		ticker, strike, expiry.Format("2006-01-02"), symbol)

	bars, err := massiveDataProv.GetBars(symbol, from, to, 1, "day")
	if err != nil || len(bars) == 0 {
		if massiveDataProv.secondary != nil {
			logger.Tracef("delegating option quote for %s to secondary provider", symbol)
			return massiveDataProv.secondary.GetOptionMarketPrice(ticker, expiry, optType, strike)
		}
		if err != nil {
			return 0, fmt.Errorf("fetch option bars for %s: %w", symbol, err)
		}
		return 0, fmt.Errorf("%w: %s", ErrNoQuote, symbol)
	}

	return bars[len(bars)-1].Close, nil
}

// GetBars retrieves OHLCV bars for the given symbol and time range from
// the Massive aggregates endpoint.
func (massiveDataProv *massiveDataProvider) GetBars(
	symbol string,
	fromDate, toDate time.Time,
	timespan int,
	multiplier string,
) ([]Bar, error) {

	maxLimit := 50000

	logger.Debugf(
		"fetching bars: %s from=%s to=%s span=%d%s",
		symbol,
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
		timespan,
		multiplier,
	)

	url := fmt.Sprintf(
		"%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s?adjusted=true&sort=asc&limit=%d&apiKey=%s",
		massiveDataProv.BaseURL,
		symbol,
		timespan,
		multiplier,
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
		maxLimit,
		massiveDataProv.APIKey,
	)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		logger.Errorf("bars request errored=%v", err)
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("x-api-key", massiveDataProv.APIKey)

	resp, err := massiveDataProv.processGetRequest(req)
	if err != nil {
		logger.Errorf("bars request failed: %v", err)
		return nil, fmt.Errorf("massive api request failed: %w", err)
	}
	defer resp.Body.Close()

	// Massive/Polygon style response model
	var body struct {
		Ticker   string `json:"ticker"`
		Adjusted bool   `json:"adjusted"`
		Results  []struct {
			Open      float64 `json:"o"`
			Close     float64 `json:"c"`
			High      float64 `json:"h"`
			Low       float64 `json:"l"`
			VWAP      float64 `json:"vw"` // volume-weighted average price
			Volume    float64 `json:"v"`  // trading volume in the window
			Trades    int64   `json:"n"`  // number of transactions in the window
			Timestamp int64   `json:"t"`  // epoch millis
		} `json:"results"`
		Status string `json:"status"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing massive response: %w", err)
	}

	logger.Tracef("bars received: %d records", len(body.Results))

	out := make([]Bar, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, Bar{
			Date:  time.UnixMilli(r.Timestamp).UTC(),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
			Vol:   r.Volume,
		})
	}

	return out, nil
}

// processGetRequest executes an HTTP GET request with rate-limit handling.
//
// Behavior:
//   - Retries on HTTP 429, sleeping until the next minute boundary
//   - Returns immediately on success (<400)
func (massiveDataProv *massiveDataProvider) processGetRequest(
	req *http.Request,
) (*http.Response, error) {

	for {
		resp, err := massiveDataProv.Client.Do(req)
		if err != nil {
			return nil, err
		}

		// Success
		if resp.StatusCode < 400 {
			return resp, nil
		}

		// Handle per-minute rate limit (commonly 429)
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()

			now := time.Now()
			sleepDuration := time.Until(
				now.Truncate(time.Minute).Add(time.Minute),
			)

			logger.Infof("rate limit hit, sleeping for %s", sleepDuration)
			time.Sleep(sleepDuration)
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf(
			"unexpected status code %d: %s",
			resp.StatusCode,
			string(body),
		)
	}
}
