// Package config defines the application configuration: a TOML file
// merged over built-in defaults, with PRICER_* environment variable
// overrides for secrets and deploy-time knobs.
package config

import (
	"fmt"
)

// Config is the full application configuration.
type Config struct {
	// Verbosity: 0=errors, 1=info, 2=debug, 3=trace.
	Verbosity int `toml:"verbosity"`

	Data       DataConfig   `toml:"data"`
	Simulation SimConfig    `toml:"simulation"`
	Report     ReportConfig `toml:"report"`
}

// DataConfig selects and parameterizes the market data provider.
type DataConfig struct {
	// Provider is one of "massive", "csv", "synthetic".
	Provider string `toml:"provider"`

	// APIKey authenticates against Massive. Usually injected via
	// PRICER_DATA_API_KEY or a .env file rather than committed in TOML.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the Massive endpoint (tests point it at a fake).
	BaseURL string `toml:"base_url"`

	// RateTicker is the yield index for the risk-free rate.
	RateTicker string `toml:"rate_ticker"`

	// FixedRate, when set, bypasses the provider's rate fetch entirely.
	FixedRate *float64 `toml:"fixed_rate"`

	// HistoryDays is the lookback window for the volatility estimate.
	HistoryDays int `toml:"history_days"`

	// CSVDir is the bar-file directory for the csv provider.
	CSVDir string `toml:"csv_dir"`
}

// SimConfig parameterizes the Monte Carlo run.
type SimConfig struct {
	Trials  int    `toml:"trials"`
	Steps   int    `toml:"steps"`
	Seed    uint64 `toml:"seed"`    // 0 means seed from the clock at run time
	Workers int    `toml:"workers"` // 0 means GOMAXPROCS
}

// ReportConfig controls report output.
type ReportConfig struct {
	Dir  string `toml:"dir"`
	JSON bool   `toml:"json"`
	CSV  bool   `toml:"csv"`
}

// Defaults returns the built-in configuration: synthetic data, the
// 100k-trial, 500-step simulation, reports under ./out.
func Defaults() Config {
	return Config{
		Verbosity: 1,
		Data: DataConfig{
			Provider:    "synthetic",
			RateTicker:  "I:IRX",
			HistoryDays: 365,
		},
		Simulation: SimConfig{
			Trials: 100_000,
			Steps:  500,
		},
		Report: ReportConfig{
			Dir:  "./out",
			JSON: true,
			CSV:  true,
		},
	}
}

// Validate checks the configuration for values that would fail later in
// less obvious places.
func (cfg *Config) Validate() error {
	switch cfg.Data.Provider {
	case "massive", "csv", "synthetic":
	default:
		return fmt.Errorf("config: unknown data provider %q", cfg.Data.Provider)
	}
	if cfg.Data.Provider == "massive" && cfg.Data.APIKey == "" {
		return fmt.Errorf("config: massive provider requires an api key (PRICER_DATA_API_KEY)")
	}
	if cfg.Data.Provider == "csv" && cfg.Data.CSVDir == "" {
		return fmt.Errorf("config: csv provider requires data.csv_dir")
	}
	if cfg.Simulation.Trials < 1 {
		return fmt.Errorf("config: simulation.trials must be >= 1, got %d", cfg.Simulation.Trials)
	}
	if cfg.Simulation.Steps < 1 {
		return fmt.Errorf("config: simulation.steps must be >= 1, got %d", cfg.Simulation.Steps)
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > 3 {
		return fmt.Errorf("config: verbosity must be 0..3, got %d", cfg.Verbosity)
	}
	return nil
}
