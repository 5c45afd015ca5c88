package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path (skipped when path is
// empty), merges it on top of the built-in defaults, applies PRICER_*
// environment variable overrides, and returns the final Config. The
// returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PRICER_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
// This lets operators inject secrets without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Data.Provider, "PRICER_DATA_PROVIDER")
	setStr(&cfg.Data.APIKey, "PRICER_DATA_API_KEY")
	setStr(&cfg.Data.APIKey, "POLYGON_API_KEY") // compatibility alias
	setStr(&cfg.Data.BaseURL, "PRICER_DATA_BASE_URL")
	setStr(&cfg.Data.RateTicker, "PRICER_DATA_RATE_TICKER")
	setStr(&cfg.Data.CSVDir, "PRICER_DATA_CSV_DIR")
	setInt(&cfg.Data.HistoryDays, "PRICER_DATA_HISTORY_DAYS")

	setInt(&cfg.Simulation.Trials, "PRICER_SIM_TRIALS")
	setInt(&cfg.Simulation.Steps, "PRICER_SIM_STEPS")
	setUint(&cfg.Simulation.Seed, "PRICER_SIM_SEED")
	setInt(&cfg.Simulation.Workers, "PRICER_SIM_WORKERS")

	setStr(&cfg.Report.Dir, "PRICER_REPORT_DIR")

	setInt(&cfg.Verbosity, "PRICER_VERBOSITY")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
