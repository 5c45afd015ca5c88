package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config (optional)")
	ticker := flag.String("ticker", "", "underlying ticker, e.g. GOOGL")
	expiryStr := flag.String("expiry", "", "option expiry date, YYYY-MM-DD")
	typeStr := flag.String("type", "call", "option type: Call or Put")
	strike := flag.Float64("strike", 0, "strike price")
	trials := flag.Int("trials", 0, "override simulation trials")
	steps := flag.Int("steps", 0, "override simulation steps")
	seed := flag.Uint64("seed", 0, "override random seed (0 = from clock)")
	rest := flag.Bool("rest", false, "run as REST server (accept pricing jobs)")
	port := flag.String("port", ":8080", "REST server listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *trials > 0 {
		cfg.Simulation.Trials = *trials
	}
	if *steps > 0 {
		cfg.Simulation.Steps = *steps
	}
	if *seed > 0 {
		cfg.Simulation.Seed = *seed
	}
	// An API key upgrades the default provider to live data.
	if cfg.Data.Provider == "synthetic" && cfg.Data.APIKey != "" {
		cfg.Data.Provider = "massive"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger.SetVerbosity(cfg.Verbosity)

	prov := buildProvider(cfg)
	eng := engine.NewEngine(cfg, prov)

	if *rest {
		serve(eng, *port)
		return
	}

	req, err := buildRequest(*ticker, *expiryStr, *typeStr, *strike)
	if err != nil {
		log.Fatalf("invalid request: %v", err)
	}

	rep, err := eng.Run(context.Background(), req)
	if err != nil {
		log.Fatalf("pricing failed: %v", err)
	}

	report.WriteText(os.Stdout, rep)

	if cfg.Report.JSON || cfg.Report.CSV {
		if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
			logger.Errorf("could not create report dir %s: %v", cfg.Report.Dir, err)
			return
		}
		if cfg.Report.JSON {
			if err := report.WriteJSON(rep, cfg.Report.Dir); err != nil {
				logger.Errorf("write json report: %v", err)
			}
		}
		if cfg.Report.CSV {
			if err := report.WriteCSV(rep, cfg.Report.Dir); err != nil {
				logger.Errorf("write csv report: %v", err)
			}
		}
		logger.Infof("reports written to %s in %dms", cfg.Report.Dir, rep.ElapsedMs)
	}
}

func buildProvider(cfg *config.Config) data.Provider {
	switch cfg.Data.Provider {
	case "massive":
		prov := data.NewMassiveDataProvider(cfg.Data.APIKey)
		if cfg.Data.BaseURL != "" {
			prov.BaseURL = cfg.Data.BaseURL
		}
		prov.RateTicker = cfg.Data.RateTicker
		if cfg.Data.HistoryDays > 0 {
			prov.HistoryDays = cfg.Data.HistoryDays
		}
		logger.Infof("massive provider enabled")
		return prov
	case "csv":
		logger.Infof("local csv provider enabled (dir=%s)", cfg.Data.CSVDir)
		return data.NewLocalCSVProvider(cfg.Data.CSVDir, cfg.Data.RateTicker, nil)
	default:
		logger.Infof("synthetic provider enabled")
		return data.NewSyntheticProvider(time.Now().UnixNano())
	}
}

func buildRequest(ticker, expiryStr, typeStr string, strike float64) (pricing.PricingRequest, error) {
	optType, err := pricing.ParseOptionType(typeStr)
	if err != nil {
		return pricing.PricingRequest{}, err
	}
	expiry, err := time.Parse("2006-01-02", expiryStr)
	if err != nil {
		return pricing.PricingRequest{}, err
	}
	return pricing.PricingRequest{
		Ticker: ticker,
		Expiry: expiry.UTC(),
		Type:   optType,
		Strike: strike,
	}, nil
}

// priceJob is the REST request body for POST /price.
type priceJob struct {
	Ticker string  `json:"ticker"`
	Expiry string  `json:"expiry"` // YYYY-MM-DD
	Type   string  `json:"type"`
	Strike float64 `json:"strike"`
}

func serve(eng *engine.Engine, port string) {
	r := mux.NewRouter()

	r.HandleFunc("/price", func(w http.ResponseWriter, req *http.Request) {
		var job priceJob
		if err := json.NewDecoder(req.Body).Decode(&job); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		preq, err := buildRequest(job.Ticker, job.Expiry, job.Type, job.Strike)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Infof("received /price request for %s", job.Ticker)
		rep, err := eng.Run(req.Context(), preq)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	}).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	logger.Infof("starting REST server on %s", port)
	log.Fatal(http.ListenAndServe(port, r))
}
