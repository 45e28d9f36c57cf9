package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

type APIConfig struct {
	Addr            string
	DatabaseURL     string
	IdentityURL     string
	IdentityAPIKey  string
	PaymentsURL     string
	PaymentsAPIKey  string
	WorkerTickEvery time.Duration
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("LEMONOMICS_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:            addr,
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		IdentityURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("IDENTITY_URL")), "/"),
		IdentityAPIKey:  strings.TrimSpace(os.Getenv("IDENTITY_ANON_KEY")),
		PaymentsURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("PAYMENTS_URL")), "/"),
		PaymentsAPIKey:  strings.TrimSpace(os.Getenv("PAYMENTS_API_KEY")),
		WorkerTickEvery: envDurationDefault("LEMONOMICS_WORKER_TICK_EVERY", 15*time.Minute),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.IdentityURL == "" {
		return cfg, fmt.Errorf("IDENTITY_URL is required")
	}
	if cfg.IdentityAPIKey == "" {
		return cfg, fmt.Errorf("IDENTITY_ANON_KEY is required")
	}
	if cfg.PaymentsURL == "" {
		return cfg, fmt.Errorf("PAYMENTS_URL is required")
	}
	return cfg, nil
}

// LoadGameConfig starts from the production economy constants and applies
// the few env overrides operators actually tune.
func LoadGameConfig() sim.GameConfig {
	cfg := sim.DefaultConfig()
	cfg.PriceMax = envFloatDefault("LEMONOMICS_PRICE_MAX", cfg.PriceMax)
	cfg.AdSpendMax = envFloatDefault("LEMONOMICS_AD_SPEND_MAX", cfg.AdSpendMax)
	cfg.BaseCustomers = envIntDefault("LEMONOMICS_BASE_CUSTOMERS", cfg.BaseCustomers)
	cfg.FixedDailyCost = envFloatDefault("LEMONOMICS_FIXED_DAILY_COST", cfg.FixedDailyCost)
	return cfg
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("LEMON_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
