// Package config loads runtime settings for the simulator: gateway
// latency/risk parameters, the CSV replay path, and strategy selection.
// Values default sensibly and are overridable via environment variables,
// optionally read from a ".env" file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rivermark-labs/marketsim/pkg/gateway"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

// Settings is the full runtime configuration for cmd/marketsim.
type Settings struct {
	Gateway   gateway.Settings
	CSVPath   string
	Numeraire symbology.Asset
	Strategy  string
}

// Load reads Settings from the environment, applying a ".env" file first
// if present in the working directory.
func Load() (Settings, error) {
	_ = godotenv.Load()

	s := Settings{
		Gateway: gateway.Settings{
			InboundDelay:  getEnvDurationNs("MARKETSIM_INBOUND_DELAY_NS", 500_000),
			OutboundDelay: getEnvDurationNs("MARKETSIM_OUTBOUND_DELAY_NS", 500_000),
			MinOrderGap:   getEnvDurationNs("MARKETSIM_MIN_ORDER_GAP_NS", 1_000_000_000),
			MaxNOP:        getEnvFloat("MARKETSIM_MAX_NOP", 1_000_000),
		},
		CSVPath:   getEnvString("MARKETSIM_CSV_PATH", "data/quotes.csv"),
		Numeraire: symbology.Asset(getEnvString("MARKETSIM_NUMERAIRE", "USD")),
		Strategy:  getEnvString("MARKETSIM_STRATEGY", "flipper"),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings that would make the simulation meaningless.
func (s Settings) Validate() error {
	if s.CSVPath == "" {
		return fmt.Errorf("config: CSV path must not be empty")
	}
	if s.Gateway.MaxNOP < 0 {
		return fmt.Errorf("config: max NOP must be non-negative, got %v", s.Gateway.MaxNOP)
	}
	if s.Strategy != "flipper" && s.Strategy != "gambler" {
		return fmt.Errorf("config: unknown strategy %q", s.Strategy)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationNs(key string, defaultValue int64) simtime.TimestampNs {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return simtime.TimestampNs(n)
		}
	}
	return simtime.TimestampNs(defaultValue)
}
