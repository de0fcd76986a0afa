package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivermark-labs/marketsim/pkg/simtime"
)

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, simtime.TimestampNs(500_000), s.Gateway.InboundDelay)
	assert.Equal(t, simtime.TimestampNs(500_000), s.Gateway.OutboundDelay)
	assert.Equal(t, simtime.TimestampNs(1_000_000_000), s.Gateway.MinOrderGap)
	assert.Equal(t, 1_000_000.0, s.Gateway.MaxNOP)
	assert.Equal(t, "data/quotes.csv", s.CSVPath)
	assert.Equal(t, "flipper", s.Strategy)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MARKETSIM_MIN_ORDER_GAP_NS", "42")
	t.Setenv("MARKETSIM_MAX_NOP", "7.5")
	t.Setenv("MARKETSIM_STRATEGY", "gambler")
	t.Setenv("MARKETSIM_CSV_PATH", "testdata/quotes.csv")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, simtime.TimestampNs(42), s.Gateway.MinOrderGap)
	assert.Equal(t, 7.5, s.Gateway.MaxNOP)
	assert.Equal(t, "gambler", s.Strategy)
	assert.Equal(t, "testdata/quotes.csv", s.CSVPath)
}

func TestValidate_RejectsEmptyCSVPath(t *testing.T) {
	s := Settings{CSVPath: "", Strategy: "flipper"}
	assert.Error(t, s.Validate())
}

func TestValidate_RejectsNegativeMaxNOP(t *testing.T) {
	s := Settings{CSVPath: "x.csv", Strategy: "flipper"}
	s.Gateway.MaxNOP = -1
	assert.Error(t, s.Validate())
}

func TestValidate_RejectsUnknownStrategy(t *testing.T) {
	s := Settings{CSVPath: "x.csv", Strategy: "unknown"}
	assert.Error(t, s.Validate())
}

func TestValidate_AcceptsKnownStrategies(t *testing.T) {
	for _, strat := range []string{"flipper", "gambler"} {
		s := Settings{CSVPath: "x.csv", Strategy: strat}
		assert.NoError(t, s.Validate())
	}
}
