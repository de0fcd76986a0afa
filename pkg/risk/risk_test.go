package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

type stubCache struct {
	books map[string]marketdata.TopOfBook
}

func (s stubCache) Get(topic string) (marketdata.TopOfBook, bool) {
	b, ok := s.books[topic]
	return b, ok
}

func TestSimpleModel_FairPrice_Numeraire(t *testing.T) {
	m := NewSimpleModel(stubCache{})
	assert.Equal(t, 1.0, m.FairPrice("USD"))
}

func TestSimpleModel_FairPrice_DirectMid(t *testing.T) {
	m := NewSimpleModel(stubCache{books: map[string]marketdata.TopOfBook{
		"EUR/USD": {BidPrice: 1.10, AskPrice: 1.12},
	}})
	assert.InDelta(t, 1.11, m.FairPrice("EUR"), 1e-9)
}

func TestSimpleModel_FairPrice_InverseMid(t *testing.T) {
	m := NewSimpleModel(stubCache{books: map[string]marketdata.TopOfBook{
		"USD/JPY": {BidPrice: 149, AskPrice: 151},
	}})
	assert.InDelta(t, 2.0/300.0, m.FairPrice("JPY"), 1e-9)
}

func TestSimpleModel_FairPrice_MissingQuoteIsNaN(t *testing.T) {
	m := NewSimpleModel(stubCache{})
	assert.True(t, math.IsNaN(m.FairPrice("EUR")))
}

func TestSimpleModel_PnL_SumsAcrossAssets(t *testing.T) {
	m := NewSimpleModel(stubCache{books: map[string]marketdata.TopOfBook{
		"EUR/USD": {BidPrice: 1.0, AskPrice: 1.0},
	}})
	positions := map[symbology.Asset]float64{"EUR": 100, "USD": 50}
	assert.InDelta(t, 150, m.PnL(positions), 1e-9)
}

func TestSimpleModel_NOP_MaxOfLongsAndShorts(t *testing.T) {
	m := NewSimpleModel(stubCache{books: map[string]marketdata.TopOfBook{
		"EUR/USD": {BidPrice: 1.0, AskPrice: 1.0},
	}})
	positions := map[symbology.Asset]float64{"EUR": 100, "USD": -30}
	assert.InDelta(t, 100, m.NOP(positions), 1e-9)
}

func TestSimpleModel_NOP_UnresolvableAssetPropagatesNaN(t *testing.T) {
	m := NewSimpleModel(stubCache{})
	positions := map[symbology.Asset]float64{"EUR": 100}
	assert.True(t, math.IsNaN(m.NOP(positions)))
}

func TestSimpleModel_WithNumeraireOverride(t *testing.T) {
	m := NewSimpleModel(stubCache{books: map[string]marketdata.TopOfBook{
		"EUR/JPY": {BidPrice: 160, AskPrice: 162},
	}}).WithNumeraire("JPY")
	assert.InDelta(t, 161, m.FairPrice("EUR"), 1e-9)
	assert.Equal(t, 1.0, m.FairPrice("JPY"))
}
