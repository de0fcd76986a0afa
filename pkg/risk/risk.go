// Package risk implements fair-price lookup and portfolio PnL/NOP
// computation over cached top-of-book quotes.
package risk

import (
	"math"

	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

// Model exposes fair-price lookup and PnL/NOP computation. Numeraire
// defaults to USD but is parameterized, per spec.md §4.5.
type Model interface {
	FairPrice(asset symbology.Asset) float64
	PnL(positions map[symbology.Asset]float64) float64
	NOP(positions map[symbology.Asset]float64) float64
}

// TopOfBookCache is the subset of pubsub.CacheSubscriber the risk model
// needs — a read-only lookup by symbol.
type TopOfBookCache interface {
	Get(topic string) (marketdata.TopOfBook, bool)
}

var _ TopOfBookCache = (*pubsub.CacheSubscriber[marketdata.TopOfBook])(nil)

// SimpleModel is the reference fair-price model: 1.0 for the numeraire, the
// mid of the cached "{asset}/{numeraire}" quote, or the inverse mid of
// "{numeraire}/{asset}", else NaN.
type SimpleModel struct {
	cache     TopOfBookCache
	numeraire symbology.Asset
}

// NewSimpleModel constructs a risk model against tobCache, defaulting the
// numeraire to USD.
func NewSimpleModel(tobCache TopOfBookCache) *SimpleModel {
	return &SimpleModel{cache: tobCache, numeraire: "USD"}
}

// WithNumeraire overrides the numeraire currency (defaults to USD).
func (m *SimpleModel) WithNumeraire(asset symbology.Asset) *SimpleModel {
	m.numeraire = asset
	return m
}

// FairPrice resolves asset's price in numeraire terms, or NaN if no
// resolvable quote exists.
func (m *SimpleModel) FairPrice(asset symbology.Asset) float64 {
	if asset == m.numeraire {
		return 1.0
	}

	direct := symbology.Pair(asset, m.numeraire)
	if tob, ok := m.cache.Get(string(direct)); ok {
		return (tob.BidPrice + tob.AskPrice) / 2
	}

	inverse := symbology.Pair(m.numeraire, asset)
	if tob, ok := m.cache.Get(string(inverse)); ok {
		return 2.0 / (tob.BidPrice + tob.AskPrice)
	}

	return math.NaN()
}

// PnL sums qty*fairPrice(asset) over the given positions.
func (m *SimpleModel) PnL(positions map[symbology.Asset]float64) float64 {
	var pnl float64
	for asset, qty := range positions {
		pnl += qty * m.FairPrice(asset)
	}
	return pnl
}

// NOP computes max(Σ longs·fairPrice, Σ shorts·fairPrice) over the given
// positions.
func (m *SimpleModel) NOP(positions map[symbology.Asset]float64) float64 {
	var longs, shorts float64
	for asset, qty := range positions {
		fp := m.FairPrice(asset)
		if qty >= 0 {
			longs += qty * fp
		} else {
			shorts -= qty * fp
		}
	}
	return math.Max(longs, shorts)
}
