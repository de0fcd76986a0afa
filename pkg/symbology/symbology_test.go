package symbology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseQuoteAssetExtraction(t *testing.T) {
	sym := Symbol("EUR/USD")
	assert.Equal(t, Asset("EUR"), BaseAsset(sym))
	assert.Equal(t, Asset("USD"), QuoteAsset(sym))
}

func TestPairRoundTrips(t *testing.T) {
	sym := Pair("EUR", "USD")
	assert.Equal(t, Symbol("EUR/USD"), sym)
	assert.Equal(t, Asset("EUR"), BaseAsset(sym))
	assert.Equal(t, Asset("USD"), QuoteAsset(sym))
}
