// Package symbology defines the opaque instrument/currency identifiers
// shared across the simulator, along with the reference dataset's
// "CCY1/CCY2" convention for extracting the two legs of a Symbol.
package symbology

import "fmt"

// Symbol is an opaque instrument identifier. The reference dataset uses a
// 7-character "CCY1/CCY2" form, but the core treats it as opaque.
type Symbol string

// Asset is an opaque identifier for one leg of a Symbol — in the reference
// dataset, a single currency.
type Asset string

// BaseAsset returns the 3-character prefix of a "CCY1/CCY2" symbol.
func BaseAsset(s Symbol) Asset {
	return Asset(s[:3])
}

// QuoteAsset returns the 3-character suffix of a "CCY1/CCY2" symbol.
func QuoteAsset(s Symbol) Asset {
	return Asset(s[4:7])
}

// Pair builds the canonical "CCY1/CCY2" symbol for two assets, used by the
// risk model to look up a fair-price quote.
func Pair(base, quote Asset) Symbol {
	return Symbol(fmt.Sprintf("%s/%s", base, quote))
}
