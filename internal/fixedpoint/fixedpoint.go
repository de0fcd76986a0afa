// Package fixedpoint is a thin decimal wrapper used only for rendering
// final report values. It is not used anywhere in the core simulator's
// arithmetic, which relies on float64 NaN propagation instead.
package fixedpoint

import "github.com/govalues/decimal"

// Point is an unsafe wrapper around decimal.Decimal. Callers must ensure
// operands cannot produce an error state, otherwise it panics.
type Point struct {
	v decimal.Decimal
}

// FromFloat64 converts f to its shortest round-tripping decimal
// representation. Panics if f is not finite; callers must check for
// NaN/Inf beforehand and render those cases as literal text instead.
func FromFloat64(f float64) Point {
	return Point{must(decimal.NewFromFloat64(f))}
}

func (p Point) String() string { return p.v.String() }

func (p Point) Rescale(scale int) Point { return Point{p.v.Rescale(scale)} }

func must(v decimal.Decimal, err error) decimal.Decimal {
	if err != nil {
		panic(err)
	}
	return v
}
