package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFloat64_RescaleAndString(t *testing.T) {
	p := FromFloat64(10.5).Rescale(8)
	assert.Equal(t, "10.50000000", p.String())
}

func TestFromFloat64_NegativeValue(t *testing.T) {
	p := FromFloat64(-3.25).Rescale(2)
	assert.Equal(t, "-3.25", p.String())
}

func TestFromFloat64_PanicsOnNonFinite(t *testing.T) {
	assert.Panics(t, func() {
		FromFloat64(math.Inf(1))
	})
	assert.Panics(t, func() {
		FromFloat64(math.NaN())
	})
}
