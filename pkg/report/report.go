// Package report formats the simulator's terminal summary line.
package report

import (
	"fmt"
	"math"

	"github.com/rivermark-labs/marketsim/internal/fixedpoint"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
)

// Summary is a run's terminal outcome: the simulated time the loop
// stopped at, and the portfolio's PnL and net open position at that
// instant.
type Summary struct {
	LastEventTime simtime.TimestampNs
	PnL           float64
	NOP           float64
}

// String renders "lastEventTime:<ns>,pnl:<value>,nop:<value>". Finite
// values render through fixedpoint for stable decimal-string output; NaN
// renders as the literal text "NaN".
func (s Summary) String() string {
	return fmt.Sprintf("lastEventTime:%d,pnl:%s,nop:%s",
		int64(s.LastEventTime), formatValue(s.PnL), formatValue(s.NOP))
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fixedpoint.FromFloat64(v).Rescale(8).String()
}
