package strategies

import (
	"github.com/rivermark-labs/marketsim/pkg/eventloop"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

// stubDispatcher discards scheduling requests: strategy unit tests only
// exercise the immediate reaction to a tick or an update, not rescheduling.
type stubDispatcher struct{}

func (stubDispatcher) Now() simtime.TimestampNs                            { return 0 }
func (stubDispatcher) Post(simtime.TimestampNs, eventloop.Action)          {}

// stubRiskModel returns fixed values so tests can assert on PnL/NOP logging
// paths without wiring a real cache.
type stubRiskModel struct{}

func (stubRiskModel) FairPrice(symbology.Asset) float64                       { return 1 }
func (stubRiskModel) PnL(map[symbology.Asset]float64) float64                 { return 0 }
func (stubRiskModel) NOP(map[symbology.Asset]float64) float64                 { return 0 }

// discardConsumer is a no-op pubsub.Consumer used where a Notify call
// requires one but the test doesn't exercise late Subscribe binding.
type discardConsumer[R any] struct{}

func (discardConsumer[R]) Subscribe(string, pubsub.Callback[R]) {}
