// Package strategy defines the boundary a trading strategy implements to
// receive market data and position updates and to schedule its own
// time-based logic against the simulator's virtual clock.
package strategy

import (
	"github.com/rivermark-labs/marketsim/pkg/eventloop"
	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/risk"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
)

// Dispatcher is the subset of *eventloop.EventLoop a Strategy is allowed to
// use: time-related operations only, so the same strategy code runs
// unmodified against a simulated or (hypothetically) real-time clock.
type Dispatcher interface {
	Now() simtime.TimestampNs
	Post(delta simtime.TimestampNs, action eventloop.Action)
}

var _ Dispatcher = (*eventloop.EventLoop)(nil)

// Strategy subscribes to top-of-book updates and position updates and
// reacts by sending orders through a flow.Gateway. It exposes its two
// subscriptions as separate views rather than implementing both
// pubsub.Subscriber[marketdata.TopOfBook] and pubsub.Subscriber[flow.Position]
// directly: a single Go type cannot satisfy both, since each instantiates
// a method literally named Notify with a different, non-overloadable
// signature.
type Strategy interface {
	TopOfBookView() pubsub.Subscriber[marketdata.TopOfBook]
	PositionView() pubsub.Subscriber[flow.Position]
}

// Factory builds a Strategy wired to dispatcher for timing, gateway for
// order flow, and riskModel for PnL/NOP queries.
type Factory func(dispatcher Dispatcher, gateway flow.Gateway, riskModel risk.Model) Strategy
