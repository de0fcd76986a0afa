package strategies

import (
	"go.uber.org/zap"

	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/risk"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
	"github.com/rivermark-labs/marketsim/pkg/strategy"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

const minuteNs = simtime.TimestampNs(60_000_000_000)

// Flipper is a single-triangle arbitrage-shaped strategy: once a minute, if
// no order is in flight, it checks whether routing USD through
// EUR/USD -> EUR/JPY -> USD/JPY returns more dollars than it started with,
// and if so fires all three legs as IOC orders. It has no edge; it exists
// to exercise the gateway and risk model end to end.
type Flipper struct {
	logger     *zap.Logger
	dispatcher strategy.Dispatcher
	gateway    flow.Gateway
	risk       risk.Model

	positions  map[symbology.Asset]flow.Position
	books      map[symbology.Symbol]marketdata.TopOfBook
	openOrders int

	tobView tobView
	posView posView
}

// NewFlipper constructs a Flipper and schedules its first minute tick.
func NewFlipper(logger *zap.Logger, dispatcher strategy.Dispatcher, gateway flow.Gateway, riskModel risk.Model) *Flipper {
	f := &Flipper{
		logger:     logger,
		dispatcher: dispatcher,
		gateway:    gateway,
		risk:       riskModel,
		positions:  make(map[symbology.Asset]flow.Position),
		books:      make(map[symbology.Symbol]marketdata.TopOfBook),
	}
	f.tobView = tobView{f}
	f.posView = posView{f}
	f.onMinute()
	return f
}

// TopOfBookView implements strategy.Strategy.
func (f *Flipper) TopOfBookView() pubsub.Subscriber[marketdata.TopOfBook] { return f.tobView }

// PositionView implements strategy.Strategy.
func (f *Flipper) PositionView() pubsub.Subscriber[flow.Position] { return f.posView }

// tobView adapts Flipper to pubsub.Subscriber[marketdata.TopOfBook].
type tobView struct{ f *Flipper }

func (v tobView) Notify(_ pubsub.Consumer[marketdata.TopOfBook], topic string, book marketdata.TopOfBook) {
	v.f.books[symbology.Symbol(topic)] = book
}

func (v tobView) EndOfBatch(pubsub.Consumer[marketdata.TopOfBook]) {}

// posView adapts Flipper to pubsub.Subscriber[flow.Position].
type posView struct{ f *Flipper }

func (v posView) Notify(_ pubsub.Consumer[flow.Position], topic string, position flow.Position) {
	v.f.positions[symbology.Asset(topic)] = position
}

func (v posView) EndOfBatch(pubsub.Consumer[flow.Position]) {
	v.f.logger.Debug("positions", zap.Any("positions", v.f.positions))
}

// OnAck implements flow.OrderStateObserver.
func (f *Flipper) OnAck(symbology.Symbol, flow.OrderId, flow.Side, flow.Price, flow.Quantity, flow.TIF) {}

// OnFill implements flow.OrderStateObserver.
func (f *Flipper) OnFill(symbology.Symbol, flow.OrderId, flow.Quantity, flow.Quantity) {}

// OnTerminated implements flow.OrderStateObserver.
func (f *Flipper) OnTerminated(symbology.Symbol, flow.OrderId, flow.DoneStatus) {
	f.openOrders--
}

func (f *Flipper) onMinute() {
	f.logger.Info("pnl", zap.Float64("pnl", f.risk.PnL(f.positions)))

	const totalDollars = 100e5

	eurUsd, hasEurUsd := f.books["EUR/USD"]
	usdJpy, hasUsdJpy := f.books["USD/JPY"]
	eurJpy, hasEurJpy := f.books["EUR/JPY"]

	if hasEurUsd && hasUsdJpy && hasEurJpy && f.openOrders == 0 {
		euros := totalDollars / eurUsd.AskPrice
		yen := euros * eurJpy.BidPrice
		dollarsNow := yen / usdJpy.AskPrice

		if dollarsNow > totalDollars {
			f.sendOrder("EUR/USD", flow.Buy, eurUsd.AskPrice, euros)
			f.sendOrder("EUR/JPY", flow.Sell, eurJpy.BidPrice, yen)
			f.sendOrder("USD/JPY", flow.Buy, usdJpy.AskPrice, dollarsNow)
		}
	}

	f.dispatcher.Post(minuteNs, f.onMinute)
}

func (f *Flipper) sendOrder(symbol symbology.Symbol, side flow.Side, price flow.Price, qty flow.Quantity) {
	f.gateway.OrderSender(symbol, f).SendOrder(side, price, qty, flow.IOC)
	f.openOrders++
}
