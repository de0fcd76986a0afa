package strategies

import (
	"go.uber.org/zap"

	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/risk"
	"github.com/rivermark-labs/marketsim/pkg/strategy"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

const (
	minEntrySpread     = 1e-5
	takeProfitThresh   = 5e-5
	stopLossThresh     = -5e-4
	traderTargetPosition = 1e6
)

// Trader trades a single symbol with no edge: it enters once the spread
// tightens below minEntrySpread and exits on a fixed take-profit/stop-loss
// band, both expressed as raw price deltas from its entry.
type Trader struct {
	symbol      symbology.Symbol
	orderSender flow.OrderSender

	entryPrice flow.Price
	position   flow.Quantity
	openOrder  bool
}

// NewTrader constructs a Trader bound to symbol, registering itself as the
// OrderStateObserver for the OrderSender it caches from gateway.
func NewTrader(symbol symbology.Symbol, gateway flow.Gateway) *Trader {
	t := &Trader{symbol: symbol}
	t.orderSender = gateway.OrderSender(symbol, t)
	return t
}

// OnTopOfBook reacts to a top-of-book update for this Trader's symbol.
func (t *Trader) OnTopOfBook(_ string, book marketdata.TopOfBook) {
	if t.openOrder {
		return
	}

	spread := book.AskPrice - book.BidPrice

	if t.position == 0 {
		if spread <= minEntrySpread {
			t.entryPrice = book.AskPrice
			t.sendOrder(flow.Buy, book.AskPrice, traderTargetPosition)
		}
		return
	}

	move := book.BidPrice - t.entryPrice
	if move >= takeProfitThresh || move <= stopLossThresh {
		t.sendOrder(flow.Sell, book.BidPrice, t.position)
	}
}

// OnAck implements flow.OrderStateObserver.
func (t *Trader) OnAck(symbology.Symbol, flow.OrderId, flow.Side, flow.Price, flow.Quantity, flow.TIF) {}

// OnFill implements flow.OrderStateObserver.
func (t *Trader) OnFill(_ symbology.Symbol, _ flow.OrderId, dealt, _ flow.Quantity) {
	t.position += dealt
}

// OnTerminated implements flow.OrderStateObserver.
func (t *Trader) OnTerminated(symbology.Symbol, flow.OrderId, flow.DoneStatus) {
	t.openOrder = false
}

func (t *Trader) sendOrder(side flow.Side, price flow.Price, qty flow.Quantity) {
	t.orderSender.SendOrder(side, price, qty, flow.IOC)
	t.openOrder = true
}

// Gambler manages a pool of per-symbol Traders, logs consolidated PnL once
// a minute, and logs positions at each position batch boundary.
type Gambler struct {
	logger     *zap.Logger
	dispatcher strategy.Dispatcher
	risk       risk.Model

	positions map[symbology.Asset]flow.Position
	traders   map[symbology.Symbol]*Trader

	tobView tobViewG
	posView posViewG
}

// NewGambler constructs a Gambler trading the given symbols and schedules
// its first minute tick.
func NewGambler(logger *zap.Logger, dispatcher strategy.Dispatcher, gateway flow.Gateway, riskModel risk.Model, symbols ...symbology.Symbol) *Gambler {
	g := &Gambler{
		logger:     logger,
		dispatcher: dispatcher,
		risk:       riskModel,
		positions:  make(map[symbology.Asset]flow.Position),
		traders:    make(map[symbology.Symbol]*Trader),
	}
	g.tobView = tobViewG{g}
	g.posView = posViewG{g}
	for _, symbol := range symbols {
		g.traders[symbol] = NewTrader(symbol, gateway)
	}
	g.onMinute()
	return g
}

// TopOfBookView implements strategy.Strategy.
func (g *Gambler) TopOfBookView() pubsub.Subscriber[marketdata.TopOfBook] { return g.tobView }

// PositionView implements strategy.Strategy.
func (g *Gambler) PositionView() pubsub.Subscriber[flow.Position] { return g.posView }

// tobViewG adapts Gambler to pubsub.Subscriber[marketdata.TopOfBook],
// forwarding a matched symbol's updates to that symbol's Trader.
type tobViewG struct{ g *Gambler }

func (v tobViewG) Notify(consumer pubsub.Consumer[marketdata.TopOfBook], topic string, book marketdata.TopOfBook) {
	trader, ok := v.g.traders[symbology.Symbol(topic)]
	if !ok {
		return
	}
	trader.OnTopOfBook(topic, book)
	consumer.Subscribe(topic, trader.OnTopOfBook)
}

func (v tobViewG) EndOfBatch(pubsub.Consumer[marketdata.TopOfBook]) {}

// posViewG adapts Gambler to pubsub.Subscriber[flow.Position].
type posViewG struct{ g *Gambler }

func (v posViewG) Notify(_ pubsub.Consumer[flow.Position], topic string, position flow.Position) {
	v.g.positions[symbology.Asset(topic)] = position
}

func (v posViewG) EndOfBatch(pubsub.Consumer[flow.Position]) {
	v.g.logger.Debug("positions", zap.Any("positions", v.g.positions))
}

func (g *Gambler) onMinute() {
	g.logger.Info("pnl", zap.Float64("pnl", g.risk.PnL(g.positions)))
	g.dispatcher.Post(minuteNs, g.onMinute)
}
