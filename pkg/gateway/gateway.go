// Package gateway implements the liquidity-provider simulator: the
// pluggable exchange venue that models inbound/outbound network delay,
// minimum order-gap throttling, top-of-book liquidity consumption with
// price improvement, and a net-open-position pre-trade check.
package gateway

import (
	"math"

	"go.uber.org/zap"

	"github.com/rivermark-labs/marketsim/pkg/eventloop"
	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/risk"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
	"github.com/rivermark-labs/marketsim/pkg/telemetry"
)

// priceCrossTolerance is the reference implementation's fixed slack when
// comparing a limit price against the top of book (spec.md §4.4.2).
const priceCrossTolerance = 1e-8

// Settings configures a Gateway's latency model and risk cap.
type Settings struct {
	InboundDelay  simtime.TimestampNs
	OutboundDelay simtime.TimestampNs
	MinOrderGap   simtime.TimestampNs
	MaxNOP        float64
}

// TopOfBookCache is the read-only market-data view the Gateway aggresses
// against.
type TopOfBookCache interface {
	Get(topic string) (marketdata.TopOfBook, bool)
}

// PositionsPublisher is the downstream sink the Gateway publishes position
// mutations to.
type PositionsPublisher = pubsub.Publisher[flow.Position]

// Gateway is the LP simulator: it implements flow.Gateway, handing out a
// memoized OrderSender per (symbol, observer) pair and mutating a
// process-owned position book as fills settle.
type Gateway struct {
	logger *zap.Logger
	loop   *eventloop.EventLoop
	tobs   TopOfBookCache
	posPub PositionsPublisher
	risk   risk.Model
	cfg    Settings

	positions map[symbology.Asset]*float64
	executors map[executorKey]*executor
	lastOrder flow.OrderId
}

type executorKey struct {
	symbol   symbology.Symbol
	observer flow.OrderStateObserver
}

// New constructs a Gateway. riskModel must read from the same tobCache, so
// the NOP pre-trade check sees a consistent view of the market.
func New(logger *zap.Logger, loop *eventloop.EventLoop, tobCache TopOfBookCache, posPub PositionsPublisher, riskModel risk.Model, cfg Settings) *Gateway {
	return &Gateway{
		logger:    logger,
		loop:      loop,
		tobs:      tobCache,
		posPub:    posPub,
		risk:      riskModel,
		cfg:       cfg,
		positions: make(map[symbology.Asset]*float64),
		executors: make(map[executorKey]*executor),
	}
}

// OrderSender returns (and memoizes) the OrderSender bound to (symbol,
// observer), per spec.md §4.4.
func (g *Gateway) OrderSender(symbol symbology.Symbol, observer flow.OrderStateObserver) flow.OrderSender {
	key := executorKey{symbol: symbol, observer: observer}
	if ex, ok := g.executors[key]; ok {
		return ex
	}
	ex := g.newExecutor(symbol, observer)
	g.executors[key] = ex
	return ex
}

func (g *Gateway) newExecutor(symbol symbology.Symbol, observer flow.OrderStateObserver) *executor {
	base := symbology.BaseAsset(symbol)
	quote := symbology.QuoteAsset(symbol)
	return &executor{
		gw:            g,
		symbol:        symbol,
		observer:      observer,
		baseAsset:     base,
		quoteAsset:    quote,
		basePosition:  g.positionRef(base),
		quotePosition: g.positionRef(quote),
		baseEntry:     g.posPub.CreateEntry(string(base), g.positionRef(base)),
		quoteEntry:    g.posPub.CreateEntry(string(quote), g.positionRef(quote)),
	}
}

// positionRef returns the stable pointer backing asset's position,
// creating it lazily at zero.
func (g *Gateway) positionRef(asset symbology.Asset) *float64 {
	if p, ok := g.positions[asset]; ok {
		return p
	}
	v := 0.0
	g.positions[asset] = &v
	return &v
}

// currentPositions snapshots the position book for the NOP pre-trade
// check and for external risk queries.
func (g *Gateway) currentPositions() map[symbology.Asset]float64 {
	out := make(map[symbology.Asset]float64, len(g.positions))
	for asset, p := range g.positions {
		out[asset] = *p
	}
	return out
}

func (g *Gateway) nextOrderID() flow.OrderId {
	g.lastOrder++
	return g.lastOrder
}

// order is the internal record of an in-flight order (spec.md §3). trace
// tags it for correlating its sent/rejected/filled log lines, independent of
// the simulator's own virtual clock.
type order struct {
	id    flow.OrderId
	side  flow.Side
	price flow.Price
	qty   flow.Quantity
	tif   flow.TIF
	trace telemetry.TraceID
}

// executor is the per-(symbol, observer) order processor.
type executor struct {
	gw       *Gateway
	symbol   symbology.Symbol
	observer flow.OrderStateObserver

	baseAsset  symbology.Asset
	quoteAsset symbology.Asset

	basePosition  *float64
	quotePosition *float64
	baseEntry     pubsub.PublisherEntry
	quoteEntry    pubsub.PublisherEntry

	lastOrderSendTime simtime.TimestampNs
}

// SendOrder implements flow.OrderSender.
func (e *executor) SendOrder(side flow.Side, price flow.Price, qty flow.Quantity, tif flow.TIF) flow.OrderId {
	o := order{id: e.gw.nextOrderID(), side: side, price: price, qty: qty, tif: tif, trace: telemetry.NextTraceID()}
	e.gw.logger.Debug("order sent",
		zap.Uint64("trace_id", uint64(o.trace)),
		zap.Uint64("order_id", uint64(o.id)),
		zap.String("symbol", string(e.symbol)),
		zap.String("side", o.side.String()))
	e.gw.loop.Post(e.gw.cfg.InboundDelay, func() {
		e.process(o)
	})
	return o.id
}

// process re-reads the top of book from the cache at processing time,
// rather than caching it on the executor: the book moves between the time
// an order is sent and the time its inbound delay elapses, and again
// between successive orders on the same (symbol, observer) (spec.md
// §4.3.2, §4.4).
func (e *executor) process(o order) {
	e.observer.OnAck(e.symbol, o.id, o.side, o.price, o.qty, o.tif)

	book, hasBook := e.gw.tobs.Get(string(e.symbol))

	status := flow.Done
	if !e.validate(o, hasBook) {
		status = flow.InternalReject
		e.gw.logger.Debug("order rejected",
			zap.Uint64("trace_id", uint64(o.trace)),
			zap.Uint64("order_id", uint64(o.id)))
	} else {
		e.lastOrderSendTime = e.gw.loop.Now()
		var topSize, topPrice float64
		if o.side == flow.Buy {
			topSize, topPrice = book.AskSize, book.AskPrice
		} else {
			topSize, topPrice = book.BidSize, book.BidPrice
		}
		status = e.aggress(o, topSize, topPrice)
	}

	e.gw.loop.Post(e.gw.cfg.OutboundDelay, func() {
		e.observer.OnTerminated(e.symbol, o.id, status)
	})
}

func (e *executor) validate(o order, hasBook bool) bool {
	return hasBook &&
		o.tif == flow.IOC &&
		o.qty > 0 &&
		e.gw.loop.Now()-e.lastOrderSendTime >= e.gw.cfg.MinOrderGap
}

// aggress takes liquidity at the top of book, applying price improvement
// and the NOP pre-trade check. It always returns Done unless the NOP check
// rejects the trade.
func (e *executor) aggress(o order, topSize, topPrice float64) flow.DoneStatus {
	sign := float64(o.side.Sign())

	if math.IsNaN(topPrice) || o.price*sign < topPrice*sign-priceCrossTolerance {
		return flow.Done
	}

	// Price improvement is always enabled (spec.md §8, Open Question #1),
	// so a matched order always executes at the top-of-book price, never
	// its own limit.
	matchedPrice := topPrice
	matchedQty := math.Min(topSize, o.qty)

	if matchedQty > 0 {
		dealt := sign * matchedQty
		contra := -dealt * matchedPrice
		if !e.validateNOPChange(dealt, contra) {
			e.gw.logger.Debug("order rejected by NOP cap",
				zap.Uint64("trace_id", uint64(o.trace)),
				zap.Uint64("order_id", uint64(o.id)))
			return flow.InternalReject
		}
		e.scheduleFill(o.trace, o.id, dealt, contra)
	}
	return flow.Done
}

// validateNOPChange hypothetically applies (dealt, contra), recomputes NOP,
// then reverts. A trade that reduces NOP is always allowed; otherwise it
// must keep NOP within MaxNOP. NaN in either leg rejects the change.
func (e *executor) validateNOPChange(dealt, contra float64) bool {
	if math.IsNaN(dealt) || math.IsNaN(contra) {
		return false
	}

	currentNOP := e.gw.risk.NOP(e.gw.currentPositions())
	*e.basePosition += dealt
	*e.quotePosition += contra
	newNOP := e.gw.risk.NOP(e.gw.currentPositions())
	*e.basePosition -= dealt
	*e.quotePosition -= contra

	return newNOP < currentNOP || newNOP <= e.gw.cfg.MaxNOP
}

// scheduleFill posts the fill-delivery event after the outbound delay:
// commit the position mutation, publish base then quote, deliver onFill,
// then end the position batch so consumers see both legs before reacting.
func (e *executor) scheduleFill(trace telemetry.TraceID, orderID flow.OrderId, dealt, contra float64) {
	e.gw.loop.Post(e.gw.cfg.OutboundDelay, func() {
		*e.basePosition += dealt
		*e.quotePosition += contra

		e.baseEntry.Publish()
		e.quoteEntry.Publish()

		e.gw.logger.Debug("order filled",
			zap.Uint64("trace_id", uint64(trace)),
			zap.Uint64("order_id", uint64(orderID)),
			zap.Float64("dealt", dealt),
			zap.Float64("contra", contra))

		e.observer.OnFill(e.symbol, orderID, dealt, contra)

		e.gw.posPub.EndBatch()
	})
}
