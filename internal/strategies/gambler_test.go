package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

type recordingOrderSender struct {
	sides  []flow.Side
	prices []flow.Price
	qtys   []flow.Quantity
	nextID flow.OrderId
}

func (s *recordingOrderSender) SendOrder(side flow.Side, price flow.Price, qty flow.Quantity, _ flow.TIF) flow.OrderId {
	s.sides = append(s.sides, side)
	s.prices = append(s.prices, price)
	s.qtys = append(s.qtys, qty)
	s.nextID++
	return s.nextID
}

type stubTraderGateway struct{ sender *recordingOrderSender }

func (g stubTraderGateway) OrderSender(symbology.Symbol, flow.OrderStateObserver) flow.OrderSender {
	return g.sender
}

func TestTrader_EntersOnTightSpread(t *testing.T) {
	sender := &recordingOrderSender{}
	trader := NewTrader("EUR/USD", stubTraderGateway{sender})

	trader.OnTopOfBook("EUR/USD", marketdata.TopOfBook{BidPrice: 1.1000, AskPrice: 1.10001, BidSize: 1, AskSize: 1})

	require := assert.New(t)
	require.Len(sender.sides, 1)
	require.Equal(flow.Buy, sender.sides[0])
	require.True(trader.openOrder)
}

func TestTrader_DoesNotEnterOnWideSpread(t *testing.T) {
	sender := &recordingOrderSender{}
	trader := NewTrader("EUR/USD", stubTraderGateway{sender})

	trader.OnTopOfBook("EUR/USD", marketdata.TopOfBook{BidPrice: 1.10, AskPrice: 1.11, BidSize: 1, AskSize: 1})

	assert.Empty(t, sender.sides)
}

func TestTrader_IgnoresUpdatesWhileOrderInFlight(t *testing.T) {
	sender := &recordingOrderSender{}
	trader := NewTrader("EUR/USD", stubTraderGateway{sender})
	trader.openOrder = true

	trader.OnTopOfBook("EUR/USD", marketdata.TopOfBook{BidPrice: 1.1000, AskPrice: 1.10001, BidSize: 1, AskSize: 1})

	assert.Empty(t, sender.sides)
}

func TestTrader_ExitsOnTakeProfit(t *testing.T) {
	sender := &recordingOrderSender{}
	trader := NewTrader("EUR/USD", stubTraderGateway{sender})
	trader.OnFill("EUR/USD", 1, traderTargetPosition, -traderTargetPosition*1.10001)
	trader.entryPrice = 1.10001
	trader.openOrder = false

	trader.OnTopOfBook("EUR/USD", marketdata.TopOfBook{BidPrice: 1.10001 + takeProfitThresh, AskPrice: 1.10010, BidSize: 1, AskSize: 1})

	require := assert.New(t)
	require.Len(sender.sides, 1)
	require.Equal(flow.Sell, sender.sides[0])
	require.Equal(traderTargetPosition, sender.qtys[0])
}

func TestTrader_ExitsOnStopLoss(t *testing.T) {
	sender := &recordingOrderSender{}
	trader := NewTrader("EUR/USD", stubTraderGateway{sender})
	trader.OnFill("EUR/USD", 1, traderTargetPosition, -traderTargetPosition*1.10001)
	trader.entryPrice = 1.10001
	trader.openOrder = false

	// Twice the threshold: entry+stopLossThresh rounds to a move just above
	// stopLossThresh in float64, which does not breach it.
	trader.OnTopOfBook("EUR/USD", marketdata.TopOfBook{BidPrice: 1.10001 + 2*stopLossThresh, AskPrice: 1.10010, BidSize: 1, AskSize: 1})

	require := assert.New(t)
	require.Len(sender.sides, 1)
	require.Equal(flow.Sell, sender.sides[0])
}

func TestGambler_TopOfBookViewRoutesToMatchingTrader(t *testing.T) {
	logger := zaptest.NewLogger(t)
	sender := &recordingOrderSender{}
	g := NewGambler(logger, stubDispatcher{}, stubTraderGateway{sender}, stubRiskModel{}, "EUR/USD")

	sub := g.TopOfBookView()
	sub.Notify(discardConsumer[marketdata.TopOfBook]{}, "EUR/USD", marketdata.TopOfBook{BidPrice: 1.1000, AskPrice: 1.10001, BidSize: 1, AskSize: 1})

	assert.Len(t, sender.sides, 1)
}

func TestGambler_PositionViewTracksLatestPerAsset(t *testing.T) {
	logger := zaptest.NewLogger(t)
	sender := &recordingOrderSender{}
	g := NewGambler(logger, stubDispatcher{}, stubTraderGateway{sender}, stubRiskModel{}, "EUR/USD")

	sub := g.PositionView()
	sub.Notify(discardConsumer[flow.Position]{}, "EUR", 42)

	assert.Equal(t, flow.Position(42), g.positions["EUR"])
}
