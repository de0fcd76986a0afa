// Command marketsim runs a deterministic single-pass backtest: it replays
// a CSV file of top-of-book quotes through a simulated LP gateway driving
// a configurable strategy, then prints a one-line PnL/NOP summary.
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rivermark-labs/marketsim/internal/config"
	"github.com/rivermark-labs/marketsim/internal/strategies"
	"github.com/rivermark-labs/marketsim/pkg/eventloop"
	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/gateway"
	marketdatacsv "github.com/rivermark-labs/marketsim/pkg/marketdata/csv"
	"github.com/rivermark-labs/marketsim/pkg/pubsub"
	"github.com/rivermark-labs/marketsim/pkg/report"
	"github.com/rivermark-labs/marketsim/pkg/risk"
	"github.com/rivermark-labs/marketsim/pkg/simtime"
	"github.com/rivermark-labs/marketsim/pkg/telemetry"

	"github.com/rivermark-labs/marketsim/pkg/marketdata"
	"github.com/rivermark-labs/marketsim/pkg/symbology"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	settings, err := config.Load()
	if err != nil {
		logger.Fatal("error loading configuration", zap.Error(err))
	}

	exitCode := run(logger, settings)
	os.Exit(exitCode)
}

func run(logger *zap.Logger, settings config.Settings) int {
	logger = logger.With(zap.Stringer("execution_id", telemetry.GetExecutionID()))
	logger.Info("starting simulation", zap.String("csv_path", settings.CSVPath), zap.String("strategy", settings.Strategy))

	loop := eventloop.New(simtime.Zero)

	// Market-data infrastructure: cache registered front so it is always
	// current by the time the strategy (registered back) reacts.
	mdProxy := pubsub.NewProxy[marketdata.TopOfBook]()
	mdCache := pubsub.NewCacheSubscriber[marketdata.TopOfBook]()
	mdPub := pubsub.NewDirectConsumer[marketdata.TopOfBook](mdProxy)
	mdCachePub := pubsub.NewDirectConsumer[marketdata.TopOfBook](mdCache)
	mdProxy.AddFront(mdCachePub)

	replayer, err := marketdatacsv.Open(settings.CSVPath, mdPub)
	if err != nil {
		logger.Error("error opening market data source", zap.Error(err))
		return 1
	}
	defer func() { _ = replayer.Close() }()

	if err := loop.Add(replayer); err != nil {
		if errors.Is(err, eventloop.ErrCapacityExceeded) {
			logger.Error("event loop replayable capacity exceeded", zap.Error(err))
			return 1
		}
		logger.Error("error attaching market data source", zap.Error(err))
		return 1
	}

	riskModel := risk.NewSimpleModel(mdCache).WithNumeraire(settings.Numeraire)

	// Position infrastructure, mirroring the market-data wiring.
	positionsProxy := pubsub.NewProxy[flow.Position]()
	positionsCache := pubsub.NewCacheSubscriber[flow.Position]()
	positionsPub := pubsub.NewDirectConsumer[flow.Position](positionsProxy)
	positionsCachePub := pubsub.NewDirectConsumer[flow.Position](positionsCache)
	positionsProxy.AddFront(positionsCachePub)

	gw := gateway.New(logger, loop, mdCache, positionsPub, riskModel, settings.Gateway)

	// Warm up to the first market-data tick before wiring the strategy, so
	// it is constructed with a populated cache instead of an empty one.
	loop.Post(0, func() { loop.Stop(0) })
	loop.Dispatch()

	factory := strategies.NewFactory(logger, settings)
	strat := factory(loop, gw, riskModel)

	mdStrategyPub := pubsub.NewDirectConsumer[marketdata.TopOfBook](strat.TopOfBookView())
	mdProxy.AddBack(mdStrategyPub)
	positionsStrategyPub := pubsub.NewDirectConsumer[flow.Position](strat.PositionView())
	positionsProxy.AddBack(positionsStrategyPub)

	loop.Dispatch()

	summary := report.Summary{
		LastEventTime: loop.Now(),
		PnL:           riskModel.PnL(snapshot(positionsCache)),
		NOP:           riskModel.NOP(snapshot(positionsCache)),
	}
	fmt.Println(summary.String())
	logger.Info("simulation complete", zap.String("summary", summary.String()))
	return 0
}

func snapshot(cache *pubsub.CacheSubscriber[flow.Position]) map[symbology.Asset]float64 {
	out := make(map[symbology.Asset]float64)
	for _, topic := range cache.Topics() {
		v, _ := cache.Get(topic)
		out[symbology.Asset(topic)] = v
	}
	return out
}
