package strategies

import (
	"go.uber.org/zap"

	"github.com/rivermark-labs/marketsim/internal/config"
	"github.com/rivermark-labs/marketsim/pkg/flow"
	"github.com/rivermark-labs/marketsim/pkg/risk"
	"github.com/rivermark-labs/marketsim/pkg/strategy"
)

// NewFactory selects a strategy.Factory based on settings.Strategy: "gambler"
// selects the Gambler, any other name the Flipper. config.Settings.Validate
// rejects unknown names before this is ever called.
func NewFactory(logger *zap.Logger, settings config.Settings) strategy.Factory {
	switch settings.Strategy {
	case "gambler":
		return func(dispatcher strategy.Dispatcher, gateway flow.Gateway, riskModel risk.Model) strategy.Strategy {
			return NewGambler(logger, dispatcher, gateway, riskModel, "EUR/USD")
		}
	default:
		return func(dispatcher strategy.Dispatcher, gateway flow.Gateway, riskModel risk.Model) strategy.Strategy {
			return NewFlipper(logger, dispatcher, gateway, riskModel)
		}
	}
}
