package mapper

import (
	"time"

	logger "github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
)

// MapLaunchEventToModel converts a PumpPortal new-token event into a token
// launch row in detected state.
func MapLaunchEventToModel(event *connectors.LaunchEvent, detectedAt time.Time) (*model.TokenLaunch, error) {
	if event == nil {
		logger.WithField("mapper", "MapLaunchEventToModel").
			Error("Nil LaunchEvent received")
		return nil, nil
	}

	symbol := event.Symbol
	if symbol == "" {
		symbol = "UNKNOWN"
	}

	source := event.Pool
	if source == "" {
		source = "pumpportal"
	}

	launch := &model.TokenLaunch{
		TokenAddress:     event.Mint,
		TokenSymbol:      symbol,
		TokenName:        event.Name,
		Source:           source,
		Status:           model.TokenStatusDetected,
		InitialLiquidity: event.SolAmount,
		DetectedAt:       detectedAt,
	}

	logger.WithFields(map[string]interface{}{
		"mapper": "MapLaunchEventToModel",
		"mint":   event.Mint,
		"symbol": symbol,
		"pool":   event.Pool,
	}).Info("Launch event safely mapped to model")

	return launch, nil
}
