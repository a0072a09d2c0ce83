package mapper

import (
	"time"

	logger "github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
)

// MapBirdeyeToSafety combines the overview and security endpoints into one
// safety record. The score and status are computed upstream by the analyzer.
func MapBirdeyeToSafety(
	tokenAddress string,
	overview *connectors.TokenOverview,
	security *connectors.TokenSecurity,
	score int,
	status model.SafetyStatus,
	analyzedAt time.Time,
) (*model.TokenSafety, error) {
	if overview == nil || security == nil {
		logger.WithFields(map[string]interface{}{
			"mapper": "MapBirdeyeToSafety",
			"token":  tokenAddress,
		}).Error("Nil Birdeye response received")
		return nil, nil
	}

	safety := &model.TokenSafety{
		TokenAddress:     tokenAddress,
		SafetyStatus:     status,
		RugpullRiskScore: score,
		ContractVerified: security.IsVerified,
		HoneypotCheck:    security.IsHoneypot,
		LiquidityLocked:  security.LiquidityLocked,
		LiquidityUSD:     overview.LiquidityUSD,
		HolderCount:      overview.HolderCount,
		TopHolderPct:     overview.TopHolderPct,
		AnalysisSource:   "birdeye",
		AnalyzedAt:       analyzedAt,
	}

	logger.WithFields(map[string]interface{}{
		"mapper": "MapBirdeyeToSafety",
		"token":  tokenAddress,
		"score":  score,
		"status": status,
	}).Info("Birdeye response safely mapped to model")

	return safety, nil
}
