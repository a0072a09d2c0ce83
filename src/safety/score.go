package safety

import (
	"tokensniper/src/connectors"
	"tokensniper/src/model"
)

// ----- score weights -----

const (
	LowLiquidityUSD    = 5000.0
	LowLiquidityPoints = 30

	FewHolders       = 100
	FewHoldersPoints = 20

	TopHolderPctLimit     = 50.0
	TopHolderPoints       = 25
	UnverifiedPoints      = 15
	HoneypotPoints        = 50
	MaxScore              = 100
	DangerScoreThreshold  = 50
	WarningScoreThreshold = 30
)

// Score rates a token 0..100 from its on-chain profile. Higher is riskier.
func Score(overview *connectors.TokenOverview, security *connectors.TokenSecurity) int {
	score := 0

	if overview.LiquidityUSD < LowLiquidityUSD {
		score += LowLiquidityPoints
	}
	if overview.HolderCount < FewHolders {
		score += FewHoldersPoints
	}
	if overview.TopHolderPct > TopHolderPctLimit {
		score += TopHolderPoints
	}
	if !security.IsVerified {
		score += UnverifiedPoints
	}
	if security.IsHoneypot {
		score += HoneypotPoints
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// StatusForScore maps a risk score to the overall verdict.
func StatusForScore(score int) model.SafetyStatus {
	switch {
	case score > DangerScoreThreshold:
		return model.SafetyStatusDanger
	case score > WarningScoreThreshold:
		return model.SafetyStatusWarning
	default:
		return model.SafetyStatusSafe
	}
}
