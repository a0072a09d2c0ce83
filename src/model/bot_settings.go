package model

import "time"

// USDCMint is the default trading asset when a user has not configured one.
const USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

// SOLMint is the wrapped SOL mint, used for decimal resolution.
const SOLMint = "So11111111111111111111111111111111111111112"

// BotSettings are the user-owned trading thresholds. The orchestrator never
// writes them; within one cycle they are read once into a Snapshot so a
// mid-cycle settings change can not be observed.
type BotSettings struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ProfitThresholdPct float64   `gorm:"default:50" json:"profit_threshold_percentage"`
	StopLossPct        float64   `gorm:"default:-20" json:"stop_loss_percentage"`
	MaxInvestmentUSD   float64   `gorm:"default:10" json:"max_investment_per_token"`
	MaxConcurrentPos   int       `gorm:"default:3" json:"max_concurrent_positions"`
	AutoDetectEnabled  bool      `gorm:"default:false" json:"auto_detect_enabled"`
	SafetyCheckEnabled bool      `gorm:"default:true" json:"safety_check_enabled"`
	MinLiquidityUSD    float64   `gorm:"default:5000" json:"min_liquidity_usd"`
	MaxRugpullRisk     int       `gorm:"default:30" json:"max_rugpull_risk_score"`
	TradingAssetMint   string    `gorm:"size:64" json:"trading_asset_mint"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (BotSettings) TableName() string { return "bot_settings" }

// Snapshot is the immutable copy of BotSettings passed through
// monitor/scanner/gate for the duration of one cycle.
type Snapshot struct {
	ProfitThresholdPct float64
	StopLossPct        float64
	MaxInvestmentUSD   float64
	MaxConcurrentPos   int
	AutoDetectEnabled  bool
	SafetyCheckEnabled bool
	MinLiquidityUSD    float64
	MaxRugpullRisk     int
	TradingAssetMint   string
}

// Snapshot freezes the settings row for one cycle, filling in the default
// trading asset when unset.
func (s *BotSettings) Snapshot() Snapshot {
	mint := s.TradingAssetMint
	if mint == "" {
		mint = USDCMint
	}
	return Snapshot{
		ProfitThresholdPct: s.ProfitThresholdPct,
		StopLossPct:        s.StopLossPct,
		MaxInvestmentUSD:   s.MaxInvestmentUSD,
		MaxConcurrentPos:   s.MaxConcurrentPos,
		AutoDetectEnabled:  s.AutoDetectEnabled,
		SafetyCheckEnabled: s.SafetyCheckEnabled,
		MinLiquidityUSD:    s.MinLiquidityUSD,
		MaxRugpullRisk:     s.MaxRugpullRisk,
		TradingAssetMint:   mint,
	}
}
