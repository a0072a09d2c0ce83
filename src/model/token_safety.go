package model

import "time"

// SafetyStatus is the oracle's overall verdict for a token. The canonical
// unsafe value is "danger".
type SafetyStatus string

const (
	SafetyStatusSafe    SafetyStatus = "safe"
	SafetyStatusWarning SafetyStatus = "warning"
	SafetyStatusDanger  SafetyStatus = "danger"
	SafetyStatusUnknown SafetyStatus = "unknown"
)

// TokenSafety is one safety analysis of a token, produced by the Birdeye
// analyzer. Read-only to the orchestrator; a token without a record is
// treated as unanalyzed and skipped by the gate.
type TokenSafety struct {
	ID               string       `gorm:"type:uuid;primaryKey" json:"id"`
	TokenAddress     string       `gorm:"size:64;index;not null" json:"token_address"`
	SafetyStatus     SafetyStatus `gorm:"size:20;default:unknown" json:"safety_status"`
	RugpullRiskScore int          `json:"rugpull_risk_score"`
	ContractVerified bool         `json:"contract_verified"`
	HoneypotCheck    bool         `json:"honeypot_check"`
	LiquidityLocked  bool         `json:"liquidity_locked"`
	LiquidityUSD     float64      `json:"liquidity_usd"`
	HolderCount      int          `json:"holder_count"`
	TopHolderPct     float64      `json:"top_holder_percentage"`
	AnalysisSource   string       `gorm:"size:64" json:"analysis_source"`
	AnalyzedAt       time.Time    `json:"analyzed_at"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (TokenSafety) TableName() string { return "token_safety" }
