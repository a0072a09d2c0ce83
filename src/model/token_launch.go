package model

import "time"

// TokenStatus is the lifecycle of a detected token launch candidate.
// Only the scanner moves a candidate to trading.
type TokenStatus string

const (
	TokenStatusDetected  TokenStatus = "detected"
	TokenStatusAnalyzing TokenStatus = "analyzing"
	TokenStatusApproved  TokenStatus = "approved"
	TokenStatusRejected  TokenStatus = "rejected"
	TokenStatusTrading   TokenStatus = "trading"
	TokenStatusExited    TokenStatus = "exited"
)

// TokenLaunch is a candidate produced by the launch discovery feed.
type TokenLaunch struct {
	ID               string      `gorm:"type:uuid;primaryKey" json:"id"`
	TokenAddress     string      `gorm:"size:64;uniqueIndex;not null" json:"token_address"`
	TokenSymbol      string      `gorm:"size:32" json:"token_symbol"`
	TokenName        string      `gorm:"size:128" json:"token_name"`
	Source           string      `gorm:"size:64;not null" json:"source"`
	Status           TokenStatus `gorm:"size:20;default:detected;index" json:"status"`
	InitialLiquidity float64     `json:"initial_liquidity"`
	InitialPrice     float64     `json:"initial_price"`
	DetectedAt       time.Time   `gorm:"index" json:"detected_at"`
	CreatedAt        time.Time   `json:"created_at"`
}

func (TokenLaunch) TableName() string { return "token_launches" }
