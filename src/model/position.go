package model

import "time"

// Position is an open holding of a token acquired through a buy, tracked
// until it is closed by a sell. Created only from a successful swap
// execution; deleted on a successful exit.
type Position struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string     `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenAddress    string     `gorm:"size:64;index;not null" json:"token_address"`
	TokenSymbol     string     `gorm:"size:32" json:"token_symbol"`
	EntryPrice      float64    `json:"entry_price"`
	CurrentPrice    float64    `json:"current_price"`
	AmountHeld      float64    `json:"amount_held"`
	CapitalInvested float64    `json:"capital_invested"`
	CurrentValue    float64    `json:"current_value"`
	ProfitLossPct   float64    `json:"profit_loss_percentage"`
	EntryTxSig      string     `gorm:"size:128" json:"entry_tx_signature,omitempty"`
	OpenedAt        time.Time  `json:"opened_at"`
	LastUpdatedAt   *time.Time `json:"last_updated,omitempty"`
}

func (Position) TableName() string { return "active_positions" }

// Refresh recomputes the derived fields from a fresh oracle price.
// currentValue == amountHeld * currentPrice and the P/L percentage is
// relative to the capital originally invested.
func (p *Position) Refresh(currentPrice float64, now time.Time) {
	p.CurrentPrice = currentPrice
	p.CurrentValue = p.AmountHeld * currentPrice
	if p.CapitalInvested != 0 {
		p.ProfitLossPct = (p.CurrentValue - p.CapitalInvested) / p.CapitalInvested * 100
	}
	p.LastUpdatedAt = &now
}
