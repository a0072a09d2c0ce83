package model

import "time"

// TradeAction is the kind of event a trade-history row records. Alongside
// the swap actions the bot writes lifecycle and error markers so the full
// audit trail is queryable from one table.
type TradeAction string

const (
	TradeActionBuy        TradeAction = "BUY"
	TradeActionSell       TradeAction = "SELL"
	TradeActionBotStarted TradeAction = "BOT_STARTED"
	TradeActionBotStopped TradeAction = "BOT_STOPPED"
	TradeActionPosError   TradeAction = "POSITION_ERROR"
	TradeActionBuyError   TradeAction = "BUY_ERROR"
	TradeActionCycleError TradeAction = "CYCLE_ERROR"
)

const (
	TradeStatusSuccess = "success"
	TradeStatusPending = "pending"
	TradeStatusFailed  = "failed"
)

// SystemTokenAddress marks trade-history rows that are not tied to a token
// (bot start/stop, cycle errors).
const SystemTokenAddress = "SYSTEM"

// TradeRecord is an append-only audit log entry. The only mutation allowed
// after insert is attaching the exit price and final P/L when a sell
// completes.
type TradeRecord struct {
	ID            string      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string      `gorm:"type:uuid;index;not null" json:"user_id"`
	PositionID    *string     `gorm:"type:uuid;index" json:"position_id,omitempty"`
	TokenAddress  string      `gorm:"size:64;not null" json:"token_address"`
	Action        TradeAction `gorm:"size:20;not null" json:"action"`
	Amount        float64     `json:"amount"`
	Price         float64     `json:"price"`
	EntryPrice    *float64    `json:"entry_price,omitempty"`
	ExitPrice     *float64    `json:"exit_price,omitempty"`
	ProfitLossPct *float64    `json:"profit_loss_percentage,omitempty"`
	Status        string      `gorm:"size:20;default:pending" json:"status"`
	Signature     string      `gorm:"size:128" json:"signature,omitempty"`
	ErrorMessage  string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (TradeRecord) TableName() string { return "trade_history" }
